package database

import (
	"context"
	"testing"

	"github.com/gdg-garage/retreat-booking-api/internal/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOpen_LogsThroughZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, err := Open("sqlite", ":memory:", zap.New(core))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	logs.TakeAll()

	_, err = NewBookingStore(db).FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, booking.ErrNotFound)
	assert.Zero(t, logs.Len(), "record not found is not logged")

	assert.Error(t, db.Exec("SELECT * FROM no_such_table").Error)
	entries := logs.All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "gorm", entries[0].LoggerName)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "", nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}
