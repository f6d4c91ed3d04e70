package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/booking"
	"github.com/gdg-garage/retreat-booking-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName    = "bookings"
	maxUpdateAttempts = 5
)

// Connect dials uri and pings the server.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// Store keeps every booking, notes included, as one document. Writes are
// guarded by the document version.
type Store struct {
	coll *mongo.Collection
}

func New(ctx context.Context, db *mongo.Database) (*Store, error) {
	s := &Store{coll: db.Collection(collectionName)}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "personalInfo.email", Value: 1}}},
		{Keys: bson.D{{Key: "program.startDate", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "payment.status", Value: 1}}},
		{Keys: bson.D{{Key: "program.type", Value: 1}, {Key: "status", Value: 1}, {Key: "program.startDate", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, b *models.Booking) error {
	_, err := s.coll.InsertOne(ctx, b)
	return err
}

func (s *Store) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.Notes == nil {
		b.Notes = []models.Note{}
	}
	return &b, nil
}

func rangeOf(from, to *time.Time) bson.M {
	r := bson.M{}
	if from != nil {
		r["$gte"] = from.UTC()
	}
	if to != nil {
		r["$lte"] = to.UTC()
	}
	return r
}

// buildFilter translates f into a mongo query document.
func buildFilter(f booking.Filter) bson.M {
	q := bson.M{}
	if len(f.Statuses) > 0 {
		q["status"] = bson.M{"$in": f.Statuses}
	}
	if f.ProgramType != "" {
		q["program.type"] = f.ProgramType
	}
	if f.PaymentStatus != "" {
		q["payment.status"] = f.PaymentStatus
	}
	if r := rangeOf(f.StartFrom, f.StartTo); len(r) > 0 {
		q["program.startDate"] = r
	}
	if f.EndFrom != nil {
		q["program.endDate"] = rangeOf(f.EndFrom, nil)
	}
	if r := rangeOf(f.PaidFrom, f.PaidTo); len(r) > 0 {
		q["payment.paidAt"] = r
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
		q["$or"] = bson.A{
			bson.M{"personalInfo.firstName": re},
			bson.M{"personalInfo.lastName": re},
			bson.M{"personalInfo.email": re},
		}
	}
	return q
}

func findOptions(opts booking.FindOptions) *options.FindOptions {
	field := "createdAt"
	if opts.Sort == booking.SortStartDate {
		field = "program.startDate"
	}
	dir := -1
	if opts.Ascending {
		dir = 1
	}
	o := options.Find().SetSort(bson.D{{Key: field, Value: dir}})
	if opts.Skip > 0 {
		o.SetSkip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		o.SetLimit(int64(opts.Limit))
	}
	return o
}

func (s *Store) Find(ctx context.Context, f booking.Filter, opts booking.FindOptions) ([]models.Booking, error) {
	cur, err := s.coll.Find(ctx, buildFilter(f), findOptions(opts))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Booking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Notes == nil {
			out[i].Notes = []models.Note{}
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, f booking.Filter) (int64, error) {
	return s.coll.CountDocuments(ctx, buildFilter(f))
}

// UpdateByID replaces the document only while its version is unchanged and
// retries lost races with a fresh read.
func (s *Store) UpdateByID(ctx context.Context, id string, mutate func(*models.Booking) error) (*models.Booking, error) {
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		current, err := s.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		version := current.Version
		if err := mutate(current); err != nil {
			return nil, err
		}
		current.Version = version + 1

		res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id, "version": version}, current)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 1 {
			return current, nil
		}
	}
	return nil, booking.ErrConflict
}
