package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/retreat-booking-api/internal/auth"
	"github.com/gdg-garage/retreat-booking-api/internal/booking"
	"github.com/gdg-garage/retreat-booking-api/internal/config"
	"github.com/gdg-garage/retreat-booking-api/internal/database"
	"github.com/gdg-garage/retreat-booking-api/internal/database/mongostore"
	"github.com/gdg-garage/retreat-booking-api/internal/handlers"
	"github.com/gdg-garage/retreat-booking-api/internal/logger"
	"github.com/gdg-garage/retreat-booking-api/internal/metrics"
	"github.com/gdg-garage/retreat-booking-api/internal/notifier"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to open booking store", zap.String("driver", cfg.DatabaseDriver), zap.Error(err))
	}
	defer closeStore()

	m := metrics.New("retreat", prometheus.DefaultRegisterer)

	notifiers := notifier.Multi{notifier.NewGuestNotifier(notifier.NewLogMailer(zlog.Named("mail")))}
	if session := discordSession(cfg, zlog); session != nil {
		defer session.Close()
		notifiers = append(notifiers, notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID))
	}

	svc := booking.NewService(store, notifiers, zlog.Named("booking"), m)

	authHandler := auth.NewAuthHandler(cfg, zlog.Named("auth"))
	bookingHandler := handlers.NewBookingHandler(svc, authHandler, cfg.UpcomingDays)
	limiter := handlers.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, zlog.Named("ratelimit"), m)

	// Initialize Router
	r := chi.NewRouter()

	opts := handlers.RouteOptions{TrustProxy: cfg.TrustProxy}
	if cfg.EnableCORS {
		opts.AllowedOrigin = cfg.FrontendURL
	}
	handlers.RegisterRoutes(r, authHandler, bookingHandler, limiter, opts)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: r,
	}

	go func() {
		zlog.Info("Starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
	if err := svc.Wait(shutdownCtx); err != nil {
		zlog.Warn("Pending notifications dropped", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (booking.Store, func(), error) {
	if cfg.DatabaseDriver == "mongo" {
		client, err := mongostore.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		store, err := mongostore.New(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}
		return store, func() { client.Disconnect(context.Background()) }, nil
	}

	db, err := database.Connect(cfg, zlog.Named("database"))
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	return database.NewBookingStore(db), closeDB, nil
}

// discordSession opens the bot session used for staff alerts, or returns
// nil when Discord is not configured.
func discordSession(cfg *config.Config, zlog *zap.Logger) *discordgo.Session {
	if cfg.DiscordBotToken == "" || cfg.DiscordNotificationsChannelID == "" {
		zlog.Info("Discord notifier not configured")
		return nil
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		zlog.Warn("Discord notifier not initialized", zap.Error(err))
		return nil
	}
	if err := session.Open(); err != nil {
		zlog.Warn("Discord notifier not initialized", zap.Error(err))
		return nil
	}
	return session
}
