package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/retreat-booking-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouteOptions struct {
	// AllowedOrigin enables CORS for a single front end origin.
	AllowedOrigin string
	// MetricsHandler serves /metrics; promhttp.Handler() if nil.
	MetricsHandler http.Handler
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxy bool
}

func RegisterRoutes(r *chi.Mux, authHandler *auth.AuthHandler, bookingHandler *BookingHandler, limiter *RateLimiter, opts RouteOptions) huma.API {
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.AllowedOrigin != "" {
		r.Use(cors(opts.AllowedOrigin))
	}

	// Infrastructure routes skip the rate limiter.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	// Auth routes
	r.Get("/auth/discord/login", authHandler.HandleLogin)
	r.Get("/auth/discord/callback", authHandler.HandleCallback)

	var api huma.API
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Use(authHandler.SessionMiddleware)

		config := huma.DefaultConfig("Retreat Booking API", "1.0.0")
		config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			"cookieAuth": {
				Type: "apiKey",
				In:   "cookie",
				Name: auth.CookieName,
			},
		}
		api = humachi.New(r, config)

		huma.Get(api, "/me", authHandler.HandleMe, func(o *huma.Operation) {
			o.Security = []map[string][]string{{"cookieAuth": {}}}
		})
		bookingHandler.Register(api)
	})
	return api
}

func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
