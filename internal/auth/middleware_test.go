package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	claims := Claims{
		Username: "staff",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestSessionMiddleware_SlidingSession(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	handler := NewAuthHandler(cfg, nil)

	t.Run("TokenRenewed", func(t *testing.T) {
		// Create a token that expires in 11 hours (less than TokenDuration/2 = 12 hours)
		tokenString := signed(t, cfg.JWTSecret, 11*time.Hour)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tokenString})
		rr := httptest.NewRecorder()

		var seen Staff
		nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = StaffFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		handler.SessionMiddleware(nextHandler).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status OK, got %v", rr.Code)
		}
		if seen.ID != "1" {
			t.Errorf("expected staff in context, got %+v", seen)
		}

		// Check if a new cookie was set
		found := false
		for _, c := range rr.Result().Cookies() {
			if c.Name == CookieName {
				found = true
				if c.Value == tokenString {
					t.Errorf("expected new token value, but got the old one")
				}
				break
			}
		}
		if !found {
			t.Errorf("expected new auth_token cookie to be set")
		}
	})

	t.Run("TokenNotRenewed", func(t *testing.T) {
		// Create a token that expires in 13 hours (more than TokenDuration/2 = 12 hours)
		tokenString := signed(t, cfg.JWTSecret, 13*time.Hour)

		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: tokenString})
		rr := httptest.NewRecorder()

		nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		handler.SessionMiddleware(nextHandler).ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("expected status OK, got %v", rr.Code)
		}

		// Check that no NEW auth_token cookie was set
		for _, c := range rr.Result().Cookies() {
			if c.Name == CookieName {
				t.Errorf("did not expect a new auth_token cookie to be set")
			}
		}
	})

	t.Run("InvalidTokenPassesThrough", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
		rr := httptest.NewRecorder()

		handler.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := StaffFromContext(r.Context()); ok {
				t.Error("did not expect staff in context")
			}
			w.WriteHeader(http.StatusNoContent)
		})).ServeHTTP(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Errorf("expected next handler to run, got %v", rr.Code)
		}
	})
}
