package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gdg-garage/retreat-booking-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
	DiscordUserGuildsAPI     = "https://discord.com/api/users/@me/guilds"
)

const (
	CookieName    = "auth_token"
	TokenDuration = 24 * time.Hour
)

var ErrUnauthorized = errors.New("unauthorized")

// Staff is the authenticated member of the retreat team.
type Staff struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	// Override grants admin status changes outside the regular lifecycle.
	Override bool `json:"override"`
}

type Claims struct {
	Username string `json:"username"`
	Override bool   `json:"override,omitempty"`
	jwt.RegisteredClaims
}

type AuthHandler struct {
	oauthConfig *oauth2.Config
	cfg         *config.Config
	log         *zap.Logger
	now         func() time.Time
}

func NewAuthHandler(cfg *config.Config, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		cfg: cfg,
		log: log,
		now: time.Now,
	}
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		h.log.Warn("discord token exchange failed", zap.Error(err))
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)

	// Retreat staff must be members of the team guild.
	if h.cfg.DiscordGuildID != "" {
		var guilds []struct {
			ID string `json:"id"`
		}
		if err := getJSON(client, DiscordUserGuildsAPI, &guilds); err != nil {
			h.log.Warn("failed to get user guilds", zap.Error(err))
			http.Error(w, "Failed to get user guilds", http.StatusInternalServerError)
			return
		}

		isMember := false
		for _, g := range guilds {
			if g.ID == h.cfg.DiscordGuildID {
				isMember = true
				break
			}
		}
		if !isMember {
			http.Error(w, "Access denied: You are not a member of the required guild.", http.StatusForbidden)
			return
		}
	}

	var discordUser struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := getJSON(client, DiscordUserAPI, &discordUser); err != nil {
		h.log.Warn("failed to get user info", zap.Error(err))
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}

	staff := Staff{ID: discordUser.ID, Username: discordUser.Username, Override: true}
	jwtToken, err := h.GenerateToken(staff)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, h.sessionCookie(jwtToken))
	h.log.Info("staff logged in", zap.String("staff_id", staff.ID), zap.String("username", staff.Username))

	if h.cfg.FrontendURL != "" {
		http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
		return
	}
	w.Write([]byte(fmt.Sprintf("Welcome %s! You are logged in.", staff.Username)))
}

func getJSON(client *http.Client, url string, dst any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  h.now().Add(TokenDuration),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
}

func (h *AuthHandler) GenerateToken(s Staff) (string, error) {
	now := h.now()
	claims := Claims{
		Username: s.Username,
		Override: s.Override,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken verifies tokenString and returns its claims.
func (h *AuthHandler) ParseToken(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthorized)
	}
	return &claims, nil
}

func (c *Claims) Staff() Staff {
	return Staff{ID: c.Subject, Username: c.Username, Override: c.Override}
}

type contextKey string

const StaffKey contextKey = "staff"

func WithStaff(ctx context.Context, s Staff) context.Context {
	return context.WithValue(ctx, StaffKey, s)
}

func StaffFromContext(ctx context.Context) (Staff, bool) {
	s, ok := ctx.Value(StaffKey).(Staff)
	return s, ok
}
