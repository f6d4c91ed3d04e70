package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// AuthInput is embedded in the input of every staff-only operation.
type AuthInput struct {
	Cookie        string `header:"Cookie" doc:"Session cookie set by the Discord login"`
	Authorization string `header:"Authorization" doc:"Bearer token, alternative to the cookie"`
}

func (in AuthInput) token() string {
	if bearer, ok := strings.CutPrefix(in.Authorization, "Bearer "); ok {
		return strings.TrimSpace(bearer)
	}
	if in.Cookie == "" {
		return ""
	}
	cookies, err := http.ParseCookie(in.Cookie)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == CookieName {
			return c.Value
		}
	}
	return ""
}

// Authorize resolves the caller of a staff operation, from the request
// context first and from the input headers otherwise.
func (h *AuthHandler) Authorize(ctx context.Context, in AuthInput) (Staff, error) {
	if s, ok := StaffFromContext(ctx); ok {
		return s, nil
	}
	tok := in.token()
	if tok == "" {
		return Staff{}, huma.Error401Unauthorized("Unauthorized: No token found")
	}
	claims, err := h.ParseToken(tok)
	if err != nil {
		return Staff{}, huma.Error401Unauthorized("Unauthorized: Invalid token")
	}
	return claims.Staff(), nil
}

// SessionMiddleware attaches the staff identity of a valid session to the
// request context and renews the cookie once it is past half of its
// lifetime. Requests without a valid session pass through unchanged.
func (h *AuthHandler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in := AuthInput{Authorization: r.Header.Get("Authorization")}
		if cookie, err := r.Cookie(CookieName); err == nil {
			in.Cookie = cookie.String()
		}
		tok := in.token()
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.ParseToken(tok)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		// Sliding session: refresh token if it's more than halfway through its duration
		if claims.ExpiresAt != nil && claims.ExpiresAt.Sub(h.now()) < TokenDuration/2 {
			if renewed, err := h.GenerateToken(claims.Staff()); err == nil {
				http.SetCookie(w, h.sessionCookie(renewed))
			}
		}

		next.ServeHTTP(w, r.WithContext(WithStaff(r.Context(), claims.Staff())))
	})
}

type MeResponse struct {
	Body Staff
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	staff, err := h.Authorize(ctx, *input)
	if err != nil {
		return nil, err
	}
	return &MeResponse{Body: staff}, nil
}
