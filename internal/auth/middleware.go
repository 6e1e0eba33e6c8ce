package auth

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Cookies describes the auth cookie.
type Cookies struct {
	Name   string
	Secure bool // production: Secure + SameSite=None
}

func (c Cookies) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Set writes the auth token cookie.
func (c Cookies) Set(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
		Expires:  exp,
	})
}

// Clear deletes the auth token cookie.
func (c Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.sameSite(),
		MaxAge:   -1,
	})
}

// Token extracts a bearer token from the Authorization header or the cookie.
func (c Cookies) Token(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if ck, err := r.Cookie(c.Name); err == nil {
		return ck.Value
	}
	return ""
}

type ctxUserKey struct{}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, id)
}

// FromContext returns the signed-in user, or nil for guests.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxUserKey{}).(*Identity)
	return id
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(svc *Service, c Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := c.Token(r)
			if tok == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			id, err := svc.Authenticate(r.Context(), tok)
			if err != nil {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and never 401s.
func OptionalAuth(svc *Service, c Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := c.Token(r); tok != "" {
				if id, err := svc.Authenticate(r.Context(), tok); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
