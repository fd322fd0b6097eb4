// Package session identifies clients by an opaque token carried in a cookie.
// There is no server-side session record; the token is only correlated
// through the session_id column of the rows it owns.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCookieName = "sessionId"
	DefaultMaxAge     = 7 * 24 * time.Hour
)

// NewID mints a random session token.
func NewID() string {
	return uuid.NewString()
}

type Resolver struct {
	cookieName string
	maxAge     time.Duration
	secure     bool
	onMint     func()
}

type Option func(*Resolver)

func WithCookieName(name string) Option {
	return func(r *Resolver) {
		if name != "" {
			r.cookieName = name
		}
	}
}

func WithMaxAge(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.maxAge = d
		}
	}
}

func WithSecure(secure bool) Option {
	return func(r *Resolver) { r.secure = secure }
}

// WithOnMint registers a callback invoked each time a new token is issued.
func WithOnMint(fn func()) Option {
	return func(r *Resolver) { r.onMint = fn }
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		cookieName: DefaultCookieName,
		maxAge:     DefaultMaxAge,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Lookup returns the token presented by the request, if any.
func (s *Resolver) Lookup(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	return c.Value, true
}

// Ensure returns the request's token, minting and setting a new one when the
// request has none. The minted cookie is also attached to r, so repeated
// calls during the same request agree.
func (s *Resolver) Ensure(w http.ResponseWriter, r *http.Request) string {
	if id, ok := s.Lookup(r); ok {
		return id
	}

	c := &http.Cookie{
		Name:     s.cookieName,
		Value:    NewID(),
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, c)
	r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})

	if s.onMint != nil {
		s.onMint()
	}

	return c.Value
}
