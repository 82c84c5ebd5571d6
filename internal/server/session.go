package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/iwvelando/sixsigma-portal/internal/config"
	"github.com/iwvelando/sixsigma-portal/internal/portal"
	"github.com/iwvelando/sixsigma-portal/pkg/constants"
)

// ErrNoSession is returned when a request carries no valid session cookie.
var ErrNoSession = errors.New("no employee session")

// Sessions issues and reads the employee session cookie, an HS256 JWT whose
// subject is the employee id.
type Sessions struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// NewSessions returns a Sessions for cfg. The secret must not be empty.
func NewSessions(cfg config.SessionConfig) (*Sessions, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is empty")
	}
	name := cfg.CookieName
	if name == "" {
		name = constants.DefaultSessionCookie
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Sessions{
		secret:     []byte(cfg.Secret),
		cookieName: name,
		ttl:        ttl,
		secure:     cfg.Secure,
		now:        time.Now,
	}, nil
}

// Issue sets a session cookie for employee.
func (s *Sessions) Issue(w http.ResponseWriter, employee portal.EmployeeRef) error {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := sessionClaims{
		Name: employee.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   employee.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Employee returns the employee of a valid session cookie.
func (s *Sessions) Employee(r *http.Request) (portal.EmployeeRef, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return portal.EmployeeRef{}, ErrNoSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return portal.EmployeeRef{}, ErrNoSession
	}
	return portal.EmployeeRef{ID: claims.Subject, Name: claims.Name}, nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
