// Package auth turns bearer tokens into callers. Identity is asserted by
// an upstream issuer; this service only verifies the HS256 signature and
// reads the subject and role.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-reservations/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies caller tokens.
type Authenticator struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewAuthenticator returns an Authenticator for the given HMAC secret.
// An empty issuer disables the issuer check.
func NewAuthenticator(secret, issuer string) *Authenticator {
	return &Authenticator{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for callerID with role, valid for ttl.
func (a *Authenticator) Issue(callerID string, role model.Role, ttl time.Duration) (string, error) {
	if callerID == "" {
		return "", fmt.Errorf("%w: subject is required", model.ErrInvalidInput)
	}
	if !role.Valid() {
		return "", fmt.Errorf("%w: role %q", model.ErrInvalidInput, role)
	}

	now := a.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   callerID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Parse verifies tokenString and returns the caller it names.
func (a *Authenticator) Parse(tokenString string) (model.Caller, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return model.Caller{}, fmt.Errorf("%w: %v", model.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return model.Caller{}, model.ErrUnauthenticated
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return model.Caller{}, fmt.Errorf("%w: token lacks subject or role", model.ErrUnauthenticated)
	}
	return model.Caller{ID: claims.Subject, Role: claims.Role}, nil
}

// ErrorWriter renders an authentication or authorization failure.
type ErrorWriter func(w http.ResponseWriter, err error)

// Middleware attaches the verified caller to the request context.
type Middleware struct {
	auth    *Authenticator
	onError ErrorWriter
}

// NewMiddleware builds the chi middleware pair around a.
func NewMiddleware(a *Authenticator, onError ErrorWriter) *Middleware {
	return &Middleware{auth: a, onError: onError}
}

// Authenticate rejects requests without a valid bearer token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			m.onError(w, fmt.Errorf("%w: missing bearer token", model.ErrUnauthenticated))
			return
		}
		caller, err := m.auth.Parse(raw)
		if err != nil {
			m.onError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(model.WithCaller(r.Context(), caller)))
	})
}

// RequireRole only lets callers holding role through.
func (m *Middleware) RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := model.CallerFrom(r.Context())
			if !ok {
				m.onError(w, model.ErrUnauthenticated)
				return
			}
			if caller.Role != role {
				m.onError(w, model.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
