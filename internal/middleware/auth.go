package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the JWT payload. The user id travels in "uid"; tokens minted by
// other issuers may carry it in the standard "sub" claim instead.
type Claims struct {
	UserID string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

var errNoUser = errors.New("token carries no user id")

type userIDKey struct{}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserIDFromContext returns the user id stored by Authenticator.Middleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return id, ok
}

// Authenticator signs and verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator returns an Authenticator keyed by secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken signs a token for userID that expires after ttl.
func (a *Authenticator) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken verifies tokenStr and returns the user id it carries.
// Only HS256 is accepted; "alg: none" and RSA/HMAC confusion are rejected.
func (a *Authenticator) ParseToken(tokenStr string) (uuid.UUID, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, err
	}

	raw := claims.UserID
	if raw == "" {
		raw = claims.Subject
	}
	if raw == "" {
		return uuid.Nil, errNoUser
	}
	return uuid.Parse(raw)
}

// Middleware rejects requests without a valid "Authorization: Bearer" token
// with 401 and stores the token's user id in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		userID, err := a.ParseToken(strings.TrimSpace(token))
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// unauthorized writes the same error envelope the handlers use.
func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="timekeeper"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": msg},
	})
}
