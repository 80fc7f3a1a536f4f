// Package middleware provides HTTP middleware for the platform API.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fitmova/platform/internal/errors"
	internalhttputil "github.com/fitmova/platform/internal/httputil"
	"github.com/fitmova/platform/internal/logging"
)

// Claims are the JWT claims carried by member tokens.
type Claims struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HMAC-signed member tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager builds a token manager. A non-positive TTL falls back to 24
// hours.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a token for the given member.
func (m *TokenManager) Issue(memberID, name, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		MemberID: memberID,
		Name:     name,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   memberID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Validate parses a token and returns its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.InvalidToken(nil).WithDetails("method", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, errors.InvalidToken(err)
	}
	if !token.Valid {
		return nil, errors.InvalidToken(nil)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.InvalidToken(nil).WithDetails("reason", "invalid claims type")
	}
	if strings.TrimSpace(claims.MemberID) == "" {
		return nil, errors.InvalidToken(nil).WithDetails("reason", "missing member id")
	}
	return claims, nil
}

// AuthMiddleware enforces JWT authentication on member routes.
type AuthMiddleware struct {
	tokens    *TokenManager
	logger    *logging.Logger
	skipPaths map[string]bool
}

// NewAuthMiddleware creates the authentication middleware. Paths in skipPaths
// are served without a token.
func NewAuthMiddleware(tokens *TokenManager, logger *logging.Logger, skipPaths []string) *AuthMiddleware {
	skip := make(map[string]bool)
	for _, path := range skipPaths {
		skip[path] = true
	}
	return &AuthMiddleware{tokens: tokens, logger: logger, skipPaths: skip}
}

// Handler returns the middleware handler.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondError(w, r, errors.Unauthorized("missing Authorization header"))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.respondError(w, r, errors.Unauthorized("invalid Authorization header format"))
			return
		}

		claims, err := m.tokens.Validate(parts[1])
		if err != nil {
			m.logger.WithContext(r.Context()).WithError(err).Warn("token validation failed")
			m.respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), logging.UserIDKey, claims.MemberID)
		if claims.Role != "" {
			ctx = context.WithValue(ctx, logging.RoleKey, claims.Role)
		}
		ctx = logging.WithTraceID(ctx, logging.GetTraceID(r.Context()))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := errors.GetServiceError(err)
	if serviceErr == nil {
		serviceErr = errors.Internal("authentication failed", err)
	}

	internalhttputil.WriteErrorResponse(w, r, serviceErr.HTTPStatus, string(serviceErr.Code), serviceErr.Message, serviceErr.Details)

	m.logger.WithContext(r.Context()).WithError(err).WithFields(map[string]interface{}{
		"path":   r.URL.Path,
		"method": r.Method,
		"status": serviceErr.HTTPStatus,
	}).Warn("authentication failed")
}

// GetMemberID extracts the authenticated member ID from context.
func GetMemberID(ctx context.Context) string {
	return logging.GetUserID(ctx)
}

// GetRole extracts the authenticated role from context.
func GetRole(ctx context.Context) string {
	return logging.GetRole(ctx)
}

// RequireMemberID rejects requests without an authenticated member.
func RequireMemberID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetMemberID(r.Context()) == "" {
			internalhttputil.Unauthorized(w, "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
