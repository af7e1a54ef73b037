package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/domain/account"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// UserContextKey is the key for storing user info in request context
type UserContextKey string

const (
	// UserIDContextKey stores the user ID in context
	UserIDContextKey UserContextKey = "user_id"
	// UserNameContextKey stores the user name in context
	UserNameContextKey UserContextKey = "user_name"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	jwtService *account.JWTService
	logger     *logger.Logger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *account.JWTService, logger *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger.WithComponent("auth-middleware"),
	}
}

// RequireAuth returns a middleware that requires JWT authentication
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.logger.Debug("Missing Authorization header")
			jsonrpcx.WithError(r, nil, jsonrpcx.InvalidRequest, "Missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.logger.Debug("Invalid Authorization header format")
			jsonrpcx.WithError(r, nil, jsonrpcx.InvalidRequest, "Invalid Authorization header format")
			return
		}

		m.serveWithToken(w, r, next, parts[1])
	})
}

// RequireSSEAuth authenticates an SSE stream request. EventSource cannot set
// request headers, so the token rides in the query string instead.
func (m *AuthMiddleware) RequireSSEAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			// Fall back to the header for non-browser clients
			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if token == "" {
			m.logger.Debug("Missing SSE auth token")
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			m.logger.Debug("Invalid SSE auth token", zap.Error(err))
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		*r = *r.WithContext(m.userContext(r.Context(), claims))
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) serveWithToken(w http.ResponseWriter, r *http.Request, next http.Handler, tokenString string) {
	claims, err := m.jwtService.ValidateToken(tokenString)
	if err != nil {
		m.logger.Debug("Invalid JWT token", zap.Error(err))
		jsonrpcx.WithError(r, nil, jsonrpcx.InvalidRequest, "Invalid or expired token")
		return
	}

	m.logger.Debug("JWT authentication successful",
		zap.String("userId", claims.UserID),
		zap.String("name", claims.Name))

	// Mutate the request in place rather than handing the handler a copy.
	// The error adapter upstream inspects this same pointer afterwards, so
	// anything the handler attaches with WithError must land on it.
	*r = *r.WithContext(m.userContext(r.Context(), claims))
	next.ServeHTTP(w, r)
}

func (m *AuthMiddleware) userContext(ctx context.Context, claims *account.JWTClaims) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, claims.UserID)
	return context.WithValue(ctx, UserNameContextKey, claims.Name)
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(string)
	return userID, ok
}

// GetUserName extracts user name from request context
func GetUserName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(UserNameContextKey).(string)
	return name, ok
}
