package middleware

import (
	"context"
	"net/http"
	"strings"

	"hospital-records/internal/domain/entity"
	"hospital-records/internal/domain/repository"
	"hospital-records/internal/service"
	"hospital-records/pkg/jwt"
	"hospital-records/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UsernameKey contextKey = "username"
	RoleKey     contextKey = "role"
	TokenIDKey  contextKey = "token_id"
)

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	accountRepo repository.AccountRepository
	log         *logrus.Logger
}

func NewAuthMiddleware(jwtService *jwt.JWTService, accountRepo repository.AccountRepository, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		accountRepo: accountRepo,
		log:         log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		// A deactivated account loses access even with an unexpired token.
		account, err := m.accountRepo.FindByUsername(claims.Username)
		if err != nil {
			m.log.Warnf("Failed to load account %s: %+v", claims.Username, err)
			response.InternalServerError(w, "Failed to validate token")
			return
		}
		if account == nil || !account.IsActive {
			response.Unauthorized(w, "Account is not active")
			return
		}

		ctx := context.WithValue(r.Context(), UsernameKey, account.Username)
		ctx = context.WithValue(ctx, RoleKey, account.Role)
		ctx = context.WithValue(ctx, TokenIDKey, claims.TokenID)
		ctx = service.WithActor(ctx, account.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUsernameFromContext extracts the authenticated username from context
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameKey).(string)
	return username, ok
}

// GetRoleFromContext extracts the account role from context
func GetRoleFromContext(ctx context.Context) (entity.Role, bool) {
	role, ok := ctx.Value(RoleKey).(entity.Role)
	return role, ok
}

// GetTokenIDFromContext extracts token ID from context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	tokenID, ok := ctx.Value(TokenIDKey).(string)
	return tokenID, ok
}
