package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/upb/inventory-admin/services/identity"
	"github.com/upb/inventory-admin/utils"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating bearer tokens
type TokenValidator interface {
	// ValidateToken validates a token and returns claims
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// IdentityTokenValidator adapts the identity token service to TokenValidator
type IdentityTokenValidator struct {
	tokens *identity.TokenService
}

// NewIdentityTokenValidator creates a new IdentityTokenValidator
func NewIdentityTokenValidator(tokens *identity.TokenService) *IdentityTokenValidator {
	return &IdentityTokenValidator{tokens: tokens}
}

// ValidateToken validates the token signature, audience, issuer and lifetime
func (v *IdentityTokenValidator) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tc, err := v.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	return &Claims{
		Subject:  tc.Subject,
		TokenID:  tc.ID,
		Email:    tc.Email,
		UserID:   tc.UserID,
		FullName: tc.FullName,
		RoleID:   tc.RoleID,
	}, nil
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// AuthTokenCookieName is the cookie carrying the token for browser clients.
// The Authorization header takes precedence.
const AuthTokenCookieName = "auth_token"

// RequireAuth is a middleware that requires a valid token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractToken(r)
		if token == "" {
			m.logger.Debug("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			message := "Invalid token"
			if errors.Is(err, identity.ErrTokenExpired) {
				message = "Token expired"
			}
			_ = utils.WriteUnauthorized(w, message)
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", claims.UserID))

		next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
	})
}

// extractToken extracts the token from the Authorization header ("Bearer TOKEN")
// or from the auth_token cookie
func extractToken(r *http.Request) string {
	if token := extractBearerToken(r); token != "" {
		return token
	}
	if cookie, err := r.Cookie(AuthTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
