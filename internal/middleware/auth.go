package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"railway/internal/domain"
	"railway/internal/pkg/jwt"
	"railway/internal/pkg/response"
	"railway/internal/repository"
	"railway/internal/session"
)

// Context keys set by JWTAuth.
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxTokenID   = "token_id"
	CtxExpiresAt = "token_expires_at"
)

// UserLookup loads the account behind a token.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// ErrUserGone is returned by CurrentRole when the token belongs to a deleted account.
var ErrUserGone = errors.New("user no longer exists")

// CurrentRole returns the stored role of userID. With a nil users it trusts
// tokenRole.
func CurrentRole(ctx context.Context, users UserLookup, userID, tokenRole string) (string, error) {
	if users == nil {
		return tokenRole, nil
	}
	u, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserGone
		}
		return "", err
	}
	return string(u.Role), nil
}

// JWTAuth accepts "Authorization: Bearer <token>" and rejects revoked tokens
// when revoker is set. When users is set the account must still exist and its
// stored role replaces the one in the token.
func JWTAuth(jwtService *jwt.Service, revoker session.Revoker, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		if revoker != nil {
			revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				_ = c.Error(err)
				response.Abort(c, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Unable to verify session")
				return
			}
			if revoked {
				response.Abort(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Session has been logged out")
				return
			}
		}

		role, err := CurrentRole(c.Request.Context(), users, claims.UserID, claims.Role)
		if errors.Is(err, ErrUserGone) {
			response.Abort(c, http.StatusUnauthorized, "USER_NOT_FOUND", "Account no longer exists")
			return
		}
		if err != nil {
			_ = c.Error(err)
			response.Abort(c, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Unable to verify session")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, role)
		c.Set(CtxTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(CtxExpiresAt, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}
