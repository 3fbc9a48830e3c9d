package feed

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"railway/internal/domain"
	"railway/internal/middleware"
	"railway/internal/pkg/jwt"
	"railway/internal/pkg/response"
	"railway/internal/session"
)

type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	revoker  session.Revoker
	users    middleware.UserLookup
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHandler accepts browser connections from allowedOrigins. Requests
// without an Origin header (non-browser clients) are always accepted.
func NewHandler(hub *Hub, jwtService *jwt.Service, revoker session.Revoker, users middleware.UserLookup, allowedOrigins []string, logger *zap.Logger) *Handler {
	return &Handler{
		hub:     hub,
		jwt:     jwtService,
		revoker: revoker,
		users:   users,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/admin/feed", h.Connect)
}

// Connect upgrades to a websocket for admins.
//
// Browsers cannot set headers on websocket requests, so the JWT comes in
// the token query parameter.
func (h *Handler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "Token is required, use ?token=")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}
	if h.revoker != nil {
		revoked, err := h.revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			_ = c.Error(err)
			response.Error(c, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Unable to verify session")
			return
		}
		if revoked {
			response.Error(c, http.StatusUnauthorized, "TOKEN_REVOKED", "Session has been logged out")
			return
		}
	}

	role, err := middleware.CurrentRole(c.Request.Context(), h.users, claims.UserID, claims.Role)
	if errors.Is(err, middleware.ErrUserGone) {
		response.Error(c, http.StatusUnauthorized, "USER_NOT_FOUND", "Account no longer exists")
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "Unable to verify session")
		return
	}
	if domain.UserRole(role) != domain.RoleAdmin {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("feed upgrade failed", zap.Error(err))
		return
	}
	h.hub.ServeWS(conn, claims.UserID)
}
