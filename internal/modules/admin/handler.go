package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"railway/internal/domain"
	"railway/internal/middleware"
	"railway/internal/modules/booking"
	"railway/internal/pkg/response"
	"railway/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects admin to be guarded by JWTAuth and AdminOnly.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	// statistics
	admin.GET("/stats", h.GetStats)

	// users
	admin.GET("/users", h.GetUsers)
	admin.GET("/users/:id", h.GetUser)
	admin.PATCH("/users/:id", h.UpdateUser)
	admin.DELETE("/users/:id", h.DeleteUser)

	// bookings
	admin.GET("/bookings", h.GetBookings)
	admin.POST("/bookings/bulk-delete", h.BulkDeleteBookings)
	admin.GET("/bookings/:id", h.GetBooking)
	admin.PATCH("/bookings/:id/status", h.UpdateBookingStatus)
	admin.DELETE("/bookings/:id", h.DeleteBooking)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.GetStatistics(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load statistics")
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// GetUsers lists users, optionally filtered by ?q= over name, username and email.
func (h *Handler) GetUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load users")
		return
	}
	response.List(c, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please correct the highlighted fields", errs)
		return
	}

	u, err := h.service.UpdateUser(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"), req)
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u.Public())
}

func (h *Handler) DeleteUser(c *gin.Context) {
	removed, err := h.service.DeleteUser(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("id"))
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":          "User deleted successfully",
		"bookings_removed": removed,
	})
}

// GetBookings lists bookings, optionally filtered by ?q= over PNR, stations
// and train name.
func (h *Handler) GetBookings(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context(), c.Query("q"))
	if err != nil {
		booking.WriteError(c, err)
		return
	}
	response.List(c, bookings)
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		booking.WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	var req booking.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please choose a valid status", errs)
		return
	}

	b, err := h.service.ChangeBookingStatus(c.Request.Context(), c.Param("id"), domain.BookingStatus(req.Status))
	if err != nil {
		booking.WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) DeleteBooking(c *gin.Context) {
	if err := h.service.DeleteBooking(c.Request.Context(), c.Param("id")); err != nil {
		booking.WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}

func (h *Handler) BulkDeleteBookings(c *gin.Context) {
	var req booking.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Select at least one booking", errs)
		return
	}

	deleted, err := h.service.BulkDeleteBookings(c.Request.Context(), req.IDs)
	if err != nil {
		booking.WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": deleted})
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrEmailTaken):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "Email already exists")
	case errors.Is(err, ErrSelfDelete):
		response.Error(c, http.StatusBadRequest, "SELF_DELETE", "You cannot delete your own account")
	case errors.Is(err, ErrSelfRoleChange):
		response.Error(c, http.StatusBadRequest, "SELF_ROLE_CHANGE", "You cannot change your own role")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
