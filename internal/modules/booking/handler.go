package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"railway/internal/domain"
	"railway/internal/middleware"
	"railway/internal/pkg/response"
	"railway/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the passenger booking endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.Confirm)
		bookings.GET("", h.ListMine)
		bookings.GET("/pnr/:pnr", h.GetByPNR)
		bookings.GET("/:id", h.Get)
		bookings.GET("/:id/ticket", h.Ticket)
		bookings.POST("/:id/cancel", h.Cancel)
	}
}

// Confirm books seats for the logged-in user.
// @Summary	Confirm a booking
// @Param	request	body	ConfirmRequest	true	"train, class, date and passengers"
// @Success	201	{object}	domain.Booking
// @Failure	400	{object}	map[string]interface{}	"validation failed"
// @Failure	404	{object}	map[string]interface{}	"train not found"
// @Router	/bookings [POST]
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please correct the passenger details", errs)
		return
	}

	b, err := h.service.Confirm(c.Request.Context(), c.GetString(middleware.CtxUserID), req)
	if err != nil {
		WriteError(c, err)
		return
	}

	message := "Booking confirmed"
	if b.Status == domain.BookingWaiting {
		message = "Not enough seats, booking added to the waiting list"
	}
	response.Success(c, http.StatusCreated, gin.H{
		"booking": b,
		"message": message,
	})
}

func (h *Handler) ListMine(c *gin.Context) {
	mine, err := h.service.ListForUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, mine)
}

func (h *Handler) Get(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), c.Param("id"), ViewerFrom(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) GetByPNR(c *gin.Context) {
	b, err := h.service.GetByPNR(c.Request.Context(), c.Param("pnr"), ViewerFrom(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

// Ticket renders the printable e-ticket.
// @Summary	Print ticket
// @Produce	html
// @Router	/bookings/{id}/ticket [GET]
func (h *Handler) Ticket(c *gin.Context) {
	page, err := h.service.RenderTicket(c.Request.Context(), c.Param("id"), ViewerFrom(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (h *Handler) Cancel(c *gin.Context) {
	b, err := h.service.Cancel(c.Request.Context(), c.Param("id"), ViewerFrom(c))
	if err != nil {
		WriteError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"booking": b,
		"message": "Booking cancelled successfully",
	})
}

// ViewerFrom reads the authenticated user set by middleware.JWTAuth.
func ViewerFrom(c *gin.Context) Viewer {
	return Viewer{
		UserID: c.GetString(middleware.CtxUserID),
		Admin:  domain.UserRole(c.GetString(middleware.CtxRole)) == domain.RoleAdmin,
	}
}

// WriteError maps booking errors to the API error envelope.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBookingNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrTrainNotFound):
		response.Error(c, http.StatusNotFound, "TRAIN_NOT_FOUND", "Train not found")
	case errors.Is(err, ErrClassNotFound):
		response.Error(c, http.StatusBadRequest, "CLASS_NOT_FOUND", "Selected class is not available on this train")
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Journey date must be YYYY-MM-DD")
	case errors.Is(err, ErrDateInPast):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Date cannot be in the past")
	case errors.Is(err, ErrNotRunning):
		response.Error(c, http.StatusBadRequest, "TRAIN_NOT_RUNNING", "Train does not run on the selected date")
	case errors.Is(err, ErrAlreadyCancelled):
		response.Error(c, http.StatusConflict, "ALREADY_CANCELLED", "Booking is already cancelled")
	case errors.Is(err, ErrJourneyCompleted):
		response.Error(c, http.StatusConflict, "JOURNEY_COMPLETED", "This journey has already departed")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS_CHANGE", "This status change is not allowed")
	case errors.Is(err, ErrNoSeats):
		response.Error(c, http.StatusConflict, "NO_SEATS", "Not enough seats available")
	case errors.Is(err, ErrPassengerCount):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "A booking can carry 1 to 6 passengers")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusUnauthorized, "USER_NOT_FOUND", "Account no longer exists")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only access your own bookings")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
