package train

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"railway/internal/pkg/response"
	"railway/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	trains := rg.Group("/trains")
	{
		trains.GET("", h.List)
		trains.GET("/search", h.Search)
		trains.GET("/:id", h.Get)
	}
}

// RegisterAdminRoutes expects rg to be admin-only already.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	trains := rg.Group("/trains")
	{
		trains.GET("", h.List)
		trains.POST("", h.Create)
		trains.GET("/:id", h.Get)
		trains.PUT("/:id", h.Update)
		trains.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	trains, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load trains")
		return
	}
	response.List(c, trains)
}

func (h *Handler) Get(c *gin.Context) {
	t, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid search parameters")
		return
	}
	if errs := validator.Validate(q); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please correct the search form", errs)
		return
	}

	results, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.List(c, results)
}

func (h *Handler) Create(c *gin.Context) {
	var req TrainRequest
	if !bindTrain(c, &req) {
		return
	}

	t, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) Update(c *gin.Context) {
	var req TrainRequest
	if !bindTrain(c, &req) {
		return
	}

	t, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Train deleted successfully"})
}

func bindTrain(c *gin.Context, req *TrainRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Please correct the train details", errs)
		return false
	}
	return true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTrainNotFound):
		response.Error(c, http.StatusNotFound, "TRAIN_NOT_FOUND", "Train not found")
	case errors.Is(err, ErrNumberTaken):
		response.Error(c, http.StatusConflict, "TRAIN_NUMBER_EXISTS", "A train with this number already exists")
	case errors.Is(err, ErrDuplicateClass):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Class codes must be unique within a train")
	case errors.Is(err, ErrDateInPast):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Date cannot be in the past")
	case errors.Is(err, ErrInvalidDate):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Journey date must be YYYY-MM-DD")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
