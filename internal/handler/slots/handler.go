package slots

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/handler"
	"github.com/viciniti/booking-api/internal/middleware"
	"github.com/viciniti/booking-api/internal/service/slot"
)

type Handler struct {
	slots *slot.Service
	auth  *middleware.AuthMiddleware
}

func NewHandler(slots *slot.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{slots: slots, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/services")
	{
		services.GET("/:id/slots", h.GetSlots)
		services.GET("/:id/slots/discounted", h.auth.OptionalAuthenticate(), h.GetDiscountedSlots)
	}
}

func (h *Handler) GetSlots(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
		return
	}

	result, err := h.slots.GetSlots(c.Request.Context(), serviceID, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

// GetDiscountedSlots returns slots with proximity pricing for the logged-in
// consumer. Anonymous callers get the plain slots.
func (h *Handler) GetDiscountedSlots(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
		return
	}

	userID, authenticated := middleware.UserID(c)
	if !authenticated {
		result, err := h.slots.GetSlots(c.Request.Context(), serviceID, time.Now())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
		return
	}

	result, err := h.slots.GetDiscountedSlots(c.Request.Context(), serviceID, userID, time.Now())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}
