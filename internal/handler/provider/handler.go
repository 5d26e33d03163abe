package provider

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/handler"
	"github.com/viciniti/booking-api/internal/middleware"
	"github.com/viciniti/booking-api/internal/model"
	accountsvc "github.com/viciniti/booking-api/internal/service/account"
	"github.com/viciniti/booking-api/internal/service/appointment"
	"github.com/viciniti/booking-api/internal/service/availability"
	"github.com/viciniti/booking-api/internal/service/catalog"
)

type Handler struct {
	accounts     *accountsvc.Service
	catalog      *catalog.Service
	availability *availability.Service
	appointments *appointment.Service
	auth         *middleware.AuthMiddleware
}

func NewHandler(
	accounts *accountsvc.Service,
	catalogSvc *catalog.Service,
	availabilitySvc *availability.Service,
	appointments *appointment.Service,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		accounts:     accounts,
		catalog:      catalogSvc,
		availability: availabilitySvc,
		appointments: appointments,
		auth:         auth,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	providers := r.Group("/providers")
	{
		providers.POST("", h.auth.Authenticate(), h.auth.RequireProvider(), h.CreateProvider)
		providers.GET("/:id", h.GetProvider)
		providers.GET("/:id/services", h.ListServices)
		providers.GET("/:id/availability", h.GetAvailability)
		providers.POST("/:id/availability", h.auth.Authenticate(), h.auth.RequireProvider(), h.ReplaceAvailability)
		providers.GET("/:id/appointments", h.auth.Authenticate(), h.auth.RequireProvider(), h.ListAppointments)
	}
}

func (h *Handler) CreateProvider(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req model.CreateProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	provider, err := h.accounts.CreateProvider(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(provider))
}

func (h *Handler) GetProvider(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	provider, err := h.accounts.GetProvider(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(provider))
}

func (h *Handler) ListServices(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	services, err := h.catalog.ListForProvider(c.Request.Context(), id, true)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}

func (h *Handler) GetAvailability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	blocks, err := h.availability.List(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(blocks))
}

// ReplaceAvailability swaps the provider's entire calendar for the posted set.
// Only the provider themselves may do this.
func (h *Handler) ReplaceAvailability(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	if !h.ownsProvider(c, providerID) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not your provider profile"))
		return
	}

	var req model.ReplaceAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	blocks, err := h.availability.Replace(c.Request.Context(), providerID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(blocks))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	if !h.ownsProvider(c, providerID) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not your provider profile"))
		return
	}

	filters := &model.AppointmentFilters{ProviderID: providerID}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}

	appointments, err := h.appointments.List(c.Request.Context(), filters)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ownsProvider(c *gin.Context, providerID uuid.UUID) bool {
	userID, ok := middleware.UserID(c)
	if !ok {
		return false
	}
	provider, err := h.accounts.GetProviderForUser(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return provider.ID == providerID
}
