package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/handler"
	"github.com/viciniti/booking-api/internal/middleware"
	"github.com/viciniti/booking-api/internal/model"
	accountsvc "github.com/viciniti/booking-api/internal/service/account"
	"github.com/viciniti/booking-api/internal/service/appointment"
)

type Handler struct {
	appointments *appointment.Service
	accounts     *accountsvc.Service
	auth         *middleware.AuthMiddleware
}

func NewHandler(appointments *appointment.Service, accounts *accountsvc.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{appointments: appointments, accounts: accounts, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments", h.auth.Authenticate())
	{
		appointments.POST("", h.Book)
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Update)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.DELETE("/:id", h.Delete)
	}
}

// Book answers 409 with the conflict list when the requested window collides
// with the provider's buffered calendar.
func (h *Handler) Book(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.appointments.Book(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.appointments.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if !h.canAccess(c, apt) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not your appointment"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

// List scopes results by the caller's role: consumers see their own bookings,
// providers see their calendar.
func (h *Handler) List(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	userType, _ := c.Get(middleware.ContextUserType)

	filters := &model.AppointmentFilters{}
	if userType == model.UserTypeProvider {
		provider, err := h.accounts.GetProviderForUser(c.Request.Context(), userID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		filters.ProviderID = provider.ID
	} else {
		filters.ConsumerID = userID
	}

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

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	existing, err := h.appointments.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !h.canAccess(c, existing) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not your appointment"))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.appointments.Update(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

type updateStatusRequest struct {
	Status model.AppointmentStatus `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	existing, err := h.appointments.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !h.canAccess(c, existing) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not your appointment"))
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.appointments.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	existing, err := h.appointments.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !h.canAccess(c, existing) {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not your appointment"))
		return
	}

	if err := h.appointments.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// canAccess allows the booking consumer, or the provider who owns the
// service, to act on an appointment.
func (h *Handler) canAccess(c *gin.Context, apt *model.Appointment) bool {
	userID, ok := middleware.UserID(c)
	if !ok {
		return false
	}
	if apt.ConsumerID == userID {
		return true
	}

	userType, _ := c.Get(middleware.ContextUserType)
	if userType != model.UserTypeProvider {
		return false
	}

	provider, err := h.accounts.GetProviderForUser(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	ownerID, err := h.appointments.ProviderID(c.Request.Context(), apt)
	if err != nil {
		return false
	}
	return ownerID == provider.ID
}
