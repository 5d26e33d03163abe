package discount

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/viciniti/booking-api/internal/handler"
	"github.com/viciniti/booking-api/internal/middleware"
	"github.com/viciniti/booking-api/internal/model"
	accountsvc "github.com/viciniti/booking-api/internal/service/account"
	"github.com/viciniti/booking-api/internal/service/discount"
)

type Handler struct {
	discounts *discount.Service
	accounts  *accountsvc.Service
	auth      *middleware.AuthMiddleware
}

func NewHandler(discounts *discount.Service, accounts *accountsvc.Service, auth *middleware.AuthMiddleware) *Handler {
	return &Handler{discounts: discounts, accounts: accounts, auth: auth}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cfg := r.Group("/discount-config", h.auth.Authenticate(), h.auth.RequireProvider())
	{
		cfg.GET("", h.Get)
		cfg.PUT("", h.Update)
	}
}

// Get returns the caller's discount configuration, creating it with defaults
// on first access.
func (h *Handler) Get(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	cfg, err := h.discounts.GetOrCreate(c.Request.Context(), providerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(cfg))
}

func (h *Handler) Update(c *gin.Context) {
	providerID, ok := h.providerID(c)
	if !ok {
		return
	}

	var req model.UpdateDiscountConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	cfg, err := h.discounts.Update(c.Request.Context(), providerID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(cfg))
}

func (h *Handler) providerID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := middleware.UserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return uuid.Nil, false
	}

	provider, err := h.accounts.GetProviderForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return uuid.Nil, false
	}
	return provider.ID, true
}
