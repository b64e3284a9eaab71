package http

import (
	"context"
	"net/http"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/core/services"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	protectedHandler
	billing ports.BillingService
}

func NewBillingHandler(billing ports.BillingService, gateway *services.Gateway) *BillingHandler {
	return &BillingHandler{
		protectedHandler: protectedHandler{gateway: gateway},
		billing:          billing,
	}
}

func (h *BillingHandler) SetupRoutes(router gin.IRouter) {
	router.GET("/plans", h.ListPlans)
	router.POST("/me/subscriptions", h.Subscribe)
	router.GET("/me/transactions", h.ListTransactions)
}

type SubscribeRequest struct {
	Plan string `json:"plan"`
}

func (h *BillingHandler) ListPlans(c *gin.Context) {
	result, ok := h.handle(c, services.GatewayRequest{
		Action: domain.Action{Resource: domain.ResourceSubscription, Verb: domain.VerbRead},
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			return h.billing.Plans(ctx, scope)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": result})
}

func (h *BillingHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	bindErr := deferredBindError(c.ShouldBindJSON(&req))

	result, ok := h.handle(c, services.GatewayRequest{
		Action: domain.Action{Resource: domain.ResourceSubscription, Verb: domain.VerbCreate},
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			if bindErr != nil {
				return nil, bindErr
			}
			return h.billing.Subscribe(ctx, scope, req.Plan)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *BillingHandler) ListTransactions(c *gin.Context) {
	result, ok := h.handle(c, services.GatewayRequest{
		Action: domain.Action{Resource: domain.ResourceSubscription, Verb: domain.VerbList},
		Execute: func(ctx context.Context, _ *domain.ClaimSet, scope domain.Scope) (interface{}, error) {
			return h.billing.ListTransactions(ctx, scope)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": result})
}
