package http

import (
	"context"
	"net/http"
	"time"

	"reelhub/internal/core/domain"
	"reelhub/internal/core/ports"
	"reelhub/internal/core/services"
	"reelhub/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DefaultWindowDays is used when an analytics request names no window.
const DefaultWindowDays = 7

type AdminHandler struct {
	protectedHandler
	accounts    ports.AuthService
	aggregation ports.AggregationService
	campaigns   ports.CampaignService
}

func NewAdminHandler(
	gateway *services.Gateway,
	accounts ports.AuthService,
	aggregation ports.AggregationService,
	campaigns ports.CampaignService,
) *AdminHandler {
	return &AdminHandler{
		protectedHandler: protectedHandler{gateway: gateway},
		accounts:         accounts,
		aggregation:      aggregation,
		campaigns:        campaigns,
	}
}

func (h *AdminHandler) SetupRoutes(router gin.IRouter) {
	admin := router.Group("/admin")
	{
		admin.GET("/accounts", h.ListAccounts)
		admin.GET("/accounts/:id", h.GetAccount)

		admin.GET("/analytics/user-joins", h.analytics(domain.MetricUserJoins))
		admin.GET("/analytics/income", h.analytics(domain.MetricIncome))

		admin.GET("/promotions", h.listCampaigns(domain.CampaignPromotion))
		admin.POST("/promotions", h.createCampaign(domain.CampaignPromotion))
		admin.GET("/offers", h.listCampaigns(domain.CampaignOffer))
		admin.POST("/offers", h.createCampaign(domain.CampaignOffer))
	}
}

func (h *AdminHandler) ListAccounts(c *gin.Context) {
	result, ok := h.handle(c, services.GatewayRequest{
		Action: domain.Action{Resource: domain.ResourceUserAccount, Verb: domain.VerbList},
		Execute: func(ctx context.Context, _ *domain.ClaimSet, _ domain.Scope) (interface{}, error) {
			return h.accounts.ListAccounts(ctx)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": result})
}

func (h *AdminHandler) GetAccount(c *gin.Context) {
	accountID := pathID(c, "id")
	result, ok := h.handle(c, services.GatewayRequest{
		Action: domain.Action{Resource: domain.ResourceUserAccount, Verb: domain.VerbRead},
		Execute: func(ctx context.Context, _ *domain.ClaimSet, _ domain.Scope) (interface{}, error) {
			return h.accounts.GetAccount(ctx, accountID)
		},
	})
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": result})
}

type AnalyticsResponse struct {
	Metric     domain.Metric        `json:"metric"`
	WindowDays int                  `json:"window_days"`
	Points     []domain.BucketPoint `json:"points"`
}

// analytics serves ?days=N. An unparsable value is passed on as 0 so the
// engine rejects it as an invalid window after authorization.
func (h *AdminHandler) analytics(metric domain.Metric) gin.HandlerFunc {
	return func(c *gin.Context) {
		days := DefaultWindowDays
		if raw, present := c.GetQuery("days"); present {
			parsed, err := validation.ParseWindowDays(raw)
			if err != nil {
				parsed = 0
			}
			days = parsed
		}

		result, ok := h.handle(c, services.GatewayRequest{
			Action: domain.Action{Resource: metric.Resource(), Verb: domain.VerbRead},
			Execute: func(ctx context.Context, claims *domain.ClaimSet, _ domain.Scope) (interface{}, error) {
				return h.aggregation.Aggregate(ctx, claims, metric, days)
			},
		})
		if !ok {
			return
		}
		c.JSON(http.StatusOK, AnalyticsResponse{
			Metric:     metric,
			WindowDays: days,
			Points:     result.([]domain.BucketPoint),
		})
	}
}

type CampaignRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartsAt        time.Time       `json:"starts_at"`
	EndsAt          time.Time       `json:"ends_at"`
}

func (h *AdminHandler) listCampaigns(kind domain.CampaignKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := h.handle(c, services.GatewayRequest{
			Action: domain.Action{Resource: kind.Resource(), Verb: domain.VerbList},
			Execute: func(ctx context.Context, _ *domain.ClaimSet, _ domain.Scope) (interface{}, error) {
				return h.campaigns.List(ctx, kind)
			},
		})
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"campaigns": result})
	}
}

func (h *AdminHandler) createCampaign(kind domain.CampaignKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CampaignRequest
		bindErr := deferredBindError(c.ShouldBindJSON(&req))

		result, ok := h.handle(c, services.GatewayRequest{
			Action: domain.Action{Resource: kind.Resource(), Verb: domain.VerbManage},
			Execute: func(ctx context.Context, _ *domain.ClaimSet, _ domain.Scope) (interface{}, error) {
				if bindErr != nil {
					return nil, bindErr
				}
				return h.campaigns.Create(ctx, &domain.Campaign{
					Kind:            kind,
					Title:           req.Title,
					Description:     req.Description,
					DiscountPercent: req.DiscountPercent,
					StartsAt:        req.StartsAt,
					EndsAt:          req.EndsAt,
				})
			},
		})
		if !ok {
			return
		}
		c.JSON(http.StatusCreated, gin.H{"campaign": result})
	}
}
