package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/logging"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/middleware"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/pricing"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/validation"
)

const (
	healthMessage  = "SP-API pricing gateway is running"
	noErrorDetails = "No additional details"
)

// GatewayPaths are the routes the storefront calls.
var GatewayPaths = []string{"/", "/api/sp-api-products"}

// PricingService resolves batches of ASINs.
type PricingService interface {
	FetchProducts(ctx context.Context, ids []string) ([]pricing.ProductResult, error)
	FetchPrices(ctx context.Context, ids []string) ([]pricing.PriceResult, error)
}

// HandlerConfig groups dependencies for the gateway handler.
type HandlerConfig struct {
	Service PricingService
	// Mode is "sandbox" or "production" and is echoed in every response.
	Mode string
	Now  func() time.Time
}

// RegisterGatewayRoutes registers the gateway on every path in GatewayPaths.
func RegisterGatewayRoutes(r *gin.Engine, cfg HandlerConfig) {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	h := &gatewayHandler{cfg: cfg, v: validation.New()}

	for _, p := range GatewayPaths {
		r.GET(p, h.handle)
		r.OPTIONS(p, h.handle)
	}
}

type gatewayHandler struct {
	cfg HandlerConfig
	v   *validatorv10.Validate
}

func (h *gatewayHandler) handle(c *gin.Context) {
	var q validation.GatewayQuery
	if err := validation.BindAndValidate(c, &q, h.v); err != nil {
		// BindAndValidate already wrote a 400
		return
	}

	switch q.Action {
	case validation.ActionHealth:
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"message":   healthMessage,
			"mode":      h.cfg.Mode,
			"timestamp": h.timestamp(),
		})
	case validation.ActionProducts:
		products, err := h.cfg.Service.FetchProducts(c.Request.Context(), q.IDs())
		if err != nil {
			h.fail(c, q.Action, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"products":  products,
			"count":     len(products),
			"timestamp": h.timestamp(),
			"mode":      h.cfg.Mode,
		})
	case validation.ActionPrices:
		prices, err := h.cfg.Service.FetchPrices(c.Request.Context(), q.IDs())
		if err != nil {
			h.fail(c, q.Action, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"prices":    prices,
			"count":     len(prices),
			"timestamp": h.timestamp(),
			"mode":      h.cfg.Mode,
		})
	}
}

func (h *gatewayHandler) fail(c *gin.Context, action string, err error) {
	logging.WithComponentAndFields("gateway", log.Fields{
		"action":     action,
		"request_id": middleware.GetRequestID(c),
	}).WithError(err).Error("Batch failed")

	details := pricing.ErrorDetails(err)
	if details == nil {
		details = noErrorDetails
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   pricing.ErrorMessage(err),
		"code":    pricing.ErrorCode(err, pricing.UnknownErrorCode),
		"details": details,
	})
}

func (h *gatewayHandler) timestamp() string {
	return h.cfg.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// Recovery turns a panic into the gateway's 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.WithComponentAndFields("gateway", log.Fields{
			"panic":      recovered,
			"request_id": middleware.GetRequestID(c),
		}).Error("Recovered from panic")

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"code":    pricing.UnknownErrorCode,
			"details": noErrorDetails,
		})
	})
}
