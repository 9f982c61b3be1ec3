package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/middleware"
)

// NewRouter builds the engine served both locally and behind API Gateway.
func NewRouter(cfg HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.CORS(), middleware.RequestLogger(), Recovery())

	RegisterGatewayRoutes(r, cfg)

	return r
}
