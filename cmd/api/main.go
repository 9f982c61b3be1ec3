package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/app"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/handlers"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/logging"
)

func main() {
	a, err := app.Load(context.Background())
	if err != nil {
		log.Fatalf("failed to init gateway: %v", err)
	}
	if err := logging.Setup(a.Config.Log.Level, a.Config.Log.Format); err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}

	logger := logging.WithComponentAndFields("main", log.Fields{
		"mode":        a.Config.SPAPI.Mode(),
		"region":      a.Config.SPAPI.Region,
		"marketplace": a.Config.SPAPI.MarketplaceID,
	})

	gin.SetMode(gin.ReleaseMode)
	r := handlers.NewRouter(a.HandlerConfig())

	// if RUN_LOCAL is "true", run local HTTP server for development.
	if a.Config.Server.RunLocal {
		logger.WithField("addr", a.Config.Server.LocalAddr).Info("Running local server")
		if err := r.Run(a.Config.Server.LocalAddr); err != nil {
			logger.WithError(err).Error("Local server stopped")
			os.Exit(1)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)
	logger.Info("Starting lambda handler")

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
