// Package app wires configuration into the running gateway.
package app

import (
	"context"
	"fmt"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/aws"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/cache"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/config"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/credentials"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/handlers"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/metrics"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/pricing"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/spapi"
)

// App holds the long-lived, process-wide components. Everything in it
// outlives a single Lambda invocation.
type App struct {
	Config      *config.Config
	Cache       *cache.Cache
	Credentials *credentials.Cache
	Tokens      *spapi.LWATokenSource
	Clients     *spapi.Provider
	Service     *pricing.Service
}

// CachePolicy converts the configured TTLs.
func CachePolicy(c config.CacheConfig) cache.Policy {
	return cache.Policy{
		cache.KindCredential: c.CredentialTTL,
		cache.KindProduct:    c.ProductTTL,
		cache.KindPrice:      c.PriceTTL,
	}
}

// New builds the gateway from cfg using the given AWS clients.
func New(cfg *config.Config, clients *aws.AWSClients) (*App, error) {
	c := cache.New(CachePolicy(cfg.Cache))
	creds := credentials.NewCache(clients.STS, c, cfg.AWS.RoleARN, cfg.AWS.RoleSessionName)
	tokens := spapi.NewLWATokenSource(nil, cfg.LWA.TokenURL, cfg.LWA.ClientID, cfg.LWA.ClientSecret, cfg.LWA.RefreshToken)

	factory, err := spapi.NewHTTPFactory(spapi.HTTPFactoryConfig{
		Region:  cfg.SPAPI.Region,
		Sandbox: cfg.SPAPI.Sandbox,
		BaseURL: cfg.SPAPI.Endpoint,
		Tokens:  tokens,
	})
	if err != nil {
		return nil, fmt.Errorf("init sp-api factory: %w", err)
	}
	provider := spapi.NewProvider(creds, factory, spapi.WithTokenCheck(tokens))

	svc := pricing.NewService(pricing.Config{
		Clients:       provider,
		Cache:         c,
		ProductGate:   pricing.NewIntervalGate(cfg.Rate.CatalogInterval),
		PriceGate:     pricing.NewIntervalGate(cfg.Rate.PricingInterval),
		MarketplaceID: cfg.SPAPI.MarketplaceID,
		CallTimeout:   cfg.SPAPI.CallTimeout,
		Recorder:      metrics.NewRecorder(cfg.Metrics.Enabled, clients.CloudWatch, cfg.Metrics.Namespace),
	})

	return &App{
		Config:      cfg,
		Cache:       c,
		Credentials: creds,
		Tokens:      tokens,
		Clients:     provider,
		Service:     svc,
	}, nil
}

// Load reads configuration from the environment and builds real AWS clients.
func Load(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	clients, err := aws.NewAWSClients(ctx, cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("init aws clients: %w", err)
	}
	return New(cfg, clients)
}

// HandlerConfig exposes the service to the HTTP layer.
func (a *App) HandlerConfig() handlers.HandlerConfig {
	return handlers.HandlerConfig{
		Service: a.Service,
		Mode:    a.Config.SPAPI.Mode(),
	}
}
