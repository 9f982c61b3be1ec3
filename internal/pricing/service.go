package pricing

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/cache"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/logging"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/spapi"
)

// DefaultCallTimeout bounds the vendor calls of a single item.
const DefaultCallTimeout = 10 * time.Second

// ClientSource hands out a vendor client bound to a fresh credential.
type ClientSource interface {
	Client(ctx context.Context) (spapi.Client, error)
}

type Config struct {
	Clients       ClientSource
	Cache         *cache.Cache
	ProductGate   Gate
	PriceGate     Gate
	MarketplaceID string
	CallTimeout   time.Duration
	Recorder      Recorder
	Now           func() time.Time
}

// Service resolves batches of ASINs into normalized records, serving
// from the cache where it can and pacing vendor calls through the gates.
type Service struct {
	clients       ClientSource
	cache         *cache.Cache
	productGate   Gate
	priceGate     Gate
	marketplaceID string
	callTimeout   time.Duration
	recorder      Recorder
	now           func() time.Time
}

func NewService(cfg Config) *Service {
	s := &Service{
		clients:       cfg.Clients,
		cache:         cfg.Cache,
		productGate:   cfg.ProductGate,
		priceGate:     cfg.PriceGate,
		marketplaceID: cfg.MarketplaceID,
		callTimeout:   cfg.CallTimeout,
		recorder:      cfg.Recorder,
		now:           cfg.Now,
	}
	if s.cache == nil {
		s.cache = cache.New(cache.DefaultPolicy())
	}
	if s.productGate == nil {
		s.productGate = NewIntervalGate(1200 * time.Millisecond)
	}
	if s.priceGate == nil {
		s.priceGate = NewIntervalGate(500 * time.Millisecond)
	}
	if s.callTimeout <= 0 {
		s.callTimeout = DefaultCallTimeout
	}
	if s.recorder == nil {
		s.recorder = NopRecorder{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// FetchProducts returns one result per id, in input order. Only a failure to
// obtain a vendor client fails the batch; item failures become error records.
func (s *Service) FetchProducts(ctx context.Context, ids []string) ([]ProductResult, error) {
	return runBatch(ctx, s, batch[NormalizedProduct]{
		action: ActionProducts,
		kind:   cache.KindProduct,
		gate:   s.productGate,
		fetch:  s.fetchProduct,
	}, ids)
}

// FetchPrices is FetchProducts restricted to the offers endpoint.
func (s *Service) FetchPrices(ctx context.Context, ids []string) ([]PriceResult, error) {
	return runBatch(ctx, s, batch[NormalizedPrice]{
		action: ActionPrices,
		kind:   cache.KindPrice,
		gate:   s.priceGate,
		fetch:  s.fetchPrice,
	}, ids)
}

func (s *Service) fetchProduct(ctx context.Context, client spapi.Client, asin string) (*NormalizedProduct, error) {
	var (
		item   *spapi.CatalogItem
		offers *spapi.ItemOffers
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		item, err = client.GetCatalogItem(gctx, asin, s.marketplaceID)
		return err
	})
	g.Go(func() error {
		var err error
		offers, err = client.GetItemOffers(gctx, asin, s.marketplaceID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NormalizeProduct(asin, s.marketplaceID, item, offers, s.now()), nil
}

func (s *Service) fetchPrice(ctx context.Context, client spapi.Client, asin string) (*NormalizedPrice, error) {
	offers, err := client.GetItemOffers(ctx, asin, s.marketplaceID)
	if err != nil {
		return nil, err
	}
	return NormalizePrice(asin, offers, s.now()), nil
}

type batch[T any] struct {
	action string
	kind   cache.Kind
	gate   Gate
	fetch  func(ctx context.Context, client spapi.Client, asin string) (*T, error)
}

func runBatch[T any](ctx context.Context, s *Service, b batch[T], ids []string) ([]ItemResult[T], error) {
	results := make([]ItemResult[T], 0, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	// Started items run to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	logger := logging.WithComponentAndFields("pricing", log.Fields{
		"action": b.action,
		"count":  len(ids),
	})

	start := s.now()
	stats := BatchStats{Action: b.action, Requested: len(ids)}
	defer func() {
		stats.Duration = s.now().Sub(start)
		s.recorder.RecordBatch(ctx, stats)
	}()

	var client spapi.Client
	for _, id := range ids {
		if v, ok := cache.Lookup[*T](s.cache, b.kind, id); ok {
			stats.CacheHits++
			results = append(results, ItemResult[T]{ASIN: id, Value: v})
			continue
		}

		if client == nil {
			c, err := s.clients.Client(ctx)
			if err != nil {
				logger.WithError(err).Error("Failed to acquire sp-api client")
				return nil, fmt.Errorf("acquire sp-api client: %w", err)
			}
			client = c
		}

		if err := b.gate.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate gate: %w", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		v, err := b.fetch(callCtx, client, id)
		cancel()
		if err != nil {
			stats.Failed++
			logger.WithError(err).WithField("asin", id).Warn("Item fetch failed")
			results = append(results, ItemResult[T]{ASIN: id, Err: newItemError(id, err)})
			continue
		}

		stats.Fetched++
		s.cache.Set(b.kind, id, v)
		results = append(results, ItemResult[T]{ASIN: id, Value: v})
	}

	logger.WithFields(log.Fields{
		"cache_hits": stats.CacheHits,
		"fetched":    stats.Fetched,
		"failed":     stats.Failed,
	}).Info("Batch complete")
	return results, nil
}
