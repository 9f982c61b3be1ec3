// Package metrics publishes batch statistics to CloudWatch.
package metrics

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/aws"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/logging"
	"github.com/imrishuroy/skincare-pricing-gateway/internal/pricing"
)

const publishTimeout = 2 * time.Second

// MetricsPublisher wraps a CloudWatch client and a namespace.
type MetricsPublisher struct {
	CloudWatch aws.CloudWatchAPI
	Namespace  string
}

// NewMetricsPublisher returns a publisher bound to a namespace.
func NewMetricsPublisher(cw aws.CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{
		CloudWatch: cw,
		Namespace:  namespace,
	}
}

// NewRecorder returns the CloudWatch publisher when enabled, otherwise a no-op.
func NewRecorder(enabled bool, cw aws.CloudWatchAPI, namespace string) pricing.Recorder {
	if !enabled || cw == nil {
		return pricing.NopRecorder{}
	}
	return NewMetricsPublisher(cw, namespace)
}

// RecordBatch publishes one datum per counter. Failures are only logged.
func (p *MetricsPublisher) RecordBatch(ctx context.Context, stats pricing.BatchStats) {
	if err := p.Publish(ctx, stats); err != nil {
		logging.WithComponent("metrics").WithError(err).Warn("Failed to publish batch metrics")
	}
}

// Publish sends the batch metrics in a single PutMetricData call.
func (p *MetricsPublisher) Publish(ctx context.Context, stats pricing.BatchStats) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	dims := []cwtypes.Dimension{{
		Name:  sdkaws.String("Action"),
		Value: sdkaws.String(stats.Action),
	}}
	now := time.Now()
	datum := func(name string, value float64, unit cwtypes.StandardUnit) cwtypes.MetricDatum {
		return cwtypes.MetricDatum{
			MetricName: sdkaws.String(name),
			Dimensions: dims,
			Timestamp:  sdkaws.Time(now),
			Unit:       unit,
			Value:      sdkaws.Float64(value),
		}
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(p.Namespace),
		MetricData: []cwtypes.MetricDatum{
			datum("ItemsRequested", float64(stats.Requested), cwtypes.StandardUnitCount),
			datum("CacheHits", float64(stats.CacheHits), cwtypes.StandardUnitCount),
			datum("VendorFetches", float64(stats.Fetched), cwtypes.StandardUnitCount),
			datum("ItemErrors", float64(stats.Failed), cwtypes.StandardUnitCount),
			datum("BatchDuration", float64(stats.Duration.Milliseconds()), cwtypes.StandardUnitMilliseconds),
		},
	}

	if _, err := p.CloudWatch.PutMetricData(ctx, input); err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
