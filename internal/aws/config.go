package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	appconfig "github.com/imrishuroy/skincare-pricing-gateway/internal/config"
)

// LoadAWSConfig builds the SDK config used for STS and CloudWatch. A configured
// key pair wins over the default chain so the host's own AWS_* variables
// can't leak into the role assumption.
func LoadAWSConfig(ctx context.Context, c appconfig.AWSConfig) (sdkaws.Config, error) {
	region := c.Region
	if region == "" {
		region = "us-east-1" // default fallback
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if c.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}
	if c.EndpointOverride != "" {
		opts = append(opts, config.WithBaseEndpoint(c.EndpointOverride))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return cfg, nil
}
