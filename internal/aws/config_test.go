package aws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/imrishuroy/skincare-pricing-gateway/internal/config"
)

func TestLoadAWSConfig_DefaultRegion(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), appconfig.AWSConfig{})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", cfg.Region)
}

func TestLoadAWSConfig_StaticKeysAndEndpoint(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), appconfig.AWSConfig{
		Region:           "eu-west-1",
		AccessKeyID:      "AKIATESTKEY",
		SecretAccessKey:  "secret",
		EndpointOverride: "http://localhost:4566",
	})
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
	require.NotNil(t, cfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *cfg.BaseEndpoint)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIATESTKEY", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
}
