package config

import (
	"fmt"
	"os"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppName identifies this gateway in logs, metrics and the STS session name.
const AppName = "sp-api-pricing-gateway"

// Config is the root configuration of the gateway and its diagnostic command.
type Config struct {
	AWS     AWSConfig     `koanf:"aws"`
	LWA     LWAConfig     `koanf:"lwa"`
	SPAPI   SPAPIConfig   `koanf:"spapi"`
	Rate    RateConfig    `koanf:"rate"`
	Cache   CacheConfig   `koanf:"cache"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
	Server  ServerConfig  `koanf:"server"`
}

// AWSConfig holds the long-lived IAM user key pair and the role it assumes.
// An empty key pair falls back to the default credential chain.
type AWSConfig struct {
	AccessKeyID      string `koanf:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey  string `koanf:"secret_access_key" validate:"required_with=AccessKeyID"`
	RoleARN          string `koanf:"role_arn" validate:"required,startswith=arn:"`
	RoleSessionName  string `koanf:"role_session_name" validate:"required,min=2,max=64"`
	Region           string `koanf:"region" validate:"required"`
	EndpointOverride string `koanf:"endpoint_override" validate:"omitempty,url"`
}

// LWAConfig holds the Login with Amazon application and its refresh token.
type LWAConfig struct {
	ClientID     string `koanf:"client_id" validate:"required"`
	ClientSecret string `koanf:"client_secret" validate:"required"`
	RefreshToken string `koanf:"refresh_token" validate:"required"`
	TokenURL     string `koanf:"token_url" validate:"required,url"`
}

type SPAPIConfig struct {
	MarketplaceID string        `koanf:"marketplace_id" validate:"required"`
	Region        string        `koanf:"region" validate:"oneof=na eu fe"`
	Sandbox       bool          `koanf:"sandbox"`
	CallTimeout   time.Duration `koanf:"call_timeout" validate:"gt=0"`
	// Endpoint replaces the regional host, e.g. with a local mock.
	Endpoint      string        `koanf:"endpoint" validate:"omitempty,url"`
}

// Mode reports "sandbox" or "production".
func (c SPAPIConfig) Mode() string {
	if c.Sandbox {
		return "sandbox"
	}
	return "production"
}

// RateConfig is the minimum spacing between vendor-touching items.
type RateConfig struct {
	CatalogInterval time.Duration `koanf:"catalog_interval" validate:"gt=0"`
	PricingInterval time.Duration `koanf:"pricing_interval" validate:"gt=0"`
}

type CacheConfig struct {
	CredentialTTL time.Duration `koanf:"credential_ttl" validate:"gt=0"`
	ProductTTL    time.Duration `koanf:"product_ttl" validate:"gt=0"`
	PriceTTL      time.Duration `koanf:"price_ttl" validate:"gt=0"`
}

type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace" validate:"required_if=Enabled true"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

type ServerConfig struct {
	RunLocal  bool   `koanf:"run_local"`
	LocalAddr string `koanf:"local_addr" validate:"required_if=RunLocal true"`
}

// envKeys maps the environment variables the function has always been
// deployed with onto koanf keys. Anything else in the environment is ignored.
var envKeys = map[string]string{
	"SPAPI_AWS_KEY":           "aws.access_key_id",
	"SPAPI_AWS_SECRET":        "aws.secret_access_key",
	"SPAPI_ROLE_ARN":          "aws.role_arn",
	"SPAPI_ROLE_SESSION_NAME": "aws.role_session_name",
	"SPAPI_STS_REGION":        "aws.region",
	"AWS_ENDPOINT_OVERRIDE":   "aws.endpoint_override",
	"LWA_CLIENT_ID":           "lwa.client_id",
	"LWA_CLIENT_SECRET":       "lwa.client_secret",
	"REFRESH_TOKEN":           "lwa.refresh_token",
	"LWA_TOKEN_URL":           "lwa.token_url",
	"MARKETPLACE_ID":          "spapi.marketplace_id",
	"SPAPI_REGION":            "spapi.region",
	"USE_SPAPI_SANDBOX":       "spapi.sandbox",
	"SPAPI_CALL_TIMEOUT":      "spapi.call_timeout",
	"SPAPI_ENDPOINT":          "spapi.endpoint",
	"SPAPI_CATALOG_INTERVAL":  "rate.catalog_interval",
	"SPAPI_PRICING_INTERVAL":  "rate.pricing_interval",
	"CACHE_CREDENTIAL_TTL":    "cache.credential_ttl",
	"CACHE_PRODUCT_TTL":       "cache.product_ttl",
	"CACHE_PRICE_TTL":         "cache.price_ttl",
	"METRICS_ENABLED":         "metrics.enabled",
	"METRICS_NAMESPACE":       "metrics.namespace",
	"LOG_LEVEL":               "log.level",
	"LOG_FORMAT":              "log.format",
	"RUN_LOCAL":               "server.run_local",
	"LOCAL_ADDR":              "server.local_addr",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"aws.role_session_name":  AppName,
		"aws.region":             "us-east-1",
		"lwa.token_url":          "https://api.amazon.com/auth/o2/token",
		"spapi.marketplace_id":   "ATVPDKIKX0DER",
		"spapi.region":           "na",
		"spapi.sandbox":          false,
		"spapi.call_timeout":     "10s",
		"rate.catalog_interval":  "1200ms",
		"rate.pricing_interval":  "500ms",
		"cache.credential_ttl":   "50m",
		"cache.product_ttl":      "15m",
		"cache.price_ttl":        "5m",
		"metrics.enabled":        false,
		"metrics.namespace":      "SkincarePricingGateway",
		"log.level":              "info",
		"log.format":             "json",
		"server.run_local":       false,
		"server.local_addr":      ":8080",
	}
}

// ConfigFileEnv names an optional JSON file layered between defaults and the environment.
const ConfigFileEnv = "CONFIG_FILE"

// Load builds the configuration from defaults, the optional CONFIG_FILE and
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	return LoadWithFile(os.Getenv(ConfigFileEnv))
}

// LoadWithFile is Load with an explicit JSON file. An empty filename skips the file.
func LoadWithFile(filename string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if filename != "" {
		if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", filename, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			ErrorUnused:      true,
			WeaklyTypedInput: true,
		},
	}
	var cfg Config
	unmarshalConf.DecoderConfig.Result = &cfg
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required values and formats.
func (c *Config) Validate() error {
	if err := validatorv10.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
