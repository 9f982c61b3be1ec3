package spapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/credentials"
)

// Factory builds a vendor client bound to one credential.
type Factory interface {
	NewClient(cred credentials.Credential) Client
}

// HTTPFactoryConfig selects the region and mode of the clients a factory builds.
type HTTPFactoryConfig struct {
	Region  string
	Sandbox bool
	// BaseURL overrides the regional host, e.g. for tests.
	BaseURL string
	Tokens  AccessTokenSource
	// HTTPClient may be nil.
	HTTPClient HTTPDoer
}

// HTTPFactory builds HTTPClients. The LWA token source is shared by every
// client so rebuilding on credential refresh doesn't repeat the token exchange.
type HTTPFactory struct {
	httpClient HTTPDoer
	baseURL    *url.URL
	awsRegion  string
	tokens     AccessTokenSource
	signer     *v4.Signer
}

// NewHTTPFactory validates the region and resolves the endpoint.
func NewHTTPFactory(cfg HTTPFactoryConfig) (*HTTPFactory, error) {
	r, ok := regions[cfg.Region]
	if !ok {
		return nil, fmt.Errorf("unknown sp-api region %q", cfg.Region)
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("sp-api factory needs an access token source")
	}

	raw := cfg.BaseURL
	if raw == "" {
		host := r.Host
		if cfg.Sandbox {
			host = r.SandboxHost
		}
		raw = "https://" + host
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse sp-api base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &HTTPFactory{
		httpClient: httpClient,
		baseURL:    base,
		awsRegion:  r.AWSRegion,
		tokens:     cfg.Tokens,
		signer:     v4.NewSigner(),
	}, nil
}

func (f *HTTPFactory) NewClient(cred credentials.Credential) Client {
	return &HTTPClient{
		httpClient: f.httpClient,
		baseURL:    f.baseURL,
		awsRegion:  f.awsRegion,
		credential: cred,
		tokens:     f.tokens,
		signer:     f.signer,
		nowFunc:    time.Now,
	}
}

// CredentialSource yields the current delegated credential.
type CredentialSource interface {
	Credential(ctx context.Context) (credentials.Credential, error)
}

// Provider hands out a client bound to the current credential and rebuilds
// it whenever the credential changes.
type Provider struct {
	creds   CredentialSource
	factory Factory
	tokens  AccessTokenSource

	mu      sync.Mutex
	client  Client
	boundTo credentials.Credential
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithTokenCheck makes Client fail when no LWA access token can be obtained,
// so auth failures surface once per batch instead of once per item.
func WithTokenCheck(tokens AccessTokenSource) ProviderOption {
	return func(p *Provider) {
		p.tokens = tokens
	}
}

func NewProvider(creds CredentialSource, factory Factory, opts ...ProviderOption) *Provider {
	p := &Provider{creds: creds, factory: factory}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Client returns a ready client. Credential and token failures propagate unchanged.
func (p *Provider) Client(ctx context.Context) (Client, error) {
	cred, err := p.creds.Credential(ctx)
	if err != nil {
		return nil, err
	}
	if p.tokens != nil {
		if _, err := p.tokens.AccessToken(ctx); err != nil {
			return nil, err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil || p.boundTo != cred {
		p.client = p.factory.NewClient(cred)
		p.boundTo = cred
	}
	return p.client, nil
}
