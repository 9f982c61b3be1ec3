package spapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/credentials"
)

const (
	signingService = "execute-api"

	// sha256 of an empty body
	emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	// ItemConditionNew is the only condition the storefront sells.
	ItemConditionNew = "New"
)

// CatalogDataSets are the includedData facets requested for every item.
var CatalogDataSets = []string{"summaries", "images", "attributes"}

// Region is one SP-API selling region.
type Region struct {
	Host        string
	SandboxHost string
	AWSRegion   string
}

var regions = map[string]Region{
	"na": {"sellingpartnerapi-na.amazon.com", "sandbox.sellingpartnerapi-na.amazon.com", "us-east-1"},
	"eu": {"sellingpartnerapi-eu.amazon.com", "sandbox.sellingpartnerapi-eu.amazon.com", "eu-west-1"},
	"fe": {"sellingpartnerapi-fe.amazon.com", "sandbox.sellingpartnerapi-fe.amazon.com", "us-west-2"},
}

// Client is the vendor surface the pricing service reads from.
type Client interface {
	GetCatalogItem(ctx context.Context, asin, marketplaceID string) (*CatalogItem, error)
	GetItemOffers(ctx context.Context, asin, marketplaceID string) (*ItemOffers, error)
}

// AccessTokenSource yields LWA access tokens.
type AccessTokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// HTTPClient calls SP-API over HTTPS, signing each request with an
// assumed-role credential and the current LWA access token.
type HTTPClient struct {
	httpClient HTTPDoer
	baseURL    *url.URL
	awsRegion  string
	credential credentials.Credential
	tokens     AccessTokenSource
	signer     *v4.Signer
	nowFunc    func() time.Time
}

func (c *HTTPClient) GetCatalogItem(ctx context.Context, asin, marketplaceID string) (*CatalogItem, error) {
	q := url.Values{
		"marketplaceIds": {marketplaceID},
		"includedData":   {strings.Join(CatalogDataSets, ",")},
	}
	var out CatalogItem
	if err := c.get(ctx, "/catalog/2022-04-01/items/"+url.PathEscape(asin), q, &out); err != nil {
		return nil, fmt.Errorf("get catalog item %s: %w", asin, err)
	}
	return &out, nil
}

func (c *HTTPClient) GetItemOffers(ctx context.Context, asin, marketplaceID string) (*ItemOffers, error) {
	q := url.Values{
		"MarketplaceId": {marketplaceID},
		"ItemCondition": {ItemConditionNew},
	}
	var out GetItemOffersResponse
	if err := c.get(ctx, "/products/pricing/v0/items/"+url.PathEscape(asin)+"/offers", q, &out); err != nil {
		return nil, fmt.Errorf("get item offers %s: %w", asin, err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return nil, &Error{StatusCode: http.StatusOK, Code: first.Code, Message: first.Message, Details: out.Errors}
	}
	if out.Payload == nil {
		return &ItemOffers{ASIN: asin}, nil
	}
	return out.Payload, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := *c.baseURL
	u.Path = path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("x-amz-access-token", token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "sp-api-pricing-gateway/1.0 (Language=Go)")

	if err := c.signer.SignHTTP(ctx, c.credential.AWS(), req, emptyPayloadHash, signingService, c.awsRegion, c.nowFunc()); err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Code: "MALFORMED_RESPONSE", Message: err.Error(), Details: string(body)}
	}
	return nil
}
