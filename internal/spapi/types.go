package spapi

// Catalog Items API 2022-04-01, only the facets requested by the gateway.

// CatalogItem is the getCatalogItem response body.
type CatalogItem struct {
	ASIN       string               `json:"asin"`
	Summaries  []ItemSummary        `json:"summaries,omitempty"`
	Images     []ItemImagesByMarket `json:"images,omitempty"`
	Attributes ItemAttributes       `json:"attributes,omitempty"`
}

type ItemSummary struct {
	MarketplaceID string `json:"marketplaceId"`
	Brand         string `json:"brand,omitempty"`
	ItemName      string `json:"itemName,omitempty"`
}

type ItemImagesByMarket struct {
	MarketplaceID string      `json:"marketplaceId"`
	Images        []ItemImage `json:"images"`
}

type ItemImage struct {
	Variant string `json:"variant"`
	Link    string `json:"link"`
	Height  int    `json:"height,omitempty"`
	Width   int    `json:"width,omitempty"`
}

// ItemAttributes keeps only the attributes the storefront renders.
type ItemAttributes struct {
	BulletPoints []AttributeValue `json:"bullet_point,omitempty"`
}

type AttributeValue struct {
	Value         string `json:"value"`
	LanguageTag   string `json:"language_tag,omitempty"`
	MarketplaceID string `json:"marketplace_id,omitempty"`
}

// Product Pricing API v0, getItemOffers.

// GetItemOffersResponse wraps the offers payload.
type GetItemOffersResponse struct {
	Payload *ItemOffers `json:"payload,omitempty"`
	Errors  []APIError  `json:"errors,omitempty"`
}

type ItemOffers struct {
	ASIN          string        `json:"ASIN,omitempty"`
	Status        string        `json:"status,omitempty"`
	ItemCondition string        `json:"ItemCondition,omitempty"`
	Summary       *OfferSummary `json:"Summary,omitempty"`
}

type OfferSummary struct {
	TotalOfferCount int          `json:"TotalOfferCount"`
	LowestPrices    []OfferPrice `json:"LowestPrices,omitempty"`
	BuyBoxPrices    []OfferPrice `json:"BuyBoxPrices,omitempty"`
	ListPrice       *Money       `json:"ListPrice,omitempty"`
}

// OfferPrice is an entry of LowestPrices or BuyBoxPrices.
type OfferPrice struct {
	Condition          string `json:"condition"`
	FulfillmentChannel string `json:"fulfillmentChannel,omitempty"`
	LandedPrice        *Money `json:"LandedPrice,omitempty"`
	ListingPrice       *Money `json:"ListingPrice,omitempty"`
	Shipping           *Money `json:"Shipping,omitempty"`
}

type Money struct {
	CurrencyCode string  `json:"CurrencyCode,omitempty"`
	Amount       float64 `json:"Amount"`
}

// APIError is one element of an SP-API "errors" array.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
