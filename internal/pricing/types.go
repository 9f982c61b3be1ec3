package pricing

import (
	"encoding/json"
	"time"
)

// Source tags every record produced by this gateway.
const Source = "sp-api"

// NormalizedProduct is the storefront view of one catalog item plus its offers.
// Records are never mutated once built; a refetch replaces them.
type NormalizedProduct struct {
	ASIN         string       `json:"asin"`
	Title        *string      `json:"title"`
	Brand        *string      `json:"brand"`
	BulletPoints []string     `json:"bulletPoints"`
	Images       Images       `json:"images"`
	Pricing      Pricing      `json:"pricing"`
	Availability Availability `json:"availability"`
	Source       string       `json:"source"`
	FetchedAt    time.Time    `json:"fetchedAt"`
}

type Images struct {
	Main    *string  `json:"main"`
	Gallery []string `json:"gallery"`
}

type Pricing struct {
	Current    *float64 `json:"current"`
	List       *float64 `json:"list"`
	Currency   string   `json:"currency"`
	Savings    *float64 `json:"savings"`
	SavingsPct *int     `json:"savingsPct"`
	HasBuyBox  bool     `json:"hasBuyBox"`
}

type Availability struct {
	InStock     bool    `json:"inStock"`
	TotalOffers int     `json:"totalOffers"`
	Fulfillment *string `json:"fulfillment"`
	IsPrime     bool    `json:"isPrime"`
}

// NormalizedPrice is the price and stock projection served by getPrices.
type NormalizedPrice struct {
	ASIN       string    `json:"asin"`
	Current    *float64  `json:"current"`
	List       *float64  `json:"list"`
	Currency   string    `json:"currency"`
	Savings    *float64  `json:"savings"`
	SavingsPct *int      `json:"savingsPct"`
	InStock    bool      `json:"inStock"`
	IsPrime    bool      `json:"isPrime"`
	FetchedAt  time.Time `json:"fetchedAt"`
}

// ItemError replaces the record of an item whose vendor calls failed.
type ItemError struct {
	ASIN    string      `json:"asin"`
	Message string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details"`
}

// ItemResult is either a record or an ItemError for one requested ASIN.
type ItemResult[T any] struct {
	ASIN  string
	Value *T
	Err   *ItemError
}

// OK reports whether the item was served.
func (r ItemResult[T]) OK() bool {
	return r.Err == nil && r.Value != nil
}

// MarshalJSON flattens the result to whichever side is set.
func (r ItemResult[T]) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(r.Err)
	}
	return json.Marshal(r.Value)
}

type (
	ProductResult = ItemResult[NormalizedProduct]
	PriceResult   = ItemResult[NormalizedPrice]
)
