package pricing

import (
	"math"
	"strings"
	"time"

	"github.com/imrishuroy/skincare-pricing-gateway/internal/spapi"
)

const (
	defaultCurrency = "USD"
	amazonChannel   = "Amazon"
	conditionNew    = "new"
	maxGallery      = 4
)

// NormalizeProduct merges a catalog item and its offers into one record.
// Either payload may be nil.
func NormalizeProduct(asin, marketplaceID string, item *spapi.CatalogItem, offers *spapi.ItemOffers, fetchedAt time.Time) *NormalizedProduct {
	if item == nil {
		item = &spapi.CatalogItem{}
	}

	p := &NormalizedProduct{
		ASIN:         asin,
		BulletPoints: bulletPoints(item),
		Images:       images(item, marketplaceID),
		Source:       Source,
		FetchedAt:    fetchedAt,
	}
	if s := summaryFor(item, marketplaceID); s != nil {
		p.Title = nonEmpty(s.ItemName)
		p.Brand = nonEmpty(s.Brand)
	}

	o := summarizeOffers(offers)
	p.Pricing = Pricing{
		Current:    o.current,
		List:       o.list,
		Currency:   o.currency,
		Savings:    o.savings,
		SavingsPct: o.savingsPct,
		HasBuyBox:  o.hasBuyBox,
	}
	p.Availability = Availability{
		InStock:     o.inStock,
		TotalOffers: o.totalOffers,
		Fulfillment: o.fulfillment,
		IsPrime:     o.isPrime,
	}
	return p
}

// NormalizePrice applies the same pricing rules to the offers payload alone.
func NormalizePrice(asin string, offers *spapi.ItemOffers, fetchedAt time.Time) *NormalizedPrice {
	o := summarizeOffers(offers)
	return &NormalizedPrice{
		ASIN:       asin,
		Current:    o.current,
		List:       o.list,
		Currency:   o.currency,
		Savings:    o.savings,
		SavingsPct: o.savingsPct,
		InStock:    o.inStock,
		IsPrime:    o.isPrime,
		FetchedAt:  fetchedAt,
	}
}

func summaryFor(item *spapi.CatalogItem, marketplaceID string) *spapi.ItemSummary {
	for i := range item.Summaries {
		if item.Summaries[i].MarketplaceID == marketplaceID {
			return &item.Summaries[i]
		}
	}
	if len(item.Summaries) > 0 {
		return &item.Summaries[0]
	}
	return nil
}

func bulletPoints(item *spapi.CatalogItem) []string {
	out := make([]string, 0, len(item.Attributes.BulletPoints))
	for _, b := range item.Attributes.BulletPoints {
		out = append(out, b.Value)
	}
	return out
}

func images(item *spapi.CatalogItem, marketplaceID string) Images {
	var set []spapi.ItemImage
	if len(item.Images) > 0 {
		set = item.Images[0].Images
	}
	for _, byMarket := range item.Images {
		if byMarket.MarketplaceID == marketplaceID {
			set = byMarket.Images
			break
		}
	}

	out := Images{Gallery: []string{}}
	for _, img := range set {
		if img.Variant == "MAIN" {
			if out.Main == nil {
				out.Main = nonEmpty(img.Link)
			}
			continue
		}
		if img.Variant == "SWCH" || len(out.Gallery) == maxGallery {
			continue
		}
		out.Gallery = append(out.Gallery, img.Link)
	}
	return out
}

type offerFacts struct {
	current     *float64
	list        *float64
	currency    string
	savings     *float64
	savingsPct  *int
	hasBuyBox   bool
	inStock     bool
	totalOffers int
	fulfillment *string
	isPrime     bool
}

func summarizeOffers(offers *spapi.ItemOffers) offerFacts {
	var summary spapi.OfferSummary
	if offers != nil && offers.Summary != nil {
		summary = *offers.Summary
	}

	buyBox := pickBuyBox(summary.BuyBoxPrices)
	lowest := pickLowest(summary.LowestPrices)

	f := offerFacts{
		current:     firstAmount(landed(buyBox), listing(buyBox), landed(lowest)),
		list:        firstAmount(summary.ListPrice),
		currency:    firstCurrency(landed(buyBox), landed(lowest)),
		hasBuyBox:   buyBox != nil,
		totalOffers: summary.TotalOfferCount,
		inStock:     summary.TotalOfferCount > 0,
	}

	switch {
	case buyBox != nil && buyBox.FulfillmentChannel != "":
		f.fulfillment = nonEmpty(buyBox.FulfillmentChannel)
	case lowest != nil && lowest.FulfillmentChannel != "":
		f.fulfillment = nonEmpty(lowest.FulfillmentChannel)
	}
	f.isPrime = f.fulfillment != nil && *f.fulfillment == amazonChannel

	if f.list != nil && f.current != nil && *f.list > *f.current {
		savings := round2(*f.list - *f.current)
		pct := int(math.Round(savings / *f.list * 100))
		f.savings = &savings
		f.savingsPct = &pct
	}
	return f
}

// pickBuyBox prefers the "new" condition entry, case-insensitively.
func pickBuyBox(prices []spapi.OfferPrice) *spapi.OfferPrice {
	for i := range prices {
		if strings.EqualFold(prices[i].Condition, conditionNew) {
			return &prices[i]
		}
	}
	if len(prices) > 0 {
		return &prices[0]
	}
	return nil
}

// pickLowest prefers a new offer fulfilled by Amazon.
func pickLowest(prices []spapi.OfferPrice) *spapi.OfferPrice {
	for i := range prices {
		if strings.EqualFold(prices[i].Condition, conditionNew) && prices[i].FulfillmentChannel == amazonChannel {
			return &prices[i]
		}
	}
	if len(prices) > 0 {
		return &prices[0]
	}
	return nil
}

func landed(p *spapi.OfferPrice) *spapi.Money {
	if p == nil {
		return nil
	}
	return p.LandedPrice
}

func listing(p *spapi.OfferPrice) *spapi.Money {
	if p == nil {
		return nil
	}
	return p.ListingPrice
}

// firstAmount returns the first non-zero amount; zero counts as missing.
func firstAmount(candidates ...*spapi.Money) *float64 {
	for _, m := range candidates {
		if m != nil && m.Amount != 0 {
			v := m.Amount
			return &v
		}
	}
	return nil
}

func firstCurrency(candidates ...*spapi.Money) string {
	for _, m := range candidates {
		if m != nil && m.CurrencyCode != "" {
			return m.CurrencyCode
		}
	}
	return defaultCurrency
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
