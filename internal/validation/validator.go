package validation

import (
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a validator with the gateway's struct-level rules registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// product and price lookups need at least one asin
	v.RegisterStructValidation(gatewayQueryStructValidation, GatewayQuery{})

	return v
}

func gatewayQueryStructValidation(sl validatorv10.StructLevel) {
	q := sl.Current().Interface().(GatewayQuery)
	if q.NeedsASINs() && len(q.IDs()) == 0 {
		sl.ReportError(q.ASINs, "asins", "ASINs", "required_for_action", q.Action)
	}
}

// ParseASINs splits a comma-separated list, trimming whitespace and
// dropping empty entries. Order and duplicates are kept.
func ParseASINs(raw string) []string {
	ids := []string{}
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
