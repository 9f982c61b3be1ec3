package validation

const (
	ActionHealth   = "health"
	ActionProducts = "getProducts"
	ActionPrices   = "getPrices"
)

// Actions lists every action the gateway answers, in the order reported to clients.
var Actions = []string{ActionHealth, ActionProducts, ActionPrices}

// GatewayQuery is the query string of a gateway request.
type GatewayQuery struct {
	// Action defaults to health when absent.
	Action string `form:"action" validate:"required,oneof=health getProducts getPrices"`
	// ASINs is comma-separated.
	ASINs string `form:"asins"`
}

// IDs returns the parsed asins parameter.
func (q GatewayQuery) IDs() []string {
	return ParseASINs(q.ASINs)
}

// NeedsASINs reports whether the action reads the asins parameter.
func (q GatewayQuery) NeedsASINs() bool {
	return q.Action == ActionProducts || q.Action == ActionPrices
}
