package pricing

// WholesaleRule maps an inclusive quantity range to a discounted unit price.
// Rule tables are assumed caller-validated to be non-overlapping.
type WholesaleRule struct {
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Price float64 `json:"price"`
}

// ResolveTier returns the unit price of the first rule whose range contains
// qty. It reports false when no rule matches or the table is empty, in which
// case the caller falls back to the product base price.
func ResolveTier(qty int, rules []WholesaleRule) (float64, bool) {
	for _, r := range rules {
		if qty >= r.Min && qty <= r.Max {
			return r.Price, true
		}
	}
	return 0, false
}
