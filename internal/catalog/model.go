package catalog

import (
	"fmt"

	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

// FinishingOption is one selectable finishing choice inside a group.
type FinishingOption struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// FinishingGroup describes one finishing control rendered by the POS form.
// Type is one of radio, checkbox, or textInput.
type FinishingGroup struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Type      string            `json:"type"`
	PriceMode pricing.PriceMode `json:"priceMode"`
	Options   []FinishingOption `json:"options"`
	Required  bool              `json:"required"`
}

// Product is a configurable catalog entry. The pricing-relevant subset is
// projected through Pricing(); the rest drives form rendering.
type Product struct {
	ID              string                  `json:"id"`
	Name            string                  `json:"name"`
	BasePrice       float64                 `json:"basePrice"`
	Mode            pricing.Mode            `json:"pricingMode"`
	Variants        []pricing.Variant       `json:"variants,omitempty"`
	Matrix          pricing.MatrixTable     `json:"matrixPrices,omitempty"`
	WholesaleRules  []pricing.WholesaleRule `json:"wholesaleRules,omitempty"`
	FinishingGroups []FinishingGroup        `json:"finishingGroups,omitempty"`
	PrintModes      []pricing.PrintMode     `json:"printModes,omitempty"`
	MinOrder        int                     `json:"minOrder,omitempty"`
}

// Pricing projects the product onto the calculation engine's input shape.
func (p Product) Pricing() pricing.Product {
	return pricing.Product{
		ID:             p.ID,
		Name:           p.Name,
		BasePrice:      p.BasePrice,
		MinOrder:       p.MinOrder,
		Variants:       p.Variants,
		Matrix:         p.Matrix,
		WholesaleRules: p.WholesaleRules,
		PrintModes:     p.PrintModes,
	}
}

// ResolveFinishings maps selected finishing option ids onto resolved
// selections carrying a price snapshot and the group's accrual rule.
func (p Product) ResolveFinishings(optionIDs []string) ([]pricing.Finishing, error) {
	if len(optionIDs) == 0 {
		return nil, nil
	}
	resolved := make([]pricing.Finishing, 0, len(optionIDs))
	for _, id := range optionIDs {
		sel, ok := p.findOption(id)
		if !ok {
			return nil, fmt.Errorf("finishing option %q not offered by product %s", id, p.ID)
		}
		resolved = append(resolved, sel)
	}
	return resolved, nil
}

func (p Product) findOption(id string) (pricing.Finishing, bool) {
	for _, group := range p.FinishingGroups {
		for _, opt := range group.Options {
			if opt.ID == id {
				return pricing.Finishing{
					ID:        opt.ID,
					Name:      opt.Label,
					Price:     opt.Price,
					PriceMode: group.PriceMode,
				}, true
			}
		}
	}
	return pricing.Finishing{}, false
}
