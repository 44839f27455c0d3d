// Package channel normalizes order intake from the external sales channel
// into the same validated shape the POS cart builder consumes. The channel
// speaks a looser dialect: snake_case catalog descriptors, stringly-typed
// numbers, and finishing selections that may be bare ids or rich objects.
package channel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/backend-percetakan/internal/cart"
	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

// Channel form types.
const (
	FormCalculator = "CALCULATOR"
	FormUnit       = "UNIT"
	FormMatrix     = "MATRIX"
)

// DisplayConfig carries the channel-side form toggles that refine the mode.
type DisplayConfig struct {
	FixedWidth     bool `json:"fixed_width"`
	ShowPriceTiers bool `json:"show_price_tiers"`
}

// FieldConstraint declares a numeric range for one input field, with the
// unit used in violation messages.
type FieldConstraint struct {
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Unit string   `json:"unit,omitempty"`
}

// FinishingOptionDescriptor is one channel-side finishing choice.
type FinishingOptionDescriptor struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// FinishingGroupDescriptor is the channel-side finishing group shape.
type FinishingGroupDescriptor struct {
	ID        string                      `json:"id"`
	Title     string                      `json:"title"`
	PriceMode string                      `json:"price_mode"`
	Options   []FinishingOptionDescriptor `json:"options"`
}

// Descriptor is the external catalog entry describing one sellable form.
type Descriptor struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	FormType        string                     `json:"form_type"`
	DisplayConfig   DisplayConfig              `json:"display_config"`
	BasePrice       float64                    `json:"base_price"`
	MinOrder        int                        `json:"min_order,omitempty"`
	Variants        []pricing.Variant          `json:"variants,omitempty"`
	MatrixPrices    pricing.MatrixTable        `json:"matrix_prices,omitempty"`
	WholesaleRules  []pricing.WholesaleRule    `json:"wholesale_rules,omitempty"`
	FinishingGroups []FinishingGroupDescriptor `json:"finishing_groups,omitempty"`
	PrintModes      []pricing.PrintMode        `json:"print_modes,omitempty"`
	Constraints     map[string]FieldConstraint `json:"constraints,omitempty"`
}

// FieldError is a typed intake rejection naming the offending field, its
// value, and the violated constraint, unit-aware.
type FieldError struct {
	Field      string
	Value      any
	Constraint string
	Unit       string
}

// Error renders e.g. "length below minimum: 0.5 m".
func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Field, e.Constraint, e.Value)
	if e.Unit != "" {
		msg += " " + e.Unit
	}
	return msg
}

// DeriveMode maps a channel form type and its display config onto a pricing
// mode. Unknown form types fall back to flat per-unit pricing.
func DeriveMode(formType string, dc DisplayConfig) pricing.Mode {
	switch strings.ToUpper(strings.TrimSpace(formType)) {
	case FormCalculator:
		if dc.FixedWidth {
			return pricing.ModeLinear
		}
		return pricing.ModeArea
	case FormUnit:
		if dc.ShowPriceTiers {
			return pricing.ModeTiered
		}
		return pricing.ModeUnit
	case FormMatrix:
		return pricing.ModeMatrix
	default:
		return pricing.ModeUnit
	}
}

// Product projects the descriptor onto the calculation engine's product
// snapshot.
func (d Descriptor) Product() pricing.Product {
	return pricing.Product{
		ID:             d.ID,
		Name:           d.Name,
		BasePrice:      d.BasePrice,
		MinOrder:       d.MinOrder,
		Variants:       d.Variants,
		Matrix:         d.MatrixPrices,
		WholesaleRules: d.WholesaleRules,
		PrintModes:     d.PrintModes,
	}
}

// NormalizeSpecs extracts and type-coerces the mode-specific fields from the
// raw channel payload, applies the descriptor's declared range constraints,
// and produces the canonical builder input. It depends on the pricing mode
// vocabulary only; the builder performs its own validation afterwards.
func NormalizeSpecs(mode pricing.Mode, raw map[string]any, d Descriptor) (cart.RawInput, error) {
	qtyField := "qty"
	if mode == pricing.ModeBooklet {
		if _, ok := raw["qty_books"]; ok {
			qtyField = "qty_books"
		}
	}
	qty, err := intField(raw, qtyField, d)
	if err != nil {
		return cart.RawInput{}, err
	}

	var spec pricing.Spec
	switch mode {
	case pricing.ModeArea:
		length, err := floatField(raw, "length", d)
		if err != nil {
			return cart.RawInput{}, err
		}
		width, err := floatField(raw, "width", d)
		if err != nil {
			return cart.RawInput{}, err
		}
		spec = pricing.AreaSpec{Length: length, Width: width}

	case pricing.ModeLinear:
		length, err := floatField(raw, "length", d)
		if err != nil {
			return cart.RawInput{}, err
		}
		spec = pricing.LinearSpec{Length: length, VariantLabel: stringField(raw, "variant")}

	case pricing.ModeMatrix:
		size := stringField(raw, "size")
		if size == "" {
			return cart.RawInput{}, &FieldError{Field: "size", Value: "", Constraint: "is required"}
		}
		spec = pricing.MatrixSpec{SizeKey: size, Material: stringField(raw, "material")}

	case pricing.ModeBooklet:
		sheets, err := intField(raw, "sheets", d)
		if err != nil {
			return cart.RawInput{}, err
		}
		spec = pricing.BookletSpec{
			SheetsPerBook: sheets,
			PrintModeID:   stringField(raw, "print_mode"),
			VariantLabel:  stringField(raw, "paper_type"),
		}

	case pricing.ModeUnit:
		spec = pricing.UnitSpec{}

	case pricing.ModeTiered:
		spec = pricing.TieredSpec{}

	case pricing.ModeUnitSheet:
		cutting, err := floatField(raw, "cutting_cost", d)
		if err != nil {
			return cart.RawInput{}, err
		}
		spec = pricing.SheetSpec{CuttingCost: cutting}

	case pricing.ModeManual:
		price, err := floatField(raw, "price", d)
		if err != nil {
			return cart.RawInput{}, err
		}
		spec = pricing.ManualSpec{Price: price}

	case pricing.ModeAdvanced:
		unit, err := floatField(raw, "unit_price", d)
		if err != nil {
			return cart.RawInput{}, err
		}
		total, err := floatField(raw, "total", d)
		if err != nil {
			return cart.RawInput{}, err
		}
		meta, _ := raw["meta"].(map[string]any)
		spec = pricing.AdvancedSpec{UnitPrice: unit, Total: total, Meta: meta}

	default:
		return cart.RawInput{}, &FieldError{Field: "form_type", Value: string(mode), Constraint: "is not a known pricing mode"}
	}

	finishings, err := LiftFinishings(raw["finishing"], d)
	if err != nil {
		return cart.RawInput{}, err
	}

	return cart.RawInput{
		Product:    d.Product(),
		Mode:       mode,
		Spec:       spec,
		Qty:        qty,
		Finishings: finishings,
		Notes:      stringField(raw, "notes"),
	}, nil
}

// LiftFinishings normalizes channel finishing selections to the canonical
// resolved shape. The channel may send bare option id strings or rich
// objects carrying their own price.
func LiftFinishings(raw any, d Descriptor) ([]pricing.Finishing, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &FieldError{Field: "finishing", Value: raw, Constraint: "must be a list"}
	}
	out := make([]pricing.Finishing, 0, len(list))
	for _, entry := range list {
		switch v := entry.(type) {
		case string:
			f, ok := d.findFinishing(v)
			if !ok {
				return nil, &FieldError{Field: "finishing", Value: v, Constraint: "is not offered"}
			}
			out = append(out, f)
		case map[string]any:
			f, err := liftFinishingObject(v, d)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		default:
			return nil, &FieldError{Field: "finishing", Value: entry, Constraint: "must be an id or an object"}
		}
	}
	return out, nil
}

func liftFinishingObject(v map[string]any, d Descriptor) (pricing.Finishing, error) {
	id, _ := v["id"].(string)
	if id == "" {
		return pricing.Finishing{}, &FieldError{Field: "finishing.id", Value: v["id"], Constraint: "is required"}
	}
	if known, ok := d.findFinishing(id); ok {
		// Known options keep the catalog price; the channel cannot discount.
		return known, nil
	}
	name, _ := v["name"].(string)
	if name == "" {
		name = id
	}
	price, err := coerceFloat(v["price"])
	if err != nil {
		return pricing.Finishing{}, &FieldError{Field: "finishing.price", Value: v["price"], Constraint: "must be a number"}
	}
	mode := pricing.PriceMode(strings.ToUpper(stringField(v, "price_mode")))
	if mode == "" {
		mode = pricing.PerUnit
	}
	switch mode {
	case pricing.PerUnit, pricing.PerJob, pricing.PerMeter:
	default:
		return pricing.Finishing{}, &FieldError{Field: "finishing.price_mode", Value: string(mode), Constraint: "is not a known accrual rule"}
	}
	return pricing.Finishing{ID: id, Name: name, Price: price, PriceMode: mode}, nil
}

func (d Descriptor) findFinishing(optionID string) (pricing.Finishing, bool) {
	for _, group := range d.FinishingGroups {
		for _, opt := range group.Options {
			if opt.ID == optionID {
				mode := pricing.PriceMode(strings.ToUpper(group.PriceMode))
				if mode == "" {
					mode = pricing.PerUnit
				}
				return pricing.Finishing{ID: opt.ID, Name: opt.Label, Price: opt.Price, PriceMode: mode}, true
			}
		}
	}
	return pricing.Finishing{}, false
}

func stringField(raw map[string]any, field string) string {
	v, ok := raw[field]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func floatField(raw map[string]any, field string, d Descriptor) (float64, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0, &FieldError{Field: field, Value: nil, Constraint: "is required", Unit: d.unit(field)}
	}
	value, err := coerceFloat(v)
	if err != nil {
		return 0, &FieldError{Field: field, Value: v, Constraint: "must be a number", Unit: d.unit(field)}
	}
	return value, d.checkRange(field, value)
}

func intField(raw map[string]any, field string, d Descriptor) (int, error) {
	value, err := floatField(raw, field, d)
	if err != nil {
		return 0, err
	}
	n := int(value)
	if float64(n) != value {
		return 0, &FieldError{Field: field, Value: value, Constraint: "must be a whole number", Unit: d.unit(field)}
	}
	return n, nil
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, err
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to number", v)
	}
}

func (d Descriptor) unit(field string) string {
	if c, ok := d.Constraints[field]; ok {
		return c.Unit
	}
	return ""
}

func (d Descriptor) checkRange(field string, value float64) error {
	c, ok := d.Constraints[field]
	if !ok {
		return nil
	}
	if c.Min != nil && value < *c.Min {
		return &FieldError{Field: field, Value: value, Constraint: "below minimum", Unit: c.Unit}
	}
	if c.Max != nil && value > *c.Max {
		return &FieldError{Field: field, Value: value, Constraint: "above maximum", Unit: c.Unit}
	}
	return nil
}
