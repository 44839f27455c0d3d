package pricing

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSpecMismatch is returned when the payload type does not match the product's pricing mode.
	ErrSpecMismatch = errors.New("pricing spec does not match product mode")
	// ErrInvalidQty is returned when the quantity is not a positive integer.
	ErrInvalidQty = errors.New("quantity must be a positive integer")
	// ErrInvalidDimensions is returned when a required dimension is missing or non-positive.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrUnknownMatrixKey is returned when a size key cannot be resolved against the price table.
	ErrUnknownMatrixKey = errors.New("size not present in price table")
	// ErrUnknownVariant is returned when a referenced product variant does not exist.
	ErrUnknownVariant = errors.New("unknown product variant")
	// ErrUnknownPrintMode is returned when a referenced print mode does not exist.
	ErrUnknownPrintMode = errors.New("unknown print mode")
	// ErrUnpriceable is returned when the calculation cannot produce a finite positive subtotal.
	ErrUnpriceable = errors.New("calculation did not produce a positive price")
)

// Policy selects the error behaviour of the calculation core.
type Policy int

const (
	// Preview degrades unresolvable calculations to a zero quote so live
	// price display never fails while the operator is mid-configuration.
	Preview Policy = iota
	// Strict surfaces unresolvable calculations as errors. The cart item
	// builder always computes under Strict.
	Strict
)

// Variant is a selectable product variation carrying its own price. For
// rolled goods the price is per meter; for booklet paper it is per sheet.
type Variant struct {
	Label     string             `json:"label"`
	Price     float64            `json:"price"`
	Width     float64            `json:"width,omitempty"`
	PriceList map[string]float64 `json:"priceList,omitempty"`
}

// PrintMode is a booklet print option (e.g. black-and-white vs full colour)
// priced per sheet.
type PrintMode struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// MatrixTable holds size-keyed prices. Flat is the legacy single-level shape;
// ByMaterial keys each size by material. At most one of the two is populated.
// The JSON form is the bare map in either shape; see json.go.
type MatrixTable struct {
	Flat       map[string]float64
	ByMaterial map[string]map[string]float64
}

// Empty reports whether the table carries no prices at all.
func (t MatrixTable) Empty() bool {
	return len(t.Flat) == 0 && len(t.ByMaterial) == 0
}

// Product is the pricing view of a catalog product: only the fields the
// calculation core reads. Callers supply an internally consistent snapshot
// for the duration of one computation.
type Product struct {
	ID             string
	Name           string
	BasePrice      float64
	MinOrder       int
	Variants       []Variant
	Matrix         MatrixTable
	WholesaleRules []WholesaleRule
	PrintModes     []PrintMode
}

// Variant returns the variant with the given label.
func (p Product) Variant(label string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Label == label {
			return v, true
		}
	}
	return Variant{}, false
}

// PrintMode returns the print mode with the given id.
func (p Product) PrintMode(id string) (PrintMode, bool) {
	for _, pm := range p.PrintModes {
		if pm.ID == id {
			return pm, true
		}
	}
	return PrintMode{}, false
}

// Spec is the mode-specific dimension payload of a price calculation. The
// set of implementations is closed; the engine dispatches over it
// exhaustively.
type Spec interface {
	Mode() Mode
}

// AreaSpec prices by billable area: ceil(length × width), never below one
// square meter when both dimensions are positive.
type AreaSpec struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// LinearSpec prices by length. When VariantLabel names a rolled-goods
// variant, that variant's per-meter price replaces the product base price and
// width plays no part in the calculation.
type LinearSpec struct {
	Length       float64 `json:"length"`
	VariantLabel string  `json:"variantLabel,omitempty"`
}

// MatrixSpec prices by size key, optionally refined by material.
type MatrixSpec struct {
	SizeKey  string `json:"sizeKey"`
	Material string `json:"material,omitempty"`
}

// BookletSpec prices a bound book: (paper + print mode) per sheet times
// sheets per book. VariantLabel selects the paper stock.
type BookletSpec struct {
	SheetsPerBook int    `json:"sheetsPerBook"`
	PrintModeID   string `json:"printModeId"`
	VariantLabel  string `json:"variantLabel"`
}

// UnitSpec prices a flat per-piece product.
type UnitSpec struct{}

// TieredSpec prices per piece with quantity-tiered wholesale rules.
type TieredSpec struct{}

// SheetSpec prices a cut sheet product: base price plus a cutting charge per
// piece.
type SheetSpec struct {
	CuttingCost float64 `json:"cuttingCost"`
}

// ManualSpec carries an operator-entered unit price for free-text items.
type ManualSpec struct {
	Price float64 `json:"price"`
}

// AdvancedSpec carries a price computed by an upstream form. The engine
// validates it but never recomputes; Meta preserves the upstream financial
// breakdown for reporting.
type AdvancedSpec struct {
	UnitPrice float64        `json:"unitPrice"`
	Total     float64        `json:"total"`
	Meta      map[string]any `json:"meta,omitempty"`
}

func (AreaSpec) Mode() Mode     { return ModeArea }
func (LinearSpec) Mode() Mode   { return ModeLinear }
func (MatrixSpec) Mode() Mode   { return ModeMatrix }
func (BookletSpec) Mode() Mode  { return ModeBooklet }
func (UnitSpec) Mode() Mode     { return ModeUnit }
func (TieredSpec) Mode() Mode   { return ModeTiered }
func (SheetSpec) Mode() Mode    { return ModeUnitSheet }
func (ManualSpec) Mode() Mode   { return ModeManual }
func (AdvancedSpec) Mode() Mode { return ModeAdvanced }

// Breakdown exposes the intermediate figures of a calculation for receipts
// and reporting.
type Breakdown struct {
	RawArea          float64 `json:"rawArea,omitempty"`
	BillableArea     float64 `json:"billableArea,omitempty"`
	MeterPrice       float64 `json:"meterPrice,omitempty"`
	MatrixPrice      float64 `json:"matrixPrice,omitempty"`
	ContentPerBook   float64 `json:"contentPerBook,omitempty"`
	TierPrice        float64 `json:"tierPrice,omitempty"`
	TierApplied      bool    `json:"tierApplied,omitempty"`
	CuttingCost      float64 `json:"cuttingCost,omitempty"`
	BasePrice        float64 `json:"basePrice,omitempty"`
	FinishingPerUnit float64 `json:"finishingPerUnit,omitempty"`
	FinishingPerJob  float64 `json:"finishingPerJob,omitempty"`
}

// Quote is the result of one price calculation.
type Quote struct {
	Subtotal  float64   `json:"subtotal"`
	UnitPrice float64   `json:"unitPrice"`
	Breakdown Breakdown `json:"breakdown"`
}

// Compute prices one line. It is a pure function: the same inputs always
// yield the same quote, so it is safe to call on every keystroke for live
// preview.
//
// Under Preview an unresolvable calculation returns a zero Quote and a nil
// error. Under Strict the same condition returns the typed error and the
// caller must abort.
func Compute(p Product, spec Spec, qty int, finishings []Finishing, policy Policy) (Quote, error) {
	q, err := compute(p, spec, qty, finishings)
	if err != nil {
		if policy == Preview {
			return Quote{}, nil
		}
		return Quote{}, err
	}
	return q, nil
}

func compute(p Product, spec Spec, qty int, finishings []Finishing) (Quote, error) {
	if spec == nil {
		return Quote{}, ErrSpecMismatch
	}
	if qty <= 0 {
		return Quote{}, ErrInvalidQty
	}

	length := 0.0
	if ls, ok := spec.(LinearSpec); ok {
		length = ls.Length
	}
	finPerUnit, finPerJob := ComposeFinishing(spec.Mode(), finishings, length)

	var q Quote
	q.Breakdown.FinishingPerUnit = finPerUnit
	q.Breakdown.FinishingPerJob = finPerJob

	switch s := spec.(type) {
	case AreaSpec:
		if s.Length <= 0 || s.Width <= 0 {
			return Quote{}, fmt.Errorf("area needs positive length and width: %w", ErrInvalidDimensions)
		}
		raw := s.Length * s.Width
		billable := math.Ceil(raw)
		if billable < 1 {
			billable = 1
		}
		q.Breakdown.RawArea = raw
		q.Breakdown.BillableArea = billable
		q.UnitPrice = billable * p.BasePrice
		q.Subtotal = q.UnitPrice * float64(qty)

	case LinearSpec:
		if s.Length <= 0 {
			return Quote{}, fmt.Errorf("linear needs positive length: %w", ErrInvalidDimensions)
		}
		meterPrice := p.BasePrice
		if s.VariantLabel != "" {
			v, ok := p.Variant(s.VariantLabel)
			if !ok {
				return Quote{}, fmt.Errorf("variant %q: %w", s.VariantLabel, ErrUnknownVariant)
			}
			meterPrice = v.Price
		}
		q.Breakdown.MeterPrice = meterPrice
		q.UnitPrice = s.Length*meterPrice + finPerUnit
		q.Subtotal = q.UnitPrice*float64(qty) + finPerJob

	case MatrixSpec:
		price, err := resolveMatrix(p.Matrix, s.SizeKey, s.Material)
		if err != nil {
			return Quote{}, err
		}
		q.Breakdown.MatrixPrice = price
		q.UnitPrice = price + finPerUnit
		q.Subtotal = q.UnitPrice*float64(qty) + finPerJob

	case BookletSpec:
		if s.SheetsPerBook <= 0 {
			return Quote{}, fmt.Errorf("booklet needs positive sheet count: %w", ErrInvalidDimensions)
		}
		paper, ok := p.Variant(s.VariantLabel)
		if !ok {
			return Quote{}, fmt.Errorf("paper %q: %w", s.VariantLabel, ErrUnknownVariant)
		}
		pm, ok := p.PrintMode(s.PrintModeID)
		if !ok {
			return Quote{}, fmt.Errorf("print mode %q: %w", s.PrintModeID, ErrUnknownPrintMode)
		}
		content := (paper.Price + pm.Price) * float64(s.SheetsPerBook)
		q.Breakdown.ContentPerBook = content
		q.UnitPrice = content + finPerUnit
		q.Subtotal = q.UnitPrice * float64(qty)

	case UnitSpec:
		q.Breakdown.BasePrice = p.BasePrice
		q.UnitPrice = p.BasePrice + finPerUnit
		q.Subtotal = q.UnitPrice*float64(qty) + finPerJob

	case TieredSpec:
		unit := p.BasePrice
		if price, ok := ResolveTier(qty, p.WholesaleRules); ok {
			unit = price
			q.Breakdown.TierPrice = price
			q.Breakdown.TierApplied = true
		}
		q.Breakdown.BasePrice = p.BasePrice
		q.UnitPrice = unit + finPerUnit
		q.Subtotal = q.UnitPrice*float64(qty) + finPerJob

	case SheetSpec:
		if s.CuttingCost < 0 {
			return Quote{}, fmt.Errorf("cutting cost must not be negative: %w", ErrInvalidDimensions)
		}
		q.Breakdown.BasePrice = p.BasePrice
		q.Breakdown.CuttingCost = s.CuttingCost
		q.UnitPrice = p.BasePrice + s.CuttingCost + finPerUnit
		q.Subtotal = q.UnitPrice*float64(qty) + finPerJob

	case ManualSpec:
		if s.Price <= 0 {
			return Quote{}, fmt.Errorf("manual price must be positive: %w", ErrUnpriceable)
		}
		q.UnitPrice = s.Price + finPerUnit
		q.Subtotal = q.UnitPrice*float64(qty) + finPerJob

	case AdvancedSpec:
		// Pre-computed upstream; validate only, never recompute.
		q.UnitPrice = s.UnitPrice
		q.Subtotal = s.Total

	default:
		return Quote{}, fmt.Errorf("unhandled spec %T: %w", spec, ErrSpecMismatch)
	}

	if !finitePositive(q.Subtotal) || !finitePositive(q.UnitPrice) {
		return Quote{}, ErrUnpriceable
	}
	return q, nil
}

func resolveMatrix(t MatrixTable, sizeKey, material string) (float64, error) {
	if sizeKey == "" {
		return 0, fmt.Errorf("size key required: %w", ErrInvalidDimensions)
	}
	if len(t.Flat) > 0 {
		price, ok := t.Flat[sizeKey]
		if !ok {
			return 0, fmt.Errorf("size %q: %w", sizeKey, ErrUnknownMatrixKey)
		}
		return price, nil
	}
	row, ok := t.ByMaterial[sizeKey]
	if !ok {
		return 0, fmt.Errorf("size %q: %w", sizeKey, ErrUnknownMatrixKey)
	}
	price, ok := row[material]
	if !ok {
		return 0, fmt.Errorf("size %q material %q: %w", sizeKey, material, ErrUnknownMatrixKey)
	}
	return price, nil
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
