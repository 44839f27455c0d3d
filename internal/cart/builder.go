package cart

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-percetakan/internal/common"
	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

// Rejection codes raised by the builder. Handlers surface code and message
// verbatim; the UI never coerces a failed calculation into a default price.
const (
	CodeInvalidProduct     = "INVALID_PRODUCT"
	CodeInvalidQty         = "INVALID_QTY"
	CodeInvalidDimensions  = "INVALID_DIMENSIONS"
	CodeCalcFailed         = "CALC_FAILED"
	CodeInvalidTotal       = "INVALID_TOTAL"
	CodeInvalidDescription = "INVALID_DESCRIPTION"
	CodeBelowMinOrder      = "BELOW_MIN_ORDER"
)

// RawInput is the single normalized input shape of the builder. Both the POS
// request DTO and the external channel adapter produce this shape; the
// builder never learns where an item came from.
type RawInput struct {
	Product    pricing.Product
	Mode       pricing.Mode
	Spec       pricing.Spec
	Qty        int
	Finishings []pricing.Finishing
	Notes      string
}

// LegacyInput is the flat call shape kept for older terminals: product fields
// inlined next to the configuration instead of a nested snapshot.
type LegacyInput struct {
	ProductID    string              `json:"productId"`
	ProductName  string              `json:"productName"`
	BasePrice    float64             `json:"basePrice"`
	Mode         string              `json:"pricingMode"`
	Qty          int                 `json:"qty"`
	Length       float64             `json:"length,omitempty"`
	Width        float64             `json:"width,omitempty"`
	SizeKey      string              `json:"sizeKey,omitempty"`
	Material     string              `json:"material,omitempty"`
	MatrixPrices map[string]float64  `json:"matrixPrices,omitempty"`
	ManualPrice  float64             `json:"manualPrice,omitempty"`
	Finishings   []pricing.Finishing `json:"finishings,omitempty"`
	Notes        string              `json:"notes,omitempty"`
}

// NormalizeLegacy converts the flat legacy call shape into the canonical
// RawInput consumed by the builder.
func NormalizeLegacy(in LegacyInput) (RawInput, error) {
	mode, err := pricing.ParseMode(in.Mode)
	if err != nil {
		return RawInput{}, common.NewAppError(CodeInvalidProduct, err.Error(), http.StatusUnprocessableEntity, err)
	}
	var spec pricing.Spec
	switch mode {
	case pricing.ModeArea:
		spec = pricing.AreaSpec{Length: in.Length, Width: in.Width}
	case pricing.ModeLinear:
		spec = pricing.LinearSpec{Length: in.Length}
	case pricing.ModeMatrix:
		spec = pricing.MatrixSpec{SizeKey: in.SizeKey, Material: in.Material}
	case pricing.ModeManual:
		spec = pricing.ManualSpec{Price: in.ManualPrice}
	case pricing.ModeUnit:
		spec = pricing.UnitSpec{}
	case pricing.ModeTiered:
		spec = pricing.TieredSpec{}
	default:
		err := fmt.Errorf("legacy call shape does not support mode %s", mode)
		return RawInput{}, common.NewAppError(CodeInvalidDimensions, err.Error(), http.StatusUnprocessableEntity, err)
	}
	return RawInput{
		Product: pricing.Product{
			ID:        in.ProductID,
			Name:      in.ProductName,
			BasePrice: in.BasePrice,
			Matrix:    pricing.MatrixTable{Flat: in.MatrixPrices},
		},
		Mode:       mode,
		Spec:       spec,
		Qty:        in.Qty,
		Finishings: in.Finishings,
		Notes:      in.Notes,
	}, nil
}

// Builder is the validation gate in front of CartItem construction. The zero
// value is usable; NewID and Now exist for deterministic tests.
type Builder struct {
	NewID func() string
}

// Build validates the input, prices it under the strict policy, and returns
// the resulting cart item. Every validation step is fatal: no partially
// priced item is ever returned.
func (b Builder) Build(in RawInput) (CartItem, error) {
	if strings.TrimSpace(in.Product.ID) == "" || strings.TrimSpace(in.Product.Name) == "" {
		return CartItem{}, common.NewAppError(CodeInvalidProduct, "product id and name are required", http.StatusUnprocessableEntity, nil)
	}
	if in.Qty <= 0 {
		return CartItem{}, common.NewAppError(CodeInvalidQty, fmt.Sprintf("qty must be a positive integer, got %d", in.Qty), http.StatusUnprocessableEntity, nil)
	}
	if in.Product.MinOrder > 0 && in.Qty < in.Product.MinOrder {
		return CartItem{}, common.NewAppError(CodeBelowMinOrder, fmt.Sprintf("minimum order is %d, got %d", in.Product.MinOrder, in.Qty), http.StatusUnprocessableEntity, nil)
	}
	if !in.Mode.Valid() {
		return CartItem{}, common.NewAppError(CodeInvalidProduct, fmt.Sprintf("unknown pricing mode %q", in.Mode), http.StatusUnprocessableEntity, nil)
	}
	if in.Spec == nil || in.Spec.Mode() != in.Mode {
		return CartItem{}, common.NewAppError(CodeInvalidDimensions, fmt.Sprintf("dimensions do not match pricing mode %s", in.Mode), http.StatusUnprocessableEntity, nil)
	}

	quote, err := pricing.Compute(in.Product, in.Spec, in.Qty, in.Finishings, pricing.Strict)
	if err != nil {
		return CartItem{}, common.NewAppError(calcCode(err), err.Error(), http.StatusUnprocessableEntity, err)
	}
	if !finitePositive(quote.Subtotal) || !finitePositive(quote.UnitPrice) {
		return CartItem{}, common.NewAppError(CodeInvalidTotal, "computed price is not a finite positive amount", http.StatusUnprocessableEntity, nil)
	}

	description := Describe(in.Product, in.Mode, in.Spec, in.Finishings)
	if !strings.Contains(description, in.Product.Name) {
		return CartItem{}, common.NewAppError(CodeInvalidDescription, "description must contain the product name", http.StatusUnprocessableEntity, nil)
	}

	item := CartItem{
		ID:          b.newID(),
		ProductID:   in.Product.ID,
		Name:        in.Product.Name,
		Description: description,
		Mode:        in.Mode,
		Qty:         in.Qty,
		Dimensions:  Dimensions{Mode: in.Mode, Spec: in.Spec},
		Finishings:  in.Finishings,
		UnitPrice:   quote.UnitPrice,
		TotalPrice:  quote.Subtotal,
		Notes:       in.Notes,
		Breakdown:   quote.Breakdown,
	}
	if adv, ok := in.Spec.(pricing.AdvancedSpec); ok && len(adv.Meta) > 0 {
		item.Meta = adv.Meta
	}
	return item, nil
}

func (b Builder) newID() string {
	if b.NewID != nil {
		return b.NewID()
	}
	return uuid.NewString()
}

// Describe renders the human-readable line description printed on receipts
// and labels. It always starts with the product name.
func Describe(p pricing.Product, mode pricing.Mode, spec pricing.Spec, finishings []pricing.Finishing) string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	switch s := spec.(type) {
	case pricing.AreaSpec:
		fmt.Fprintf(&sb, " %gx%gm", s.Length, s.Width)
	case pricing.LinearSpec:
		fmt.Fprintf(&sb, " %gm", s.Length)
		if s.VariantLabel != "" {
			fmt.Fprintf(&sb, " %s", s.VariantLabel)
		}
	case pricing.MatrixSpec:
		fmt.Fprintf(&sb, " %s", s.SizeKey)
		if s.Material != "" {
			fmt.Fprintf(&sb, " %s", s.Material)
		}
	case pricing.BookletSpec:
		fmt.Fprintf(&sb, " %d lembar %s", s.SheetsPerBook, s.VariantLabel)
		if pm, ok := p.PrintMode(s.PrintModeID); ok {
			fmt.Fprintf(&sb, " %s", pm.Label)
		}
	case pricing.SheetSpec:
		if s.CuttingCost > 0 {
			sb.WriteString(" + potong")
		}
	}
	for i, f := range finishings {
		if i == 0 {
			sb.WriteString(" + ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
	}
	return sb.String()
}

func calcCode(err error) string {
	switch {
	case errors.Is(err, pricing.ErrInvalidQty):
		return CodeInvalidQty
	case errors.Is(err, pricing.ErrInvalidDimensions),
		errors.Is(err, pricing.ErrUnknownMatrixKey),
		errors.Is(err, pricing.ErrUnknownVariant),
		errors.Is(err, pricing.ErrUnknownPrintMode),
		errors.Is(err, pricing.ErrSpecMismatch):
		return CodeInvalidDimensions
	default:
		return CodeCalcFailed
	}
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
