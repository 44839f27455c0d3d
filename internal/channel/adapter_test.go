package channel

import (
	"errors"
	"testing"

	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

func TestDeriveMode(t *testing.T) {
	cases := []struct {
		formType string
		dc       DisplayConfig
		want     pricing.Mode
	}{
		{FormCalculator, DisplayConfig{}, pricing.ModeArea},
		{FormCalculator, DisplayConfig{FixedWidth: true}, pricing.ModeLinear},
		{FormUnit, DisplayConfig{}, pricing.ModeUnit},
		{FormUnit, DisplayConfig{ShowPriceTiers: true}, pricing.ModeTiered},
		{FormMatrix, DisplayConfig{}, pricing.ModeMatrix},
		{"matrix", DisplayConfig{}, pricing.ModeMatrix},
		{" calculator ", DisplayConfig{}, pricing.ModeArea},
		{"SOMETHING_NEW", DisplayConfig{}, pricing.ModeUnit},
		{"", DisplayConfig{}, pricing.ModeUnit},
	}
	for _, tc := range cases {
		if got := DeriveMode(tc.formType, tc.dc); got != tc.want {
			t.Fatalf("DeriveMode(%q, %+v) = %s, want %s", tc.formType, tc.dc, got, tc.want)
		}
	}
}

func bannerDescriptor() Descriptor {
	min := 1.0
	max := 10.0
	return Descriptor{
		ID:        "ch-banner",
		Name:      "Spanduk Flexi 280gr",
		FormType:  FormCalculator,
		BasePrice: 50000,
		Constraints: map[string]FieldConstraint{
			"length": {Min: &min, Max: &max, Unit: "m"},
			"width":  {Min: &min, Max: &max, Unit: "m"},
		},
		FinishingGroups: []FinishingGroupDescriptor{
			{
				ID:        "fg-edge",
				Title:     "Finishing Tepi",
				PriceMode: "PER_UNIT",
				Options: []FinishingOptionDescriptor{
					{ID: "f-eyelet", Label: "Mata Ayam", Price: 5000},
				},
			},
		},
	}
}

func TestNormalizeSpecsArea(t *testing.T) {
	d := bannerDescriptor()
	in, err := NormalizeSpecs(pricing.ModeArea, map[string]any{
		"qty":    2,
		"length": "1.5",
		"width":  1.5,
	}, d)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if in.Qty != 2 {
		t.Fatalf("expected qty 2, got %d", in.Qty)
	}
	spec, ok := in.Spec.(pricing.AreaSpec)
	if !ok {
		t.Fatalf("expected AreaSpec, got %T", in.Spec)
	}
	if spec.Length != 1.5 || spec.Width != 1.5 {
		t.Fatalf("string length must coerce, got %+v", spec)
	}
	if in.Product.ID != "ch-banner" || in.Product.BasePrice != 50000 {
		t.Fatalf("descriptor must project onto the product snapshot, got %+v", in.Product)
	}
}

func TestNormalizeSpecsConstraintViolation(t *testing.T) {
	d := bannerDescriptor()
	_, err := NormalizeSpecs(pricing.ModeArea, map[string]any{
		"qty":    1,
		"length": 0.5,
		"width":  1,
	}, d)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T: %v", err, err)
	}
	if fieldErr.Field != "length" {
		t.Fatalf("expected length violation, got %q", fieldErr.Field)
	}
	if got := fieldErr.Error(); got != "length below minimum: 0.5 m" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestNormalizeSpecsMissingField(t *testing.T) {
	d := bannerDescriptor()
	_, err := NormalizeSpecs(pricing.ModeArea, map[string]any{
		"qty":   1,
		"width": 1,
	}, d)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T: %v", err, err)
	}
	if fieldErr.Field != "length" || fieldErr.Constraint != "is required" {
		t.Fatalf("unexpected field error %+v", fieldErr)
	}
}

func TestNormalizeSpecsRejectsFractionalQty(t *testing.T) {
	d := bannerDescriptor()
	_, err := NormalizeSpecs(pricing.ModeArea, map[string]any{
		"qty":    1.5,
		"length": 2,
		"width":  1,
	}, d)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T: %v", err, err)
	}
	if fieldErr.Field != "qty" || fieldErr.Constraint != "must be a whole number" {
		t.Fatalf("unexpected field error %+v", fieldErr)
	}
}

func TestNormalizeSpecsBookletQtyBooks(t *testing.T) {
	d := Descriptor{
		ID:       "ch-yasin",
		Name:     "Buku Yasin",
		FormType: FormUnit,
		Variants: []pricing.Variant{{Label: "HVS 70gr", Price: 300}},
		PrintModes: []pricing.PrintMode{
			{ID: "bw", Label: "Hitam Putih", Price: 200},
		},
	}
	in, err := NormalizeSpecs(pricing.ModeBooklet, map[string]any{
		"qty_books":  10,
		"sheets":     50,
		"paper_type": "HVS 70gr",
		"print_mode": "bw",
	}, d)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if in.Qty != 10 {
		t.Fatalf("expected qty from qty_books, got %d", in.Qty)
	}
	spec, ok := in.Spec.(pricing.BookletSpec)
	if !ok {
		t.Fatalf("expected BookletSpec, got %T", in.Spec)
	}
	if spec.SheetsPerBook != 50 || spec.VariantLabel != "HVS 70gr" || spec.PrintModeID != "bw" {
		t.Fatalf("unexpected booklet spec %+v", spec)
	}
}

func TestNormalizeSpecsMatrixRequiresSize(t *testing.T) {
	d := Descriptor{ID: "ch-sticker", Name: "Stiker Vinyl", FormType: FormMatrix}
	_, err := NormalizeSpecs(pricing.ModeMatrix, map[string]any{"qty": 1}, d)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T: %v", err, err)
	}
	if fieldErr.Field != "size" {
		t.Fatalf("expected size violation, got %q", fieldErr.Field)
	}
}

func TestLiftFinishingsBareIDs(t *testing.T) {
	d := bannerDescriptor()
	fins, err := LiftFinishings([]any{"f-eyelet"}, d)
	if err != nil {
		t.Fatalf("lift: %v", err)
	}
	if len(fins) != 1 {
		t.Fatalf("expected one finishing, got %d", len(fins))
	}
	f := fins[0]
	if f.Name != "Mata Ayam" || f.Price != 5000 || f.PriceMode != pricing.PerUnit {
		t.Fatalf("unexpected finishing %+v", f)
	}
}

func TestLiftFinishingsUnknownBareID(t *testing.T) {
	d := bannerDescriptor()
	_, err := LiftFinishings([]any{"f-unknown"}, d)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T: %v", err, err)
	}
}

func TestLiftFinishingsObjectKeepsCatalogPrice(t *testing.T) {
	d := bannerDescriptor()
	fins, err := LiftFinishings([]any{
		map[string]any{"id": "f-eyelet", "price": 1.0},
	}, d)
	if err != nil {
		t.Fatalf("lift: %v", err)
	}
	if fins[0].Price != 5000 {
		t.Fatalf("channel must not discount known options, got %v", fins[0].Price)
	}
}

func TestLiftFinishingsRichObject(t *testing.T) {
	d := bannerDescriptor()
	fins, err := LiftFinishings([]any{
		map[string]any{"id": "f-lam", "name": "Laminasi Doff", "price": "7500", "price_mode": "per_meter"},
	}, d)
	if err != nil {
		t.Fatalf("lift: %v", err)
	}
	f := fins[0]
	if f.Name != "Laminasi Doff" || f.Price != 7500 || f.PriceMode != pricing.PerMeter {
		t.Fatalf("unexpected finishing %+v", f)
	}
}

func TestLiftFinishingsRejectsBadAccrualRule(t *testing.T) {
	d := bannerDescriptor()
	_, err := LiftFinishings([]any{
		map[string]any{"id": "f-x", "price": 100.0, "price_mode": "PER_GRAM"},
	}, d)
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected FieldError, got %T: %v", err, err)
	}
	if fieldErr.Field != "finishing.price_mode" {
		t.Fatalf("unexpected field %q", fieldErr.Field)
	}
}
