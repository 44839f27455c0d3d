package cart

import (
	"errors"
	"strings"
	"testing"

	"github.com/noah-isme/backend-percetakan/internal/common"
	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

func banner() pricing.Product {
	return pricing.Product{ID: "p-banner", Name: "Spanduk Flexi 280gr", BasePrice: 50000}
}

func buildCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	return appErr.Code
}

func TestBuildAreaItem(t *testing.T) {
	b := Builder{NewID: func() string { return "item-1" }}
	item, err := b.Build(RawInput{
		Product: banner(),
		Mode:    pricing.ModeArea,
		Spec:    pricing.AreaSpec{Length: 1.5, Width: 1.5},
		Qty:     2,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if item.ID != "item-1" {
		t.Fatalf("unexpected id %q", item.ID)
	}
	if item.TotalPrice != 300000 {
		t.Fatalf("expected subtotal 300000, got %v", item.TotalPrice)
	}
	if item.UnitPrice != 150000 {
		t.Fatalf("expected unit price 150000, got %v", item.UnitPrice)
	}
	if !strings.Contains(item.Description, "Spanduk Flexi 280gr") {
		t.Fatalf("description must contain product name, got %q", item.Description)
	}
	if !strings.Contains(item.Description, "1.5x1.5m") {
		t.Fatalf("description must render dimensions, got %q", item.Description)
	}
	if item.Dimensions.Mode != pricing.ModeArea {
		t.Fatalf("dimensions must carry the mode, got %s", item.Dimensions.Mode)
	}
}

func TestBuildRejectsZeroQty(t *testing.T) {
	b := Builder{}
	_, err := b.Build(RawInput{
		Product: banner(),
		Mode:    pricing.ModeArea,
		Spec:    pricing.AreaSpec{Length: 1, Width: 1},
		Qty:     0,
	})
	if err == nil {
		t.Fatal("expected rejection")
	}
	if code := buildCode(t, err); code != CodeInvalidQty {
		t.Fatalf("expected %s, got %s", CodeInvalidQty, code)
	}
}

func TestBuildRejectsMissingProduct(t *testing.T) {
	b := Builder{}
	_, err := b.Build(RawInput{
		Mode: pricing.ModeUnit,
		Spec: pricing.UnitSpec{},
		Qty:  1,
	})
	if code := buildCode(t, err); code != CodeInvalidProduct {
		t.Fatalf("expected %s, got %s", CodeInvalidProduct, code)
	}
}

func TestBuildRejectsBelowMinOrder(t *testing.T) {
	p := banner()
	p.MinOrder = 10
	b := Builder{}
	_, err := b.Build(RawInput{
		Product: p,
		Mode:    pricing.ModeArea,
		Spec:    pricing.AreaSpec{Length: 1, Width: 1},
		Qty:     5,
	})
	if code := buildCode(t, err); code != CodeBelowMinOrder {
		t.Fatalf("expected %s, got %s", CodeBelowMinOrder, code)
	}
}

func TestBuildRejectsSpecModeMismatch(t *testing.T) {
	b := Builder{}
	_, err := b.Build(RawInput{
		Product: banner(),
		Mode:    pricing.ModeArea,
		Spec:    pricing.UnitSpec{},
		Qty:     1,
	})
	if code := buildCode(t, err); code != CodeInvalidDimensions {
		t.Fatalf("expected %s, got %s", CodeInvalidDimensions, code)
	}
}

func TestBuildRejectsUnknownMatrixKey(t *testing.T) {
	p := pricing.Product{
		ID:        "p-card",
		Name:      "Kartu Nama",
		BasePrice: 0,
		Matrix:    pricing.MatrixTable{Flat: map[string]float64{"A3": 40000}},
	}
	b := Builder{}
	_, err := b.Build(RawInput{
		Product: p,
		Mode:    pricing.ModeMatrix,
		Spec:    pricing.MatrixSpec{SizeKey: "A2"},
		Qty:     1,
	})
	if code := buildCode(t, err); code != CodeInvalidDimensions {
		t.Fatalf("expected %s, got %s", CodeInvalidDimensions, code)
	}
}

func TestBuildRejectsNonPositiveManualPrice(t *testing.T) {
	b := Builder{}
	_, err := b.Build(RawInput{
		Product: banner(),
		Mode:    pricing.ModeManual,
		Spec:    pricing.ManualSpec{Price: 0},
		Qty:     1,
	})
	if code := buildCode(t, err); code != CodeCalcFailed {
		t.Fatalf("expected %s, got %s", CodeCalcFailed, code)
	}
}

func TestBuildIsDeterministicExceptID(t *testing.T) {
	in := RawInput{
		Product: banner(),
		Mode:    pricing.ModeArea,
		Spec:    pricing.AreaSpec{Length: 2, Width: 1},
		Qty:     3,
		Finishings: []pricing.Finishing{
			{ID: "f-eyelet", Name: "Mata Ayam", Price: 5000, PriceMode: pricing.PerUnit},
		},
	}
	b := Builder{}
	first, err := b.Build(in)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := b.Build(in)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("each build must mint a fresh item id")
	}
	first.ID, second.ID = "", ""
	if first.TotalPrice != second.TotalPrice || first.UnitPrice != second.UnitPrice || first.Description != second.Description {
		t.Fatalf("builds differ beyond id: %+v vs %+v", first, second)
	}
}

func TestNormalizeLegacyMatrix(t *testing.T) {
	in, err := NormalizeLegacy(LegacyInput{
		ProductID:    "p-sticker",
		ProductName:  "Stiker Vinyl",
		Mode:         "MATRIX",
		Qty:          3,
		SizeKey:      "A2",
		MatrixPrices: map[string]float64{"A2": 40000},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b := Builder{}
	item, err := b.Build(in)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if item.TotalPrice != 120000 {
		t.Fatalf("expected 120000, got %v", item.TotalPrice)
	}
}

func TestNormalizeLegacyRejectsUnsupportedMode(t *testing.T) {
	_, err := NormalizeLegacy(LegacyInput{
		ProductID:   "p-booklet",
		ProductName: "Buku Yasin",
		Mode:        "BOOKLET",
		Qty:         1,
	})
	if err == nil {
		t.Fatal("legacy shape cannot express a booklet configuration")
	}
}
