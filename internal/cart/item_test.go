package cart

import (
	"encoding/json"
	"testing"

	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

func TestDimensionsRoundTrip(t *testing.T) {
	in := Dimensions{Mode: pricing.ModeArea, Spec: pricing.AreaSpec{Length: 2, Width: 1}}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Dimensions
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Mode != pricing.ModeArea {
		t.Fatalf("mode = %q, want AREA", out.Mode)
	}
	spec, ok := out.Spec.(pricing.AreaSpec)
	if !ok {
		t.Fatalf("spec type = %T, want AreaSpec", out.Spec)
	}
	if spec.Length != 2 || spec.Width != 1 {
		t.Fatalf("spec = %+v, want {2 1}", spec)
	}
}

func TestDimensionsZeroValueRoundTrip(t *testing.T) {
	data, err := json.Marshal(Dimensions{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Dimensions
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Mode != "" || out.Spec != nil {
		t.Fatalf("zero value did not survive: %+v", out)
	}
}
