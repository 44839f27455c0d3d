package pricing

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON emits the price table in its wire shape: a bare size-keyed map,
// flat or material-keyed depending on which side is populated.
func (t MatrixTable) MarshalJSON() ([]byte, error) {
	if len(t.ByMaterial) > 0 {
		return json.Marshal(t.ByMaterial)
	}
	if t.Flat == nil {
		return []byte("null"), nil
	}
	return json.Marshal(t.Flat)
}

// UnmarshalJSON accepts both matrix price shapes: the legacy flat map
// (size → price) and the variant-keyed map (size → material → price).
func (t *MatrixTable) UnmarshalJSON(data []byte) error {
	*t = MatrixTable{}
	if string(data) == "null" {
		return nil
	}
	var flat map[string]float64
	if err := json.Unmarshal(data, &flat); err == nil {
		t.Flat = flat
		return nil
	}
	var nested map[string]map[string]float64
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("matrix prices: %w", err)
	}
	t.ByMaterial = nested
	return nil
}

// SpecFromJSON decodes the dimension payload for the given mode. The switch
// is exhaustive over the closed mode set; an unknown mode is an error, never
// a fallthrough.
func SpecFromJSON(mode Mode, data []byte) (Spec, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}
	var (
		spec Spec
		err  error
	)
	switch mode {
	case ModeArea:
		var s AreaSpec
		err = json.Unmarshal(data, &s)
		spec = s
	case ModeLinear:
		var s LinearSpec
		err = json.Unmarshal(data, &s)
		spec = s
	case ModeMatrix:
		var s MatrixSpec
		err = json.Unmarshal(data, &s)
		spec = s
	case ModeBooklet:
		var s BookletSpec
		err = json.Unmarshal(data, &s)
		spec = s
	case ModeUnit:
		var s UnitSpec
		err = json.Unmarshal(data, &s)
		spec = s
	case ModeTiered:
		var s TieredSpec
		err = json.Unmarshal(data, &s)
		spec = s
	case ModeUnitSheet:
		var s SheetSpec
		err = json.Unmarshal(data, &s)
		spec = s
	case ModeManual:
		var s ManualSpec
		err = json.Unmarshal(data, &s)
		spec = s
	case ModeAdvanced:
		var s AdvancedSpec
		err = json.Unmarshal(data, &s)
		spec = s
	default:
		return nil, fmt.Errorf("unknown pricing mode %q", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s dimensions: %w", mode, err)
	}
	return spec, nil
}
