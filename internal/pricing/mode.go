package pricing

import (
	"fmt"
	"strings"
)

// Mode identifies how a product's price is computed.
type Mode string

// The closed set of pricing modes. Every product belongs to exactly one.
const (
	ModeArea      Mode = "AREA"
	ModeLinear    Mode = "LINEAR"
	ModeMatrix    Mode = "MATRIX"
	ModeBooklet   Mode = "BOOKLET"
	ModeUnit      Mode = "UNIT"
	ModeTiered    Mode = "TIERED"
	ModeUnitSheet Mode = "UNIT_SHEET"
	ModeManual    Mode = "MANUAL"
	ModeAdvanced  Mode = "ADVANCED"
)

var allModes = []Mode{
	ModeArea,
	ModeLinear,
	ModeMatrix,
	ModeBooklet,
	ModeUnit,
	ModeTiered,
	ModeUnitSheet,
	ModeManual,
	ModeAdvanced,
}

// ParseMode converts a string tag into a Mode. Matching is case-insensitive.
func ParseMode(value string) (Mode, error) {
	needle := strings.ToUpper(strings.TrimSpace(value))
	for _, m := range allModes {
		if string(m) == needle {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown pricing mode %q", value)
}

// Valid reports whether the mode is a member of the closed set.
func (m Mode) Valid() bool {
	for _, known := range allModes {
		if m == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (m Mode) String() string { return string(m) }
