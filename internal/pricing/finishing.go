package pricing

// PriceMode describes how a finishing option's price accrues.
type PriceMode string

// Finishing accrual rules.
const (
	PerUnit  PriceMode = "PER_UNIT"
	PerJob   PriceMode = "PER_JOB"
	PerMeter PriceMode = "PER_METER"
)

// Finishing is a resolved finishing selection carried on a cart item. The
// price is a snapshot taken at selection time, never a catalog reference.
type Finishing struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	PriceMode PriceMode `json:"priceMode"`
}

// ComposeFinishing computes the finishing charge for a selection set.
//
// It returns the amount that accrues per priced unit (multiplied by qty at
// the line level) and the amount that accrues once per order line. PER_METER
// options scale with length. PER_JOB accrues per book under BOOKLET, where a
// job is one book, and once per line everywhere else.
//
// Finishing on area-priced products is free as a matter of shop policy, so
// AREA always composes to zero regardless of the selection.
func ComposeFinishing(mode Mode, selections []Finishing, length float64) (perUnit, perJob float64) {
	if mode == ModeArea {
		return 0, 0
	}
	for _, sel := range selections {
		switch sel.PriceMode {
		case PerMeter:
			perUnit += sel.Price * length
		case PerJob:
			if mode == ModeBooklet {
				perUnit += sel.Price
			} else {
				perJob += sel.Price
			}
		default:
			perUnit += sel.Price
		}
	}
	return perUnit, perJob
}
