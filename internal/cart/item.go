package cart

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

// Dimensions pairs a pricing mode with its typed payload so cart items
// survive a JSON round trip through storage without losing the payload type.
type Dimensions struct {
	Mode pricing.Mode
	Spec pricing.Spec
}

type dimensionsDoc struct {
	Mode pricing.Mode    `json:"mode"`
	Spec json.RawMessage `json:"spec"`
}

// MarshalJSON implements json.Marshaler.
func (d Dimensions) MarshalJSON() ([]byte, error) {
	spec, err := json.Marshal(d.Spec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dimensionsDoc{Mode: d.Mode, Spec: spec})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching the payload type on
// the stored mode tag.
func (d *Dimensions) UnmarshalJSON(data []byte) error {
	var doc dimensionsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	// An empty mode tag is the marshaled zero value, not a decodable payload.
	if doc.Mode == "" {
		*d = Dimensions{}
		return nil
	}
	spec, err := pricing.SpecFromJSON(doc.Mode, doc.Spec)
	if err != nil {
		return err
	}
	d.Mode = doc.Mode
	d.Spec = spec
	return nil
}

// CartItem is a fully priced, validated order line. Instances are created
// exclusively by Builder.Build; no other code may construct one or mutate its
// priced fields.
type CartItem struct {
	ID          string              `json:"id"`
	ProductID   string              `json:"productId"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Mode        pricing.Mode        `json:"mode"`
	Qty         int                 `json:"qty"`
	Dimensions  Dimensions          `json:"dimensions"`
	Finishings  []pricing.Finishing `json:"finishings"`
	UnitPrice   float64             `json:"unitPrice"`
	TotalPrice  float64             `json:"totalPrice"`
	Notes       string              `json:"notes,omitempty"`
	Meta        map[string]any      `json:"meta,omitempty"`
	Breakdown   pricing.Breakdown   `json:"breakdown"`
}

// Cart is the set of line items of one in-progress POS transaction. It is
// mutable only until the order is committed.
type Cart struct {
	ID        string     `json:"id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Total sums the line totals.
func (c Cart) Total() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.TotalPrice
	}
	return total
}

// Item returns the item with the given id.
func (c Cart) Item(id string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ID == id {
			return it, true
		}
	}
	return CartItem{}, false
}

func (c Cart) String() string {
	return fmt.Sprintf("cart %s (%d items)", c.ID, len(c.Items))
}
