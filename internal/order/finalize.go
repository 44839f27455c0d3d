package order

import (
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/backend-percetakan/internal/cart"
	"github.com/noah-isme/backend-percetakan/internal/common"
)

// Commit rejection codes.
const (
	CodeMissingCustomer = "MISSING_CUSTOMER"
	CodeMissingOperator = "MISSING_OPERATOR"
	CodeEmptyCart       = "EMPTY_CART"
	CodeInvalidItem     = "INVALID_ITEM"
)

// PaymentStatus classifies how much of the order total has been paid.
type PaymentStatus string

// Payment states derived from paid vs total at commit time.
const (
	StatusPaid    PaymentStatus = "PAID"
	StatusPartial PaymentStatus = "PARTIAL"
	StatusUnpaid  PaymentStatus = "UNPAID"
)

// Customer is the customer snapshot frozen onto the order.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// Order is the immutable payload handed to the persistence collaborator
// after finalization. Nothing mutates it afterwards.
type Order struct {
	ID            string          `json:"id"`
	Items         []cart.CartItem `json:"items"`
	Total         float64         `json:"total"`
	Discount      float64         `json:"discount,omitempty"`
	Paid          float64         `json:"paid"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Customer      Customer        `json:"customer"`
	OperatorID    string          `json:"operatorId"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// FinalizeInput collects everything the validator needs to admit an order.
type FinalizeInput struct {
	Items         []cart.CartItem
	CustomerName  string
	CustomerPhone string
	OperatorID    string
	Paid          float64
	Discount      float64
	Notes         string
	Now           time.Time
	NewID         func() string
}

// Finalize re-validates the entire cart plus order metadata and assembles the
// committable order. A single invalid item aborts the whole commit; no
// partial order is ever produced.
func Finalize(in FinalizeInput) (Order, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return Order{}, common.NewAppError(CodeMissingCustomer, "customer name is required", http.StatusUnprocessableEntity, nil)
	}
	if strings.TrimSpace(in.OperatorID) == "" {
		return Order{}, common.NewAppError(CodeMissingOperator, "operator identity is required", http.StatusUnprocessableEntity, nil)
	}
	if len(in.Items) == 0 {
		return Order{}, common.NewAppError(CodeEmptyCart, "cart is empty", http.StatusUnprocessableEntity, nil)
	}

	var total float64
	for i, it := range in.Items {
		if err := validateItem(i, it); err != nil {
			return Order{}, err
		}
		total += it.TotalPrice
	}
	discount := in.Discount
	if discount < 0 {
		discount = 0
	}
	if discount > total {
		discount = total
	}
	total -= discount

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	id := ""
	if in.NewID != nil {
		id = in.NewID()
	}

	return Order{
		ID:            id,
		Items:         in.Items,
		Total:         total,
		Discount:      discount,
		Paid:          in.Paid,
		PaymentStatus: derivePaymentStatus(in.Paid, total),
		Customer:      Customer{Name: name, Phone: strings.TrimSpace(in.CustomerPhone)},
		OperatorID:    strings.TrimSpace(in.OperatorID),
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
	}, nil
}

func validateItem(index int, it cart.CartItem) error {
	reason := ""
	switch {
	case strings.TrimSpace(it.Name) == "":
		reason = "item name is empty"
	case strings.TrimSpace(it.Description) == "":
		reason = "item description is empty"
	case math.IsNaN(it.TotalPrice) || math.IsInf(it.TotalPrice, 0):
		reason = "item total is not finite"
	case it.TotalPrice <= 0:
		reason = "item total must be positive"
	}
	if reason == "" {
		return nil
	}
	err := common.NewAppError(CodeInvalidItem, fmt.Sprintf("item %d (%s): %s", index, it.Name, reason), http.StatusUnprocessableEntity, nil)
	err.Details = map[string]any{"index": index, "itemId": it.ID, "reason": reason}
	return err
}

func derivePaymentStatus(paid, total float64) PaymentStatus {
	switch {
	case paid >= total && total > 0:
		return StatusPaid
	case paid > 0:
		return StatusPartial
	default:
		return StatusUnpaid
	}
}
