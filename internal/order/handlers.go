package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-percetakan/internal/cart"
	"github.com/noah-isme/backend-percetakan/internal/common"
)

// Handler exposes the order commit endpoint.
type Handler struct {
	Service  *Service
	Validate *validator.Validate
}

type commitRequest struct {
	CartID        string  `json:"cartId" validate:"required"`
	CustomerName  string  `json:"customerName" validate:"required"`
	CustomerPhone string  `json:"customerPhone,omitempty"`
	OperatorID    string  `json:"operatorId" validate:"required"`
	Paid          float64 `json:"paid" validate:"gte=0"`
	Discount      float64 `json:"discount,omitempty" validate:"gte=0"`
	Notes         string  `json:"notes,omitempty"`
}

// Commit handles POST /api/v1/orders.
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order service not configured", nil)
		return
	}
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", err.Error(), nil)
			return
		}
	}
	o, err := h.Service.Commit(r.Context(), CommitInput{
		CartID:        req.CartID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		OperatorID:    req.OperatorID,
		Paid:          req.Paid,
		Discount:      req.Discount,
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": o})
}

func rejectionCode(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return "INTERNAL"
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	if errors.Is(err, cart.ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "CART_NOT_FOUND", "cart not found", nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
