package cart

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-percetakan/internal/catalog"
	"github.com/noah-isme/backend-percetakan/internal/common"
	"github.com/noah-isme/backend-percetakan/internal/obs"
	"github.com/noah-isme/backend-percetakan/internal/pricing"
)

// Handler exposes cart and price-preview endpoints.
type Handler struct {
	Builder  Builder
	Carts    *Service
	Catalog  *catalog.Service
	Validate *validator.Validate
}

// itemRequest is the modern POS call shape: a product reference plus
// mode-specific dimensions. The legacy flat shape is accepted alongside and
// normalized before the builder ever sees it.
type itemRequest struct {
	ProductID   string          `json:"productId" validate:"required"`
	ProductName string          `json:"productName,omitempty"`
	Qty         int             `json:"qty" validate:"required,gt=0"`
	Dimensions  json.RawMessage `json:"dimensions,omitempty"`
	Finishings  []string        `json:"finishings,omitempty"`
	ManualPrice float64         `json:"manualPrice,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// Quote handles POST /api/v1/quote: live price preview while the operator
// configures a product. Unresolvable configurations yield a zero quote, not
// an error.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON", nil)
		return
	}
	product, err := h.Catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	in, err := h.toRawInput(product, req)
	if err != nil {
		// Mid-configuration input: preview degrades instead of failing.
		common.JSON(w, http.StatusOK, map[string]any{"data": pricing.Quote{}})
		return
	}
	quote, err := pricing.Compute(in.Product, in.Spec, in.Qty, in.Finishings, pricing.Preview)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if obs.QuotesComputed != nil {
		obs.QuotesComputed.WithLabelValues(string(product.Mode)).Inc()
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": quote})
}

// AddItem handles POST /api/v1/carts/{cartID}/items: validates and prices the
// configuration, then appends the resulting item to the cart. A productName in
// the payload marks the legacy flat call shape from older terminals, which
// inlines the product fields and configuration instead of referencing the
// catalog.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	cartID := chi.URLParam(r, "cartID")
	body, err := io.ReadAll(r.Body)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body could not be read", nil)
		return
	}
	var probe struct {
		ProductName string `json:"productName"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON", nil)
		return
	}

	var in RawInput
	if probe.ProductName != "" {
		var legacy LegacyInput
		if err := json.Unmarshal(body, &legacy); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON", nil)
			return
		}
		// Oldest terminals only ever sent free-text manual lines and omit
		// the mode entirely.
		if legacy.Mode == "" {
			legacy.Mode = string(pricing.ModeManual)
		}
		in, err = NormalizeLegacy(legacy)
		if err != nil {
			h.writeError(w, err)
			return
		}
	} else {
		var req itemRequest
		if err := json.Unmarshal(body, &req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON", nil)
			return
		}
		if h.Validate != nil {
			if verr := h.Validate.Struct(req); verr != nil {
				common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_INPUT", verr.Error(), nil)
				return
			}
		}
		product, perr := h.Catalog.Get(r.Context(), req.ProductID)
		if perr != nil {
			h.writeError(w, perr)
			return
		}
		in, err = h.toRawInput(product, req)
		if err != nil {
			h.writeError(w, err)
			return
		}
	}

	item, err := h.Builder.Build(in)
	if err != nil {
		if obs.CartItemsRejected != nil {
			obs.CartItemsRejected.WithLabelValues(rejectionCode(err)).Inc()
		}
		h.writeError(w, err)
		return
	}
	c, err := h.Carts.Append(r.Context(), cartID, item)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if obs.CartItemsBuilt != nil {
		obs.CartItemsBuilt.WithLabelValues(string(item.Mode)).Inc()
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"item": item, "cart": c}})
}

// GetCart handles GET /api/v1/carts/{cartID}.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Get(r.Context(), chi.URLParam(r, "cartID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c, "total": c.Total()})
}

// RemoveItem handles DELETE /api/v1/carts/{cartID}/items/{itemID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.RemoveItem(r.Context(), chi.URLParam(r, "cartID"), chi.URLParam(r, "itemID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": c})
}

// ClearCart handles DELETE /api/v1/carts/{cartID}.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.Carts.Clear(r.Context(), chi.URLParam(r, "cartID")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toRawInput(product catalog.Product, req itemRequest) (RawInput, error) {
	spec, err := pricing.SpecFromJSON(product.Mode, req.Dimensions)
	if err != nil {
		return RawInput{}, common.NewAppError(CodeInvalidDimensions, err.Error(), http.StatusUnprocessableEntity, err)
	}
	if manual, ok := spec.(pricing.ManualSpec); ok && manual.Price == 0 {
		manual.Price = req.ManualPrice
		spec = manual
	}
	fins, err := product.ResolveFinishings(req.Finishings)
	if err != nil {
		return RawInput{}, common.NewAppError("INVALID_FINISHING", err.Error(), http.StatusUnprocessableEntity, err)
	}
	return RawInput{
		Product:    product.Pricing(),
		Mode:       product.Mode,
		Spec:       spec,
		Qty:        req.Qty,
		Finishings: fins,
		Notes:      req.Notes,
	}, nil
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
		code := appErr.Code
		if code == "" {
			code = "INTERNAL"
		}
		common.JSONError(w, status, code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "CART_NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrItemNotFound):
		common.JSONError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "cart item not found", nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
	}
}
