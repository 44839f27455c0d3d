package channel

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-percetakan/internal/cart"
	"github.com/noah-isme/backend-percetakan/internal/common"
	"github.com/noah-isme/backend-percetakan/internal/obs"
)

// Handler receives external channel order intake and funnels it through the
// same builder gate the POS uses.
type Handler struct {
	Builder cart.Builder
	Carts   *cart.Service
	Logger  zerolog.Logger
}

type intakeRequest struct {
	CartID     string         `json:"cart_id,omitempty"`
	Descriptor Descriptor     `json:"catalog_descriptor"`
	Input      map[string]any `json:"input"`
}

// Intake handles POST /api/v1/channel/orders.
func (h *Handler) Intake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_JSON", "request body is not valid JSON", nil)
		return
	}
	mode := DeriveMode(req.Descriptor.FormType, req.Descriptor.DisplayConfig)
	in, err := NormalizeSpecs(mode, req.Input, req.Descriptor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	item, err := h.Builder.Build(in)
	if err != nil {
		if obs.ChannelIntake != nil {
			obs.ChannelIntake.WithLabelValues(string(mode), "rejected").Inc()
		}
		h.writeError(w, err)
		return
	}
	c, err := h.Carts.Append(r.Context(), req.CartID, item)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if obs.ChannelIntake != nil {
		obs.ChannelIntake.WithLabelValues(string(mode), "accepted").Inc()
	}
	h.Logger.Info().
		Str("cart_id", c.ID).
		Str("item_id", item.ID).
		Str("mode", string(mode)).
		Float64("total", item.TotalPrice).
		Msg("channel_intake_accepted")
	common.JSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"item": item, "cart": c}})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_FIELD", fieldErr.Error(), map[string]any{
			"field":      fieldErr.Field,
			"value":      fieldErr.Value,
			"constraint": fieldErr.Constraint,
			"unit":       fieldErr.Unit,
		})
		return
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
