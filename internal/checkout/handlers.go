package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/salespoint/pos-backend/internal/cart"
	"github.com/salespoint/pos-backend/internal/common"
	"github.com/salespoint/pos-backend/internal/payment"
)

// Handler wires the checkout service to HTTP.
type Handler struct {
	Svc *Service
}

type tenderRequest struct {
	PaymentTypeID *string `json:"paymentTypeId"`
	Amount        string  `json:"amount"`
}

// Submit routes a submission attempt for the cart. The response status
// field tells the terminal whether the sale went through or a tender
// session is now open.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	result, err := h.Svc.Submit(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusCreated
	if result.Status == DecisionAwaitPayment {
		status = http.StatusAccepted
	}
	common.Data(w, status, result)
}

// ConfirmTender resolves the open tender session and completes the sale.
func (h *Handler) ConfirmTender(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var req tenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	var methodID *uuid.UUID
	if req.PaymentTypeID != nil && strings.TrimSpace(*req.PaymentTypeID) != "" {
		parsed, err := uuid.Parse(*req.PaymentTypeID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payment type id",
				map[string]string{"paymentTypeId": "must be a uuid"})
			return
		}
		methodID = &parsed
	}
	result, err := h.Svc.ConfirmTender(r.Context(), id, methodID, req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, result)
}

// CancelTender dismisses the open tender session.
func (h *Handler) CancelTender(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.CancelTender(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *payment.ValidationError
	switch {
	case errors.As(err, &verr):
		common.JSONError(w, http.StatusUnprocessableEntity, "TENDER_REJECTED", "tender validation failed", verr.Fields)
	case errors.Is(err, cart.ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrSubmissionInFlight):
		common.JSONError(w, http.StatusConflict, "IN_FLIGHT", err.Error(), nil)
	case errors.Is(err, ErrNotAwaitingPayment):
		common.JSONError(w, http.StatusConflict, "NO_TENDER", err.Error(), nil)
	case errors.Is(err, ErrCartEmpty), errors.Is(err, ErrNothingToPay):
		common.JSONError(w, http.StatusUnprocessableEntity, "NOT_SUBMITTABLE", err.Error(), nil)
	case errors.Is(err, cart.ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		if appErr, ok := common.AsAppError(err); ok {
			common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Fields)
			return
		}
		common.JSONError(w, http.StatusBadGateway, "PROCESSOR_ERROR", "sale could not be recorded", nil)
	}
}
