package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/salespoint/pos-backend/internal/common"
	"github.com/salespoint/pos-backend/internal/obs"
)

// Handler wires the cart service to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createRequest struct {
	Profile string `json:"profile" validate:"required,oneof=cash credit"`
}

type productPayload struct {
	ID       string `json:"id" validate:"required,uuid"`
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code"`
	ImageURL string `json:"imageUrl"`
}

type addItemRequest struct {
	Product   productPayload `json:"product" validate:"required"`
	Qty       string         `json:"qty" validate:"required"`
	UnitPrice string         `json:"unitPrice" validate:"required"`
	TaxPct    string         `json:"taxPct"`
}

type updateItemRequest struct {
	Qty       *string `json:"qty"`
	UnitPrice *string `json:"unitPrice"`
}

type discountRequest struct {
	DiscountPct string `json:"discountPct" validate:"required"`
	DiscountAmt string `json:"discountAmt" validate:"required"`
}

type vatRequest struct {
	Action string `json:"action" validate:"required,oneof=add remove"`
}

type partyRequest struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// Create opens a new cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.Svc.Create(r.Context(), Profile(req.Profile))
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("create")
	common.Data(w, http.StatusCreated, view)
}

// Get returns the cart with recomputed totals.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// AddItem appends a product line.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	productID, err := uuid.Parse(req.Product.ID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", map[string]string{"product.id": "must be a uuid"})
		return
	}
	qty, ok := h.amount(w, "qty", req.Qty)
	if !ok {
		return
	}
	unitPrice, ok := h.amount(w, "unitPrice", req.UnitPrice)
	if !ok {
		return
	}
	taxPct := decimal.Zero
	if strings.TrimSpace(req.TaxPct) != "" {
		if taxPct, ok = h.amount(w, "taxPct", req.TaxPct); !ok {
			return
		}
	}
	view, err := h.Svc.AddItem(r.Context(), id, ProductRef{
		ID:       productID,
		Name:     req.Product.Name,
		Code:     req.Product.Code,
		ImageURL: req.Product.ImageURL,
	}, qty, unitPrice, taxPct)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("add_item")
	common.Data(w, http.StatusOK, view)
}

// UpdateItem patches quantity and/or unit price on a line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, line, ok := h.cartLine(w, r)
	if !ok {
		return
	}
	var req updateItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Qty == nil && req.UnitPrice == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "nothing to update", nil)
		return
	}
	var (
		view View
		err  error
	)
	if req.Qty != nil {
		qty, parsed := h.amount(w, "qty", *req.Qty)
		if !parsed {
			return
		}
		if view, err = h.Svc.UpdateQty(r.Context(), id, line, qty); err != nil {
			h.writeError(w, err)
			return
		}
		obs.IncCartMutation("update_qty")
	}
	if req.UnitPrice != nil {
		price, parsed := h.amount(w, "unitPrice", *req.UnitPrice)
		if !parsed {
			return
		}
		if view, err = h.Svc.UpdatePrice(r.Context(), id, line, price); err != nil {
			h.writeError(w, err)
			return
		}
		obs.IncCartMutation("update_price")
	}
	common.Data(w, http.StatusOK, view)
}

// UpdateDiscount stores a reconciled percentage/amount discount pair.
func (h *Handler) UpdateDiscount(w http.ResponseWriter, r *http.Request) {
	id, line, ok := h.cartLine(w, r)
	if !ok {
		return
	}
	var req discountRequest
	if !h.decode(w, r, &req) {
		return
	}
	pct, ok := h.amount(w, "discountPct", req.DiscountPct)
	if !ok {
		return
	}
	amt, ok := h.amount(w, "discountAmt", req.DiscountAmt)
	if !ok {
		return
	}
	view, err := h.Svc.UpdateDiscount(r.Context(), id, line, pct, amt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("update_discount")
	common.Data(w, http.StatusOK, view)
}

// SetVAT removes or restores the tax snapshot on a line.
func (h *Handler) SetVAT(w http.ResponseWriter, r *http.Request) {
	id, line, ok := h.cartLine(w, r)
	if !ok {
		return
	}
	var req vatRequest
	if !h.decode(w, r, &req) {
		return
	}
	view, err := h.Svc.SetVAT(r.Context(), id, line, req.Action == "remove")
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("vat_" + req.Action)
	common.Data(w, http.StatusOK, view)
}

// RemoveItem deletes a line.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, line, ok := h.cartLine(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.RemoveItem(r.Context(), id, line)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("remove_item")
	common.Data(w, http.StatusOK, view)
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	view, err := h.Svc.Clear(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	obs.IncCartMutation("clear")
	common.Data(w, http.StatusOK, view)
}

// SetCustomer attaches or detaches the customer. A null id detaches.
func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	ref, ok := h.party(w, r)
	if !ok {
		return
	}
	var customer *CustomerRef
	if ref != nil {
		customer = &CustomerRef{ID: ref.id, Name: ref.name}
	}
	view, err := h.Svc.SetCustomer(r.Context(), id, customer)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

// SetAgent attaches or detaches the sales agent. A null id detaches.
func (h *Handler) SetAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.cartID(w, r)
	if !ok {
		return
	}
	ref, ok := h.party(w, r)
	if !ok {
		return
	}
	var agent *AgentRef
	if ref != nil {
		agent = &AgentRef{ID: ref.id, Name: ref.name}
	}
	view, err := h.Svc.SetAgent(r.Context(), id, agent)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

type partyRef struct {
	id   uuid.UUID
	name string
}

func (h *Handler) party(w http.ResponseWriter, r *http.Request) (*partyRef, bool) {
	var req partyRequest
	if !h.decode(w, r, &req) {
		return nil, false
	}
	if req.ID == nil || strings.TrimSpace(*req.ID) == "" {
		return nil, true
	}
	id, err := uuid.Parse(*req.ID)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid reference id", map[string]string{"id": "must be a uuid"})
		return nil, false
	}
	return &partyRef{id: id, name: req.Name}, true
}

func (h *Handler) cartID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func (h *Handler) cartLine(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	id, ok := h.cartID(w, r)
	if !ok {
		return uuid.UUID{}, 0, false
	}
	line, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil || line < 0 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid line index", nil)
		return uuid.UUID{}, 0, false
	}
	return id, line, true
}

func (h *Handler) amount(w http.ResponseWriter, field, raw string) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid amount", map[string]string{field: "must be a decimal number"})
		return decimal.Decimal{}, false
	}
	return v, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(dst); err != nil {
			fields := map[string]string{}
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					fields[fe.Field()] = fe.Tag()
				}
			}
			common.JSONError(w, http.StatusBadRequest, "VALIDATION", "invalid request payload", fields)
			return false
		}
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
	case errors.Is(err, ErrLineNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart line not found", nil)
	case errors.Is(err, ErrInvalidInput):
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart operation failed", nil)
	}
}
