package directory

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/salespoint/pos-backend/internal/common"
	"github.com/salespoint/pos-backend/internal/payment"
)

// Handler wires directory lookups to HTTP.
type Handler struct {
	Svc *Service
}

type listResponse[T any] struct {
	Items []T             `json:"items"`
	Meta  common.PageMeta `json:"meta"`
}

func (h *Handler) listParams(r *http.Request) ListParams {
	page, perPage := common.ParsePage(r, h.Svc.DefaultPerPage, h.Svc.MaxPerPage)
	return ListParams{
		Query:   r.URL.Query().Get("query"),
		Page:    page,
		PerPage: perPage,
	}
}

// ListProducts answers the product search box on the register.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	p := h.listParams(r)
	items, total, err := h.Svc.Products(r.Context(), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, listResponse[Product]{
		Items: items,
		Meta:  common.PageMeta{Page: p.Page, PerPage: p.PerPage, Total: total},
	})
}

// GetProduct answers a single product scan.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	product, err := h.Svc.Product(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, product)
}

// ListCustomers answers the customer picker.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	p := h.listParams(r)
	items, total, err := h.Svc.Customers(r.Context(), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, listResponse[Customer]{
		Items: items,
		Meta:  common.PageMeta{Page: p.Page, PerPage: p.PerPage, Total: total},
	})
}

// ListAgents answers the sales agent picker.
func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	p := h.listParams(r)
	items, total, err := h.Svc.Agents(r.Context(), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, listResponse[SalesAgent]{
		Items: items,
		Meta:  common.PageMeta{Page: p.Page, PerPage: p.PerPage, Total: total},
	})
}

type paymentTypesResponse struct {
	Methods   []payment.Method `json:"methods"`
	DefaultID *uuid.UUID       `json:"defaultId,omitempty"`
}

// ListPaymentTypes returns the eligible methods plus the register default.
func (h *Handler) ListPaymentTypes(w http.ResponseWriter, r *http.Request) {
	methods, def, err := h.Svc.PaymentTypes(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := paymentTypesResponse{Methods: methods}
	if def != nil {
		resp.DefaultID = &def.ID
	}
	common.Data(w, http.StatusOK, resp)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "directory entry not found", nil)
		return
	}
	common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "directory lookup failed", nil)
}
