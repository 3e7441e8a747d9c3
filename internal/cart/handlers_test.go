package cart

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc := &Service{Store: NewMemStore()}
	h := &Handler{Svc: svc, Validate: validator.New()}

	r := chi.NewRouter()
	r.Post("/carts", h.Create)
	r.Get("/carts/{id}", h.Get)
	r.Post("/carts/{id}/items", h.AddItem)
	r.Patch("/carts/{id}/items/{line}", h.UpdateItem)
	r.Put("/carts/{id}/items/{line}/discount", h.UpdateDiscount)
	r.Post("/carts/{id}/items/{line}/vat", h.SetVAT)
	r.Delete("/carts/{id}/items/{line}", h.RemoveItem)
	r.Delete("/carts/{id}/items", h.Clear)
	r.Put("/carts/{id}/customer", h.SetCustomer)
	return r, svc
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) View {
	t.Helper()
	var envelope struct {
		Data View `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return envelope.Data
}

func createCart(t *testing.T, r http.Handler, profile string) View {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/carts", map[string]string{"profile": profile})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cart: status %d body %s", rec.Code, rec.Body)
	}
	return decodeData(t, rec)
}

func addTestItem(t *testing.T, r http.Handler, cartID uuid.UUID) View {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/carts/"+cartID.String()+"/items", map[string]any{
		"product":   map[string]string{"id": uuid.NewString(), "name": "Beans 1kg", "code": "BN-001"},
		"qty":       "2",
		"unitPrice": "100",
		"taxPct":    "15",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("add item: status %d body %s", rec.Code, rec.Body)
	}
	return decodeData(t, rec)
}

func TestHandlerCreate(t *testing.T) {
	r, _ := newTestRouter(t)

	view := createCart(t, r, "cash")
	if view.Profile != ProfileCash {
		t.Fatalf("profile = %q, want cash", view.Profile)
	}

	rec := doJSON(t, r, http.MethodPost, "/carts", map[string]string{"profile": "layaway"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid profile: status %d, want 400", rec.Code)
	}
}

func TestHandlerAddItemComputesTotals(t *testing.T) {
	r, _ := newTestRouter(t)
	created := createCart(t, r, "cash")

	view := addTestItem(t, r, created.ID)
	if view.Totals.Total != "230.00" {
		t.Fatalf("total = %q, want 230.00", view.Totals.Total)
	}
	if view.Lines[0].TaxAmt != "30.00" {
		t.Fatalf("tax = %q, want 30.00", view.Lines[0].TaxAmt)
	}
}

func TestHandlerUpdateItem(t *testing.T) {
	r, _ := newTestRouter(t)
	created := createCart(t, r, "cash")
	addTestItem(t, r, created.ID)

	rec := doJSON(t, r, http.MethodPatch, "/carts/"+created.ID.String()+"/items/0", map[string]string{"qty": "3"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update qty: status %d body %s", rec.Code, rec.Body)
	}
	view := decodeData(t, rec)
	if view.Lines[0].Qty != "3" {
		t.Fatalf("qty = %q, want 3", view.Lines[0].Qty)
	}

	rec = doJSON(t, r, http.MethodPatch, "/carts/"+created.ID.String()+"/items/0", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty patch: status %d, want 400", rec.Code)
	}
}

func TestHandlerDiscountPairMustAgree(t *testing.T) {
	r, _ := newTestRouter(t)
	created := createCart(t, r, "cash")
	addTestItem(t, r, created.ID)

	path := "/carts/" + created.ID.String() + "/items/0/discount"
	rec := doJSON(t, r, http.MethodPut, path, map[string]string{"discountPct": "10", "discountAmt": "20"})
	if rec.Code != http.StatusOK {
		t.Fatalf("agreeing discount: status %d body %s", rec.Code, rec.Body)
	}
	view := decodeData(t, rec)
	if view.Totals.Total != "210.00" {
		t.Fatalf("total = %q, want 210.00", view.Totals.Total)
	}

	rec = doJSON(t, r, http.MethodPut, path, map[string]string{"discountPct": "10", "discountAmt": "75"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("disagreeing discount: status %d, want 400", rec.Code)
	}
}

func TestHandlerVATActions(t *testing.T) {
	r, _ := newTestRouter(t)
	created := createCart(t, r, "cash")
	addTestItem(t, r, created.ID)

	path := "/carts/" + created.ID.String() + "/items/0/vat"
	rec := doJSON(t, r, http.MethodPost, path, map[string]string{"action": "remove"})
	if rec.Code != http.StatusOK {
		t.Fatalf("remove vat: status %d body %s", rec.Code, rec.Body)
	}
	view := decodeData(t, rec)
	if view.Totals.Total != "200.00" || !view.Lines[0].TaxRemoved {
		t.Fatalf("vat not removed: total %q removed %v", view.Totals.Total, view.Lines[0].TaxRemoved)
	}

	rec = doJSON(t, r, http.MethodPost, path, map[string]string{"action": "add"})
	view = decodeData(t, rec)
	if view.Totals.Total != "230.00" {
		t.Fatalf("vat not restored: total %q", view.Totals.Total)
	}

	rec = doJSON(t, r, http.MethodPost, path, map[string]string{"action": "toggle"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown action: status %d, want 400", rec.Code)
	}
}

func TestHandlerCustomerAttachDetach(t *testing.T) {
	r, _ := newTestRouter(t)
	created := createCart(t, r, "credit")

	path := "/carts/" + created.ID.String() + "/customer"
	customerID := uuid.NewString()
	rec := doJSON(t, r, http.MethodPut, path, map[string]string{"id": customerID, "name": "ACME Corp"})
	view := decodeData(t, rec)
	if view.Customer == nil || view.Customer.Name != "ACME Corp" {
		t.Fatalf("customer not attached: %+v", view.Customer)
	}

	rec = doJSON(t, r, http.MethodPut, path, map[string]any{"id": nil})
	view = decodeData(t, rec)
	if view.Customer != nil {
		t.Fatalf("customer not detached: %+v", view.Customer)
	}
}

func TestHandlerUnknownCart(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/carts/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown cart: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/carts/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: status %d, want 400", rec.Code)
	}
}

func TestHandlerRemoveAndClear(t *testing.T) {
	r, _ := newTestRouter(t)
	created := createCart(t, r, "cash")
	addTestItem(t, r, created.ID)

	rec := doJSON(t, r, http.MethodDelete, "/carts/"+created.ID.String()+"/items/4", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("remove missing line: status %d, want 404", rec.Code)
	}

	rec = doJSON(t, r, http.MethodDelete, "/carts/"+created.ID.String()+"/items", nil)
	view := decodeData(t, rec)
	if len(view.Lines) != 0 || view.Totals.Total != "0.00" {
		t.Fatalf("clear left lines: %+v", view)
	}
}
