package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vendamais/orderhub/internal/apperr"
	"github.com/vendamais/orderhub/internal/tenant"
)

// TenantHandler serves the tenant reference data around the order core:
// products, clients, additionals, payment methods and webhook subscriptions.
type TenantHandler struct {
	Repo *tenant.Repo
	Log  zerolog.Logger
}

func (h *TenantHandler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Use(RequireCompany)
		r.Post("/", h.createProduct)
		r.Get("/", h.listProducts)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
	r.Route("/clients", func(r chi.Router) {
		r.Use(RequireCompany)
		r.Post("/", h.createClient)
		r.Get("/", h.listClients)
		r.Get("/{id}", h.getClient)
		r.Put("/{id}", h.updateClient)
		r.Delete("/{id}", h.deleteClient)
	})
	r.Route("/additionals", func(r chi.Router) {
		r.Use(RequireCompany)
		r.Post("/", h.createAdditional)
		r.Get("/", h.listAdditionals)
		r.Delete("/{id}", h.deleteAdditional)
	})
	r.Route("/payment-methods", func(r chi.Router) {
		r.Use(RequireCompany)
		r.Post("/", h.createPaymentMethod)
		r.Get("/", h.listPaymentMethods)
		r.Delete("/{id}", h.deletePaymentMethod)
	})
	r.Route("/webhooks", func(r chi.Router) {
		r.Use(RequireCompany)
		r.Post("/", h.createWebhook)
		r.Get("/", h.listWebhooks)
		r.Delete("/{id}", h.deleteWebhook)
	})
}

func (h *TenantHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in tenant.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}
	p, err := h.Repo.CreateProduct(r.Context(), cid, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *TenantHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out, err := h.Repo.ListProducts(r.Context(), cid, tenant.ProductFilter{
		Term:     r.URL.Query().Get("term"),
		Category: r.URL.Query().Get("category"),
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []tenant.Product{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TenantHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	p, err := h.Repo.Product(r.Context(), cid, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *TenantHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in tenant.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}
	p, err := h.Repo.UpdateProduct(r.Context(), cid, id, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *TenantHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Repo.DeleteProduct, "product deleted")
}

func (h *TenantHandler) createClient(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in tenant.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}
	c, err := h.Repo.CreateClient(r.Context(), cid, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *TenantHandler) listClients(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out, err := h.Repo.ListClients(r.Context(), cid, r.URL.Query().Get("term"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []tenant.Client{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TenantHandler) getClient(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	c, err := h.Repo.Client(r.Context(), cid, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *TenantHandler) updateClient(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in tenant.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}
	c, err := h.Repo.UpdateClient(r.Context(), cid, id, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *TenantHandler) deleteClient(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Repo.DeleteClient, "client deleted")
}

func (h *TenantHandler) createAdditional(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in tenant.AdditionalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}
	a, err := h.Repo.CreateAdditional(r.Context(), cid, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *TenantHandler) listAdditionals(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out, err := h.Repo.ListAdditionals(r.Context(), cid)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []tenant.Additional{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TenantHandler) deleteAdditional(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Repo.DeleteAdditional, "additional deleted")
}

func (h *TenantHandler) createPaymentMethod(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}
	pm, err := h.Repo.CreatePaymentMethod(r.Context(), cid, in.Name)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, pm)
}

func (h *TenantHandler) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out, err := h.Repo.ListPaymentMethods(r.Context(), cid)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []tenant.PaymentMethod{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TenantHandler) deletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Repo.DeletePaymentMethod, "payment method deleted")
}

func (h *TenantHandler) createWebhook(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in tenant.WebhookInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}
	wh, err := h.Repo.CreateWebhook(r.Context(), cid, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, wh)
}

func (h *TenantHandler) listWebhooks(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out, err := h.Repo.ListWebhooks(r.Context(), cid)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []tenant.Webhook{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TenantHandler) deleteWebhook(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.Repo.DeleteWebhook, "webhook deleted")
}

func (h *TenantHandler) deleteByID(w http.ResponseWriter, r *http.Request,
	del func(ctx context.Context, companyID, id int64) error, msg string) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := del(r.Context(), cid, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
