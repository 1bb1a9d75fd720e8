package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/vendamais/orderhub/internal/apperr"
	kafkax "github.com/vendamais/orderhub/internal/kafka"
	"github.com/vendamais/orderhub/internal/orders"
	"github.com/vendamais/orderhub/internal/redisx"
	"github.com/vendamais/orderhub/internal/stock"
)

type OrderStore interface {
	Create(ctx context.Context, companyID int64, in orders.CreateInput) (*orders.Order, []stock.Alert, error)
	Get(ctx context.Context, companyID, orderID int64) (*orders.Order, error)
	List(ctx context.Context, companyID int64, f orders.ListFilter) ([]orders.Order, error)
	Update(ctx context.Context, companyID, orderID int64, in orders.UpdateInput) (*orders.Order, error)
	UpdateStatus(ctx context.Context, companyID, orderID int64, status orders.Status) (*orders.Order, error)
	Delete(ctx context.Context, companyID, orderID int64) error
	AddItems(ctx context.Context, companyID, orderID int64, items []orders.ItemInput) ([]orders.Item, error)
	RemoveItem(ctx context.Context, companyID, orderID, itemID int64) error
	UpdateItemQuantity(ctx context.Context, companyID, orderID, itemID int64, quantity int) (*orders.Item, error)
	UpdateItemPrice(ctx context.Context, companyID, orderID, itemID int64, price decimal.Decimal) (*orders.Item, error)
	ListItems(ctx context.Context, companyID, orderID int64) ([]orders.Item, error)
}

type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Store       OrderStore
	OrderEvents EventPublisher // order.created
	StockEvents EventPublisher // stock.alerts
	Cache       *redis.Client  // optional status read cache
	Service     string
	Log         zerolog.Logger
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(RequireCompany)
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/client/{client_id}", h.listByClient)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Get("/{id}/status", h.getStatus)
		r.Patch("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.delete)

		r.Route("/{id}/items", func(r chi.Router) {
			r.Post("/", h.addItems)
			r.Get("/", h.listItems)
			r.Delete("/{item_id}", h.removeItem)
			r.Put("/{item_id}/quantity", h.updateItemQuantity)
			r.Put("/{item_id}/price", h.updateItemPrice)
		})
	})
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in orders.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}

	order, alerts, err := h.Store.Create(r.Context(), cid, in)
	// lost-sale alerts accompany an insufficient-stock rejection and are
	// still emitted before the error is surfaced
	h.publishAlerts(r, cid, alerts)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	ev := orders.NewOrderCreatedEnvelope(h.Service, r.Header.Get("X-Request-Id"), order)
	h.OrderEvents.Publish(orders.PartitionKey(cid), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	h.cacheStatus(r.Context(), cid, order.ID, order.Status)

	writeJSON(w, http.StatusCreated, order)
}

func (h *OrdersHandler) publishAlerts(r *http.Request, cid int64, alerts []stock.Alert) {
	if h.StockEvents == nil {
		return
	}
	trace := r.Header.Get("X-Request-Id")
	for _, a := range alerts {
		ev := orders.NewStockAlertEnvelope(h.Service, trace, a)
		h.StockEvents.Publish(orders.PartitionKey(cid), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventStockAlert)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	f := orders.ListFilter{
		Status:        orders.Status(r.URL.Query().Get("status")),
		PaymentMethod: r.URL.Query().Get("payment_method"),
	}
	if raw := r.URL.Query().Get("client_id"); raw != "" {
		if clientID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.ClientID = clientID
		}
	}
	out, err := h.Store.List(r.Context(), cid, f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listByClient(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	clientID, err := urlID(r, "client_id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out, err := h.Store.List(r.Context(), cid, orders.ListFilter{ClientID: clientID})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	order, err := h.Store.Get(r.Context(), cid, orderID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// getStatus serves the cached status when Redis has it, falling back to the
// store and refilling the cache.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	if h.Cache != nil {
		key := redisx.OrderStatusKey(cid, orderID)
		if s, err := h.Cache.Get(r.Context(), key).Result(); err == nil && s != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(s))
			return
		}
	}

	order, err := h.Store.Get(r.Context(), cid, orderID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.cacheStatus(r.Context(), cid, orderID, order.Status)
	writeJSON(w, http.StatusOK, map[string]orders.Status{"status": order.Status})
}

func (h *OrdersHandler) update(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var in orders.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}

	order, err := h.Store.Update(r.Context(), cid, orderID, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.cacheStatus(r.Context(), cid, orderID, order.Status)
	writeJSON(w, http.StatusOK, map[string]any{"message": "order updated", "order": order})
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var req struct {
		Status orders.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}
	if req.Status == "" {
		writeError(w, h.Log, apperr.New(apperr.Validation, "status is required"))
		return
	}

	order, err := h.Store.UpdateStatus(r.Context(), cid, orderID, req.Status)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.cacheStatus(r.Context(), cid, orderID, order.Status)
	writeJSON(w, http.StatusOK, map[string]any{"message": "order status updated", "order": order})
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.Store.Delete(r.Context(), cid, orderID); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if h.Cache != nil {
		_ = h.Cache.Del(r.Context(), redisx.OrderStatusKey(cid, orderID)).Err()
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func (h *OrdersHandler) addItems(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var req struct {
		Items []orders.ItemInput `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}

	items, err := h.Store.AddItems(r.Context(), cid, orderID, req.Items)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "items added", "items": items})
}

func (h *OrdersHandler) listItems(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	items, err := h.Store.ListItems(r.Context(), cid, orderID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if items == nil {
		items = []orders.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *OrdersHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	itemID, err := urlID(r, "item_id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.Store.RemoveItem(r.Context(), cid, orderID, itemID); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "item removed"})
}

func (h *OrdersHandler) updateItemQuantity(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	itemID, err := urlID(r, "item_id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}

	item, err := h.Store.UpdateItemQuantity(r.Context(), cid, orderID, itemID, req.Quantity)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "quantity updated", "item": item})
}

func (h *OrdersHandler) updateItemPrice(w http.ResponseWriter, r *http.Request) {
	cid, err := companyID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	orderID, err := urlID(r, "id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	itemID, err := urlID(r, "item_id")
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, apperr.New(apperr.Validation, "invalid json"))
		return
	}

	item, err := h.Store.UpdateItemPrice(r.Context(), cid, orderID, itemID, req.Price)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "price updated", "item": item})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, cid, orderID int64, status orders.Status) {
	if h.Cache == nil {
		return
	}
	body, _ := json.Marshal(map[string]orders.Status{"status": status})
	_ = h.Cache.Set(ctx, redisx.OrderStatusKey(cid, orderID), body, redisx.TTLStatusCache).Err()
}
