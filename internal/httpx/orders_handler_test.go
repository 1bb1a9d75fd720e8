package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendamais/orderhub/internal/apperr"
	"github.com/vendamais/orderhub/internal/orders"
	"github.com/vendamais/orderhub/internal/stock"
)

type fakeStore struct {
	createOrder  *orders.Order
	createAlerts []stock.Alert
	createErr    error
	lastCompany  int64
	lastCreate   orders.CreateInput

	statusOrder *orders.Order
	statusErr   error
	lastStatus  orders.Status

	items    []orders.Item
	itemsErr error
}

func (f *fakeStore) Create(ctx context.Context, companyID int64, in orders.CreateInput) (*orders.Order, []stock.Alert, error) {
	f.lastCompany = companyID
	f.lastCreate = in
	return f.createOrder, f.createAlerts, f.createErr
}

func (f *fakeStore) Get(ctx context.Context, companyID, orderID int64) (*orders.Order, error) {
	if f.createOrder != nil && f.createOrder.ID == orderID {
		return f.createOrder, nil
	}
	return nil, apperr.New(apperr.NotFound, "order not found")
}

func (f *fakeStore) List(ctx context.Context, companyID int64, fl orders.ListFilter) ([]orders.Order, error) {
	if f.createOrder == nil {
		return nil, nil
	}
	return []orders.Order{*f.createOrder}, nil
}

func (f *fakeStore) Update(ctx context.Context, companyID, orderID int64, in orders.UpdateInput) (*orders.Order, error) {
	if f.createOrder == nil {
		return nil, apperr.New(apperr.NotFound, "order not found")
	}
	o := *f.createOrder
	if in.Notes != nil {
		o.Notes = *in.Notes
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperr.Newf(apperr.Validation, "invalid status %q", *in.Status)
		}
		o.Status = *in.Status
	}
	return &o, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, companyID, orderID int64, status orders.Status) (*orders.Order, error) {
	f.lastStatus = status
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid status %q", status)
	}
	return f.statusOrder, f.statusErr
}

func (f *fakeStore) Delete(ctx context.Context, companyID, orderID int64) error { return nil }

func (f *fakeStore) AddItems(ctx context.Context, companyID, orderID int64, items []orders.ItemInput) ([]orders.Item, error) {
	return f.items, f.itemsErr
}

func (f *fakeStore) RemoveItem(ctx context.Context, companyID, orderID, itemID int64) error {
	return f.itemsErr
}

func (f *fakeStore) UpdateItemQuantity(ctx context.Context, companyID, orderID, itemID int64, quantity int) (*orders.Item, error) {
	if len(f.items) == 0 {
		return nil, apperr.New(apperr.NotFound, "item not found")
	}
	it := f.items[0]
	it.Quantity = quantity
	return &it, f.itemsErr
}

func (f *fakeStore) UpdateItemPrice(ctx context.Context, companyID, orderID, itemID int64, price decimal.Decimal) (*orders.Item, error) {
	if len(f.items) == 0 {
		return nil, apperr.New(apperr.NotFound, "item not found")
	}
	it := f.items[0]
	it.Price = price
	return &it, f.itemsErr
}

func (f *fakeStore) ListItems(ctx context.Context, companyID, orderID int64) ([]orders.Item, error) {
	return f.items, f.itemsErr
}

type published struct {
	key   []byte
	value []byte
}

type fakePublisher struct{ msgs []published }

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.msgs = append(p.msgs, published{key, value})
}

func newTestRouter(store *fakeStore) (*fakePublisher, *fakePublisher, http.Handler) {
	orderEvents := &fakePublisher{}
	stockEvents := &fakePublisher{}
	h := &OrdersHandler{
		Store:       store,
		OrderEvents: orderEvents,
		StockEvents: stockEvents,
		Service:     "orderhub-api-test",
		Log:         zerolog.Nop(),
	}
	r := NewRouter()
	h.Register(r)
	return orderEvents, stockEvents, r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(HeaderCompanyID, "1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateOrder(t *testing.T) {
	store := &fakeStore{
		createOrder: &orders.Order{
			ID: 9, CompanyID: 1, ClientID: 5, Status: orders.StatusPending,
			TotalValue: decimal.RequireFromString("7.00"),
			Items:      []orders.Item{{ID: 1, ProductID: 10, Quantity: 2, Price: decimal.RequireFromString("3.50")}},
		},
	}
	orderEvents, stockEvents, r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPost, "/orders",
		`{"client_id":5,"items":[{"product_id":10,"quantity":2,"price":"3.50"}]}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(1), store.lastCompany)
	assert.Equal(t, int64(5), store.lastCreate.ClientID)

	var resp orders.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.TotalValue.Equal(decimal.RequireFromString("7.00")))
	assert.Len(t, resp.Items, 1)

	assert.Len(t, orderEvents.msgs, 1)
	assert.Empty(t, stockEvents.msgs)
}

func TestCreateOrderLowStockPublishesAlert(t *testing.T) {
	store := &fakeStore{
		createOrder: &orders.Order{ID: 9, CompanyID: 1, ClientID: 5, Status: orders.StatusPending},
		createAlerts: []stock.Alert{{
			Kind: stock.AlertStockLow, CompanyID: 1, ProductID: 20, Product: "espresso beans", Stock: 4,
		}},
	}
	_, stockEvents, r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPost, "/orders",
		`{"client_id":5,"items":[{"product_id":20,"quantity":2}]}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, stockEvents.msgs, 1)

	var env orders.Envelope
	require.NoError(t, json.Unmarshal(stockEvents.msgs[0].value, &env))
	assert.Equal(t, orders.EventStockAlert, env.EventType)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	store := &fakeStore{
		createErr: apperr.New(apperr.Conflict, `requested quantity for product "oat milk" exceeds available stock`),
		createAlerts: []stock.Alert{{
			Kind: stock.AlertLostSale, CompanyID: 1, ProductID: 20, Product: "oat milk", Stock: 1,
		}},
	}
	orderEvents, stockEvents, r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPost, "/orders",
		`{"client_id":5,"items":[{"product_id":20,"quantity":5}]}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	// lost-sale alert still goes out, order event does not
	assert.Len(t, stockEvents.msgs, 1)
	assert.Empty(t, orderEvents.msgs)
}

func TestCreateOrderMissingTenantHeader(t *testing.T) {
	_, _, r := newTestRouter(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Company-Id")
}

func TestUpdateStatusInvalidValue(t *testing.T) {
	_, _, r := newTestRouter(&fakeStore{})

	w := doJSON(t, r, http.MethodPatch, "/orders/9/status", `{"status":"shipped"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	store := &fakeStore{statusOrder: &orders.Order{ID: 9, Status: orders.StatusConfirmed}}
	_, _, r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPatch, "/orders/9/status", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, orders.StatusConfirmed, store.lastStatus)
}

func TestUpdateOrderFields(t *testing.T) {
	store := &fakeStore{createOrder: &orders.Order{ID: 9, CompanyID: 1, Status: orders.StatusPending}}
	_, _, r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPut, "/orders/9", `{"notes":"no onions","status":"confirmed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "order updated")
	assert.Contains(t, w.Body.String(), "no onions")
}

func TestGetOrderNotFound(t *testing.T) {
	_, _, r := newTestRouter(&fakeStore{})

	w := doJSON(t, r, http.MethodGet, "/orders/77", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItems(t *testing.T) {
	store := &fakeStore{items: []orders.Item{{ID: 2, ProductID: 11, Quantity: 1, Price: decimal.RequireFromString("2.00")}}}
	_, _, r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPost, "/orders/9/items",
		`{"items":[{"product_id":11,"quantity":1,"price":"2.00"}]}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "items added")
}

func TestRemoveItem(t *testing.T) {
	_, _, r := newTestRouter(&fakeStore{})

	w := doJSON(t, r, http.MethodDelete, "/orders/9/items/2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "item removed")
}

func TestUpdateItemQuantity(t *testing.T) {
	store := &fakeStore{items: []orders.Item{{ID: 2, Quantity: 1, Price: decimal.RequireFromString("2.00")}}}
	_, _, r := newTestRouter(store)

	w := doJSON(t, r, http.MethodPut, "/orders/9/items/2/quantity", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quantity updated")
}

func TestInvalidOrderID(t *testing.T) {
	_, _, r := newTestRouter(&fakeStore{})

	w := doJSON(t, r, http.MethodGet, "/orders/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
