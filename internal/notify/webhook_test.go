package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookClientDeliver(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewWebhookClient(2 * time.Second)
	p := WebhookPayload{Message: "Low stock!", Product: "espresso beans", Stock: 4, CompanyID: 1}
	require.NoError(t, c.Deliver(context.Background(), srv.URL, p))
	assert.Equal(t, p, got)
}

func TestWebhookClientDeliverNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewWebhookClient(2 * time.Second)
	err := c.Deliver(context.Background(), srv.URL, WebhookPayload{})
	assert.ErrorContains(t, err, "unexpected status 502")
}
