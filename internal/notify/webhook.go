package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookPayload is the body POSTed to every stock subscription.
type WebhookPayload struct {
	Message   string `json:"message"`
	Product   string `json:"product"`
	Stock     int    `json:"stock"`
	CompanyID int64  `json:"company_id"`
}

type WebhookClient struct {
	HTTP *http.Client
}

func NewWebhookClient(timeout time.Duration) *WebhookClient {
	return &WebhookClient{HTTP: &http.Client{Timeout: timeout}}
}

func (c *WebhookClient) Deliver(ctx context.Context, url string, p WebhookPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: unexpected status %d", url, resp.StatusCode)
	}
	return nil
}
