// Package notify delivers stock alerts consumed from the event stream:
// a realtime message on the tenant's channel and a webhook fan-out. All
// delivery is best-effort and never blocks the write path that produced
// the alert.
package notify

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/vendamais/orderhub/internal/kafka"
	"github.com/vendamais/orderhub/internal/orders"
	"github.com/vendamais/orderhub/internal/stock"
	"github.com/vendamais/orderhub/internal/tenant"
)

type SubscriptionSource interface {
	StockWebhooks(ctx context.Context, companyID int64) ([]tenant.Webhook, error)
}

type RealtimePublisher interface {
	Emit(ctx context.Context, companyID int64, message string) error
}

type WebhookDeliverer interface {
	Deliver(ctx context.Context, url string, p WebhookPayload) error
}

type DedupStore interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type Service struct {
	Subs     SubscriptionSource
	Realtime RealtimePublisher
	Webhooks WebhookDeliverer
	Dedup    DedupStore
	Log      zerolog.Logger
}

// HandleStockAlert is the consumer handler for the stock alert topic.
// Returning an error leaves the offset uncommitted for redelivery; webhook
// and realtime failures are logged and swallowed instead, since alert
// delivery is fire-and-forget.
func (s *Service) HandleStockAlert(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventStockAlert {
		return nil
	}

	if seen, err := s.Dedup.Seen(ctx, env.EventID); err == nil && seen {
		return nil
	}
	if err := s.Dedup.Mark(ctx, env.EventID); err != nil {
		s.Log.Warn().Err(err).Str("event_id", env.EventID).Msg("dedup mark failed")
	}

	p, err := kafkax.UnwrapPayload[orders.StockAlertPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := s.Realtime.Emit(ctx, p.CompanyID, p.Message); err != nil {
		s.Log.Error().Err(err).Int64("company_id", p.CompanyID).Msg("realtime emit failed")
	}

	// lost sales notify the tenant's room only; webhooks fire on the
	// low/zero threshold
	if p.Kind == string(stock.AlertLostSale) {
		return nil
	}

	subs, err := s.Subs.StockWebhooks(ctx, p.CompanyID)
	if err != nil {
		return err
	}
	payload := WebhookPayload{
		Message:   p.Message,
		Product:   p.Product,
		Stock:     p.Stock,
		CompanyID: p.CompanyID,
	}
	for _, w := range subs {
		if err := s.Webhooks.Deliver(ctx, w.URL, payload); err != nil {
			s.Log.Error().Err(err).Str("url", w.URL).Int64("company_id", p.CompanyID).
				Msg("webhook delivery failed")
		}
	}
	return nil
}
