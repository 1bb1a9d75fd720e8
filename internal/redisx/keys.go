package redisx

import (
	"fmt"
	"time"
)

const (
	// Cached order status: order_status:{company_id}:{order_id} -> {"status": "..."}
	keyOrderStatus = "order_status:%d:%d"

	// Dedup for event processing: dedup:{service}:{event_id}
	keyDedup = "dedup:%s:%s"

	// Realtime channel per tenant; stock notifications are PUBLISHed here
	// and the socket gateway relays them to the company's room.
	chanStockAlerts = "stock:company:%d"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)

func OrderStatusKey(companyID, orderID int64) string {
	return fmt.Sprintf(keyOrderStatus, companyID, orderID)
}

func DedupKey(service, eventID string) string {
	return fmt.Sprintf(keyDedup, service, eventID)
}

func StockAlertChannel(companyID int64) string {
	return fmt.Sprintf(chanStockAlerts, companyID)
}
