package orders

import "strconv"

const (
	TopicOrderCreated = "order.created"
	TopicStockAlerts  = "stock.alerts"
)

// Partition key = company_id, so one tenant's events stay ordered.
func PartitionKey(companyID int64) []byte {
	return []byte(strconv.FormatInt(companyID, 10))
}
