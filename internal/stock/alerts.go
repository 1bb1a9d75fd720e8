package stock

import "fmt"

type AlertKind string

const (
	AlertLostSale AlertKind = "lost_sale"
	AlertStockOut AlertKind = "stock_out"
	AlertStockLow AlertKind = "stock_low"
)

// Alert describes one stock notification for a tenant. Stock is the units
// remaining after the triggering operation (for lost sales, the unchanged
// current stock).
type Alert struct {
	Kind      AlertKind `json:"kind"`
	CompanyID int64     `json:"company_id"`
	ProductID int64     `json:"product_id"`
	Product   string    `json:"product"`
	Stock     int       `json:"stock"`
	Message   string    `json:"message"`
}

func lostSaleAlert(companyID, productID int64, name string, stock int) Alert {
	return Alert{
		Kind:      AlertLostSale,
		CompanyID: companyID,
		ProductID: productID,
		Product:   name,
		Stock:     stock,
		Message:   fmt.Sprintf("Lost sale! You just missed a sale because product %q is out of stock.", name),
	}
}

// thresholdAlert returns nil when newStock is above the low-stock threshold.
func thresholdAlert(companyID, productID int64, name string, newStock int) *Alert {
	if newStock > LowStockThreshold {
		return nil
	}
	a := Alert{
		CompanyID: companyID,
		ProductID: productID,
		Product:   name,
		Stock:     newStock,
	}
	if newStock == 0 {
		a.Kind = AlertStockOut
		a.Message = fmt.Sprintf("Stock depleted! Product %q has just run out of stock.", name)
	} else {
		a.Kind = AlertStockLow
		a.Message = fmt.Sprintf("Low stock! Product %q is down to %d units.", name, newStock)
	}
	return &a
}
