package domain

// Sale records units of a product sold. ProductName and UnitPriceCOP are
// copies taken when the sale was submitted.
type Sale struct {
	ID           string `json:"id,omitempty"`
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	UnitPriceCOP int64  `json:"unitPriceCOP"`
	Quantity     int64  `json:"quantity"`
	TotalCOP     int64  `json:"totalCOP"`
	At           int64  `json:"at"` // unix millis
	CreatedBy    string `json:"createdBy"`
}

func (s Sale) Document() map[string]interface{} {
	return map[string]interface{}{
		"productId":    s.ProductID,
		"productName":  s.ProductName,
		"unitPriceCOP": s.UnitPriceCOP,
		"quantity":     s.Quantity,
		"totalCOP":     s.TotalCOP,
		"at":           s.At,
		"createdBy":    s.CreatedBy,
	}
}
