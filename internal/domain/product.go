package domain

import "strings"

// Product is an item sold at the front desk. Prices are whole COP.
type Product struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	PriceCOP  int64  `json:"priceCOP"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"` // unix millis
	UpdatedAt int64  `json:"updatedAt"` // unix millis
}

// NormalizedName is the key used for case-insensitive name uniqueness.
func (p Product) NormalizedName() string {
	return NormalizeName(p.Name)
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
