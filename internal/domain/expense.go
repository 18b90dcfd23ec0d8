package domain

type Expense struct {
	ID        string `json:"id,omitempty"`
	Concept   string `json:"concept"`
	AmountCOP int64  `json:"amountCOP"`
	Notes     string `json:"notes,omitempty"`
	At        int64  `json:"at"` // unix millis
	CreatedBy string `json:"createdBy"`
}

func (e Expense) Document() map[string]interface{} {
	doc := map[string]interface{}{
		"concept":   e.Concept,
		"amountCOP": e.AmountCOP,
		"at":        e.At,
		"createdBy": e.CreatedBy,
	}
	if e.Notes != "" {
		doc["notes"] = e.Notes
	}
	return doc
}
