package types

import "time"

// Holding is one portfolio line item.
type Holding struct {
	Ticker        string     `json:"ticker" validate:"required"`
	Quantity      int        `json:"quantity" validate:"gt=0"`
	PurchasePrice *float64   `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty"`
}

// RowError reports a rejected import row. Row is the 1-based line number in the source file.
type RowError struct {
	Row   int    `json:"row"`
	Field string `json:"field,omitempty"`
	Error string `json:"error"`
}

// ImportResult summarises a holdings import.
type ImportResult struct {
	SessionID string     `json:"session_id"`
	Holdings  []Holding  `json:"holdings"`
	Errors    []RowError `json:"errors,omitempty"`
}

// Processed returns the number of accepted rows.
func (r ImportResult) Processed() int {
	return len(r.Holdings)
}
