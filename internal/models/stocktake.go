package models

import (
	"github.com/google/uuid"
)

// StocktakeLine is one counted (or deliberately skipped) item in a
// stocktake submission. Lines with Counted=false are left untouched
// by reconciliation; partial counts are permitted.
type StocktakeLine struct {
	LocationID    uuid.UUID `json:"location_id"`
	SKU           string    `json:"sku"`
	PhysicalCount int       `json:"physical_count"`
	Counted       bool      `json:"counted"`
}

// StocktakeSubmission is one reconciliation batch. All resulting
// adjustments commit as a single atomic unit or not at all.
type StocktakeSubmission struct {
	Lines       []StocktakeLine `json:"lines"`
	Reason      string          `json:"reason"`
	DocumentRef *string         `json:"document_ref,omitempty"`
}

// StocktakeResult summarizes a committed reconciliation.
type StocktakeResult struct {
	TotalLines    int              `json:"total_lines"`
	CountedLines  int              `json:"counted_lines"`
	Adjusted      int              `json:"adjusted"`
	Unchanged     int              `json:"unchanged"`
	Completion    float64          `json:"completion"`
	Partial       bool             `json:"partial"`
	CorrelationID uuid.UUID        `json:"correlation_id"`
	Adjustments   []*StockMutation `json:"adjustments"`
}
