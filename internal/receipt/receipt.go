package receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-scanner/internal/extract"
)

// Source records how an expense was entered
type Source string

const (
	SourceManual Source = "manual"
	SourceOCR    Source = "ocr"
)

// Scan is an uploaded receipt image together with what was read from it
type Scan struct {
	ID           string                `json:"id"`
	OriginalName string                `json:"original_name"`
	Filename     string                `json:"filename"` // path relative to storage
	ContentType  string                `json:"content_type"`
	Record       extract.ReceiptRecord `json:"record"`
	CreatedAt    time.Time             `json:"created_at"`
}

// Expense is a confirmed expense, entered by hand or pre-filled from a scan
type Expense struct {
	ID        string          `json:"id"`
	Place     string          `json:"place"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes,omitempty"`
	Source    Source          `json:"source"`
	ScanID    string          `json:"scan_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ExpenseInput is the request to create an expense. When ScanID is set, blank
// fields are filled from the scan's extracted record.
type ExpenseInput struct {
	ScanID   string              `json:"scan_id,omitempty"`
	Place    string              `json:"place"`
	Amount   decimal.NullDecimal `json:"amount"`
	Category string              `json:"category"`
	Date     string              `json:"date"` // YYYY-MM-DD
	Notes    string              `json:"notes,omitempty"`
}
