// Package extract recovers receipt fields (date, amount, vendor and category)
// from recognized text using ordered heuristics.
package extract

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultVendor is used when no vendor name could be inferred.
const DefaultVendor = "Receipt Item"

// ReceiptRecord is the structured result of reading one receipt.
type ReceiptRecord struct {
	Vendor             string              `json:"vendor"`
	Amount             decimal.NullDecimal `json:"amount"`
	AmountConfidence   float64             `json:"amount_confidence"`
	Category           string              `json:"category"`
	CategoryConfidence float64             `json:"category_confidence"`
	CategoryScores     map[string]int      `json:"category_scores"`
	DetectedDate       string              `json:"detected_date,omitempty"` // YYYY-MM-DD
	RawText            string              `json:"raw_text"`
}

// Extractor runs every field extractor over one text.
type Extractor struct {
	classifier *Classifier
	now        func() time.Time
}

// NewExtractor creates an Extractor. now supplies the year for dates printed
// without one; nil means time.Now.
func NewExtractor(classifier *Classifier, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{classifier: classifier, now: now}
}

// Extract reads a receipt. lines is the normalized text with line breaks kept,
// used for layout-sensitive fields; text is the fully collapsed normalized text.
func (e *Extractor) Extract(lines, text string) ReceiptRecord {
	vendor := Vendor(lines)
	return Assemble(
		text,
		vendor,
		Date(lines, e.now()),
		Amount(text),
		e.classifier.Classify(text, vendor),
	)
}

// Assemble combines extractor outputs into a ReceiptRecord, applying the vendor
// fallback and rounding.
func Assemble(text, vendor, date string, amount AmountResult, class Classification) ReceiptRecord {
	if vendor == "" {
		vendor = DefaultVendor
	}
	category := class.Category
	if category == "" {
		category = Miscellaneous
	}
	scores := class.Scores
	if scores == nil {
		scores = map[string]int{}
	}

	record := ReceiptRecord{
		Vendor:             vendor,
		AmountConfidence:   round1(amount.Confidence),
		Category:           category,
		CategoryConfidence: round1(class.Confidence),
		CategoryScores:     scores,
		DetectedDate:       date,
		RawText:            text,
	}
	if amount.Amount.Valid {
		record.Amount = decimal.NewNullDecimal(amount.Amount.Decimal.Round(2))
	}
	return record
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
