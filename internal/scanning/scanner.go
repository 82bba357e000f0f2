package scanning

import (
	"context"

	"github.com/zombor/receipt-scanner/internal/extract"
)

// TextResult is the recognized text of a document and how much to trust it.
type TextResult struct {
	Text            string  `json:"text"`     // normalized
	RawText         string  `json:"raw_text"` // as recognized
	Confidence      float64 `json:"confidence"`
	ConfidenceLevel string  `json:"confidence_level"`
	CharacterCount  int     `json:"character_count"`
	WordCount       int     `json:"word_count"`
}

// Scanner defines the interface for document scanning operations.
// Failures are reported as *RecognitionError.
type Scanner interface {
	// ExtractReceipt reads a receipt image and extracts its fields
	ExtractReceipt(ctx context.Context, imageData []byte) (*extract.ReceiptRecord, error)
	// ExtractText reads a document image and returns its text only
	ExtractText(ctx context.Context, imageData []byte) (*TextResult, error)
}

// ConfidenceLevel buckets a 0-100 confidence into a label.
func ConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 90:
		return "very high"
	case confidence >= 75:
		return "high"
	case confidence >= 60:
		return "moderate"
	case confidence >= 40:
		return "low"
	default:
		return "very low"
	}
}
