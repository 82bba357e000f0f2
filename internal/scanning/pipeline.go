package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/zombor/receipt-scanner/internal/extract"
	"github.com/zombor/receipt-scanner/internal/normalize"
)

// Pipeline implements Scanner: decode, preprocess, recognize, normalize and,
// for receipts, extract fields. It holds no per-call state.
type Pipeline struct {
	recognizer *Recognizer
	extractor  *extract.Extractor
}

// NewPipeline creates a Pipeline.
func NewPipeline(recognizer *Recognizer, extractor *extract.Extractor) *Pipeline {
	return &Pipeline{
		recognizer: recognizer,
		extractor:  extractor,
	}
}

// ExtractText recognizes the text in imageData.
func (p *Pipeline) ExtractText(ctx context.Context, imageData []byte) (result *TextResult, err error) {
	defer recoverProcessing(&err)

	h, err := p.recognize(ctx, imageData)
	if err != nil {
		return nil, err
	}

	text := normalize.Text(h.Text)
	confidence := h.MeanConfidence()
	return &TextResult{
		Text:            text,
		RawText:         h.Text,
		Confidence:      math.Round(confidence*100) / 100,
		ConfidenceLevel: ConfidenceLevel(confidence),
		CharacterCount:  utf8.RuneCountInString(text),
		WordCount:       len(strings.Fields(text)),
	}, nil
}

// ExtractReceipt recognizes the text in imageData and extracts receipt fields.
// Missing fields are left empty; only a failure to read the image is an error.
func (p *Pipeline) ExtractReceipt(ctx context.Context, imageData []byte) (record *extract.ReceiptRecord, err error) {
	defer recoverProcessing(&err)

	h, err := p.recognize(ctx, imageData)
	if err != nil {
		return nil, err
	}

	r := p.extractor.Extract(normalize.Lines(h.Text), normalize.Text(h.Text))
	slog.Debug("Extracted receipt",
		"vendor", r.Vendor,
		"amount", r.Amount,
		"category", r.Category,
		"date", r.DetectedDate,
	)
	return &r, nil
}

func (p *Pipeline) recognize(ctx context.Context, imageData []byte) (Hypothesis, error) {
	img, mimeType, err := DecodeImage(imageData)
	if err != nil {
		return Hypothesis{}, processingFailed(err)
	}
	slog.Debug("Decoded image", "mime_type", mimeType, "bounds", img.Bounds())

	return p.recognizer.Recognize(ctx, Preprocess(img))
}

// recoverProcessing turns a panic into a processing failure so one bad image
// cannot take down the caller.
func recoverProcessing(err *error) {
	if r := recover(); r != nil {
		slog.Error("Recovered from panic while processing image", "panic", r)
		*err = processingFailed(fmt.Errorf("panic: %v", r))
	}
}
