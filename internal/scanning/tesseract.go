package scanning

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements Engine with a local Tesseract installation.
type Tesseract struct {
	language       string
	tessdataPrefix string
}

// NewTesseract creates a Tesseract engine. An empty tessdataPrefix uses the
// installation's default language data location.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{
		language:       language,
		tessdataPrefix: tessdataPrefix,
	}
}

// TesseractVersion reports the linked Tesseract library version.
func TesseractVersion() string {
	return gosseract.Version()
}

// Recognize runs one pass. The underlying call cannot be interrupted, so ctx is
// only checked before it starts.
func (t *Tesseract) Recognize(ctx context.Context, png []byte, mode SegmentationMode) (Hypothesis, error) {
	if err := ctx.Err(); err != nil {
		return Hypothesis{}, err
	}
	return t.recognize(png, mode)
}

func (t *Tesseract) recognize(png []byte, mode SegmentationMode) (Hypothesis, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return Hypothesis{}, classifyTesseractError(fmt.Errorf("setting tessdata prefix: %w", err))
		}
	}
	if err := client.SetLanguage(t.language); err != nil {
		return Hypothesis{}, classifyTesseractError(fmt.Errorf("setting language: %w", err))
	}
	if mode != ModeEngineDefault {
		if err := client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
			return Hypothesis{}, fmt.Errorf("setting page segmentation mode: %w", err)
		}
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return Hypothesis{}, classifyTesseractError(fmt.Errorf("loading image: %w", err))
	}

	text, err := client.Text()
	if err != nil {
		return Hypothesis{}, classifyTesseractError(fmt.Errorf("recognizing text: %w", err))
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Hypothesis{}, classifyTesseractError(fmt.Errorf("reading word confidences: %w", err))
	}
	confidences := make([]int, 0, len(boxes))
	for _, box := range boxes {
		confidences = append(confidences, int(box.Confidence))
	}

	return Hypothesis{Text: text, TokenConfidences: confidences, Mode: mode}, nil
}

// classifyTesseractError marks initialization failures (missing library data or
// language files) as ErrEngineUnavailable.
func classifyTesseractError(err error) error {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"tessbaseapi", "tessdata", "failed loading language", "not found"} {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
	}
	return err
}
