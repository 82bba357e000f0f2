package scanning

import (
	"context"
	"strconv"
)

// SegmentationMode is a page segmentation assumption. Values match Tesseract's
// --psm numbers.
type SegmentationMode int

const (
	// ModeEngineDefault leaves segmentation to the engine's configured default.
	ModeEngineDefault SegmentationMode = -1
	ModeAuto          SegmentationMode = 3
	ModeSingleColumn  SegmentationMode = 4
	ModeSingleBlock   SegmentationMode = 6
)

// DefaultPasses are tried in order; receipts are usually one uniform block.
var DefaultPasses = []SegmentationMode{ModeSingleBlock, ModeAuto, ModeSingleColumn}

func (m SegmentationMode) String() string {
	switch m {
	case ModeEngineDefault:
		return "default"
	case ModeAuto:
		return "auto"
	case ModeSingleColumn:
		return "single-column"
	case ModeSingleBlock:
		return "single-block"
	}
	return "psm-" + strconv.Itoa(int(m))
}

// Hypothesis is the text one recognition pass produced.
type Hypothesis struct {
	Text             string
	TokenConfidences []int
	Mode             SegmentationMode
}

// MeanConfidence averages token confidences above zero. Zero-confidence tokens
// are layout filler and do not count.
func (h Hypothesis) MeanConfidence() float64 {
	sum, n := 0, 0
	for _, c := range h.TokenConfidences {
		if c > 0 {
			sum += c
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// Engine runs one recognition pass over a PNG-encoded image.
type Engine interface {
	Recognize(ctx context.Context, png []byte, mode SegmentationMode) (Hypothesis, error)
}
