package scanning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/semaphore"
)

// Recognizer runs an image through several segmentation passes and keeps the
// hypothesis with the highest mean token confidence.
type Recognizer struct {
	engine Engine
	passes []SegmentationMode
	sem    *semaphore.Weighted
}

// NewRecognizer creates a Recognizer that allows at most workers images to be
// recognized at the same time. workers <= 0 uses the number of CPUs.
func NewRecognizer(engine Engine, workers int) *Recognizer {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Recognizer{
		engine: engine,
		passes: DefaultPasses,
		sem:    semaphore.NewWeighted(int64(workers)),
	}
}

type recognition struct {
	hypothesis Hypothesis
	err        error
}

// Recognize returns the winning hypothesis. If no pass produces text, one more
// attempt is made with the engine defaults. An unavailable engine is reported
// immediately without retrying.
//
// When ctx ends during a pass, Recognize returns at once but the worker slot
// stays taken until the engine call returns.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image) (Hypothesis, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return Hypothesis{}, processingFailed(fmt.Errorf("waiting for a recognition slot: %w", err))
	}

	done := make(chan recognition, 1)
	go func() {
		defer r.sem.Release(1)
		h, err := r.recognize(ctx, img)
		done <- recognition{hypothesis: h, err: err}
	}()

	select {
	case res := <-done:
		return res.hypothesis, res.err
	case <-ctx.Done():
		select {
		case res := <-done:
			return res.hypothesis, res.err
		default:
		}
		return Hypothesis{}, processingFailed(ctx.Err())
	}
}

func (r *Recognizer) recognize(ctx context.Context, img image.Image) (hyp Hypothesis, err error) {
	defer recoverProcessing(&err)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Hypothesis{}, processingFailed(fmt.Errorf("encoding PNG: %w", err))
	}
	data := buf.Bytes()

	var (
		best     Hypothesis
		bestMean float64
		found    bool
	)
	for _, mode := range r.passes {
		if err := ctx.Err(); err != nil {
			return Hypothesis{}, processingFailed(err)
		}

		h, err := r.engine.Recognize(ctx, data, mode)
		if errors.Is(err, ErrEngineUnavailable) {
			return Hypothesis{}, engineUnavailable(err)
		}
		if err != nil {
			if ctx.Err() != nil {
				return Hypothesis{}, processingFailed(ctx.Err())
			}
			slog.Warn("Recognition pass failed", "mode", mode, "error", err)
			continue
		}

		mean := h.MeanConfidence()
		slog.Debug("Recognition pass", "mode", mode, "mean_confidence", mean, "tokens", len(h.TokenConfidences))
		if mean > bestMean {
			best, bestMean, found = h, mean, true
		}
	}

	if found && strings.TrimSpace(best.Text) != "" {
		return best, nil
	}

	slog.Debug("Retrying recognition with engine defaults")
	h, err := r.engine.Recognize(ctx, data, ModeEngineDefault)
	if errors.Is(err, ErrEngineUnavailable) {
		return Hypothesis{}, engineUnavailable(err)
	}
	if err != nil {
		return Hypothesis{}, processingFailed(fmt.Errorf("recognizing with engine defaults: %w", err))
	}
	return h, nil
}
