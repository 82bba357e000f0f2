package scanning

import (
	"errors"
	"fmt"
)

// ErrorKind tags a RecognitionError.
type ErrorKind string

const (
	// KindEngineUnavailable means the recognition engine could not be invoked at all.
	KindEngineUnavailable ErrorKind = "engine_unavailable"
	// KindProcessingFailed covers every other failure to produce a result.
	KindProcessingFailed ErrorKind = "processing_failed"
)

// ErrEngineUnavailable is matched by errors.Is for engine-unavailable failures.
// Engines wrap it when the OCR installation or its language data is missing.
var ErrEngineUnavailable = errors.New("recognition engine unavailable")

const engineUnavailableMessage = "Tesseract OCR engine not installed or language data missing. Install tesseract-ocr and the tessdata for the configured language."

// RecognitionError is returned when no result can be produced for an image.
type RecognitionError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrEngineUnavailable) match by kind.
func (e *RecognitionError) Is(target error) bool {
	return target == ErrEngineUnavailable && e.Kind == KindEngineUnavailable
}

func engineUnavailable(err error) *RecognitionError {
	return &RecognitionError{Kind: KindEngineUnavailable, Message: engineUnavailableMessage, Err: err}
}

func processingFailed(err error) *RecognitionError {
	return &RecognitionError{Kind: KindProcessingFailed, Message: "OCR processing failed", Err: err}
}

// AsRecognitionError converts err to a RecognitionError, treating anything
// unrecognized as a processing failure.
func AsRecognitionError(err error) *RecognitionError {
	var re *RecognitionError
	if errors.As(err, &re) {
		return re
	}
	if errors.Is(err, ErrEngineUnavailable) {
		return engineUnavailable(err)
	}
	return processingFailed(err)
}
