package scanning

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-scanner/internal/extract"
)

var _ = Describe("Pipeline", func() {
	var (
		engine    *stubEngine
		pipeline  *Pipeline
		imageData []byte
	)

	BeforeEach(func() {
		engine = newStubEngine()
		classifier, err := extract.NewClassifier(nil)
		Expect(err).NotTo(HaveOccurred())
		extractor := extract.NewExtractor(classifier, func() time.Time {
			return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		})
		pipeline = NewPipeline(NewRecognizer(engine, 1), extractor)
		imageData = pngBytes(testImage(40, 20))

		engine.results[ModeSingleBlock] = Hypothesis{
			Text:             "Date : 09/01/2026\nTotal: $45.00\nJoe's Diner\n",
			TokenConfidences: []int{91, 88, 95, 0},
		}
	})

	It("implements Scanner", func() {
		var _ Scanner = pipeline
	})

	Describe("ExtractReceipt", func() {
		var (
			record *extract.ReceiptRecord
			err    error
		)

		JustBeforeEach(func() {
			record, err = pipeline.ExtractReceipt(context.Background(), imageData)
		})

		It("extracts the receipt fields", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(record.DetectedDate).To(Equal("2026-01-09"))
			Expect(record.Amount.Decimal.Equal(decimal.RequireFromString("45.00"))).To(BeTrue())
			Expect(record.Category).To(Equal(extract.Food))
			Expect(record.Vendor).To(ContainSubstring("Joe's Diner"))
		})

		When("the recognition engine is not installed", func() {
			BeforeEach(func() {
				engine.failAll(fmt.Errorf("%w: tesseract is not installed", ErrEngineUnavailable))
			})

			It("returns an engine unavailable error and no record", func() {
				Expect(record).To(BeNil())
				var re *RecognitionError
				Expect(errors.As(err, &re)).To(BeTrue())
				Expect(re.Kind).To(Equal(KindEngineUnavailable))
				Expect(re.Message).NotTo(BeEmpty())
			})
		})

		When("the bytes are not an image", func() {
			BeforeEach(func() {
				imageData = []byte("definitely not an image")
			})

			It("returns a processing failure", func() {
				Expect(record).To(BeNil())
				Expect(AsRecognitionError(err).Kind).To(Equal(KindProcessingFailed))
				Expect(engine.calls).To(BeEmpty())
			})
		})

		When("the engine panics", func() {
			BeforeEach(func() {
				engine.panicMsg = "engine crashed"
			})

			It("recovers into a processing failure", func() {
				Expect(record).To(BeNil())
				Expect(AsRecognitionError(err).Kind).To(Equal(KindProcessingFailed))
				Expect(err.Error()).To(ContainSubstring("engine crashed"))
			})
		})

		When("the recognized text is noise", func() {
			BeforeEach(func() {
				engine.results[ModeSingleBlock] = Hypothesis{Text: "~~ ## @@", TokenConfidences: []int{12}}
			})

			It("still returns a complete record", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(record.Category).To(Equal(extract.Miscellaneous))
				Expect(record.CategoryConfidence).To(Equal(40.0))
				Expect(record.Amount.Valid).To(BeFalse())
				Expect(record.DetectedDate).To(BeEmpty())
				Expect(record.Vendor).To(Equal(extract.DefaultVendor))
			})
		})
	})

	Describe("ExtractText", func() {
		var (
			result *TextResult
			err    error
		)

		JustBeforeEach(func() {
			result, err = pipeline.ExtractText(context.Background(), imageData)
		})

		It("returns the normalized and raw text", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Text).To(Equal("Date : 09/01/2026 Total: 45.00 Joe's Diner"))
			Expect(result.RawText).To(Equal("Date : 09/01/2026\nTotal: $45.00\nJoe's Diner\n"))
		})

		It("reports confidence over non-zero tokens", func() {
			Expect(result.Confidence).To(Equal(91.33))
			Expect(result.ConfidenceLevel).To(Equal("very high"))
		})

		It("counts characters and words", func() {
			Expect(result.CharacterCount).To(Equal(len("Date : 09/01/2026 Total: 45.00 Joe's Diner")))
			Expect(result.WordCount).To(Equal(7))
		})

		It("is idempotent for identical input", func() {
			again, err := pipeline.ExtractText(context.Background(), imageData)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Text).To(Equal(result.Text))
		})
	})
})

var _ = Describe("ConfidenceLevel", func() {
	DescribeTable("bucketing",
		func(confidence float64, expected string) {
			Expect(ConfidenceLevel(confidence)).To(Equal(expected))
		},
		Entry("very high", 90.0, "very high"),
		Entry("high", 75.0, "high"),
		Entry("moderate", 60.0, "moderate"),
		Entry("low", 40.0, "low"),
		Entry("just below low", 39.99, "very low"),
		Entry("zero", 0.0, "very low"),
	)
})
