package extract

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/zombor/receipt-scanner/internal/normalize"
)

var _ = Describe("Extractor", func() {
	var (
		raw       string
		extractor *Extractor
		record    ReceiptRecord
	)

	BeforeEach(func() {
		classifier, err := NewClassifier(nil)
		Expect(err).NotTo(HaveOccurred())
		extractor = NewExtractor(classifier, func() time.Time {
			return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		})
	})

	JustBeforeEach(func() {
		record = extractor.Extract(normalize.Lines(raw), normalize.Text(raw))
	})

	When("reading a diner receipt", func() {
		BeforeEach(func() {
			raw = "Date : 09/01/2026\nTotal: $45.00\nJoe's Diner"
		})

		It("detects the date", func() {
			Expect(record.DetectedDate).To(Equal("2026-01-09"))
		})

		It("detects the amount", func() {
			Expect(record.Amount.Valid).To(BeTrue())
			Expect(record.Amount.Decimal.Equal(decimal.RequireFromString("45.00"))).To(BeTrue())
			Expect(record.AmountConfidence).To(Equal(90.0))
		})

		It("detects the vendor", func() {
			Expect(record.Vendor).To(ContainSubstring("Joe's Diner"))
		})

		It("classifies it as food", func() {
			Expect(record.Category).To(Equal(Food))
		})

		It("keeps the normalized text", func() {
			Expect(record.RawText).To(Equal("Date : 09/01/2026 Total: 45.00 Joe's Diner"))
		})
	})

	When("the text is pure noise", func() {
		BeforeEach(func() {
			raw = "~~ ## @@\n^^ ** ||"
		})

		It("has no date", func() {
			Expect(record.DetectedDate).To(BeEmpty())
		})

		It("has no amount", func() {
			Expect(record.Amount.Valid).To(BeFalse())
			Expect(record.AmountConfidence).To(BeZero())
		})

		It("falls back to miscellaneous", func() {
			Expect(record.Category).To(Equal(Miscellaneous))
			Expect(record.CategoryConfidence).To(Equal(40.0))
		})

		It("uses the default vendor", func() {
			Expect(record.Vendor).To(Equal(DefaultVendor))
		})
	})

	When("reading a bus ticket", func() {
		BeforeEach(func() {
			raw = "XYZ Travels Bus Ticket Fare Rs 350"
		})

		It("classifies it as transport ahead of shopping", func() {
			Expect(record.Category).To(Equal(Transport))
			Expect(record.CategoryScores[Transport]).To(BeNumerically(">", record.CategoryScores[Shopping]))
		})
	})
})

var _ = Describe("Assemble", func() {
	It("rounds confidences to one decimal and the amount to cents", func() {
		amount := AmountResult{
			Amount:     decimal.NewNullDecimal(decimal.RequireFromString("12.345")),
			Confidence: 77.777,
		}
		class := Classification{Category: Food, Confidence: 78.04, Scores: map[string]int{Food: 1}}

		record := Assemble("text", "Cafe", "2026-01-01", amount, class)
		Expect(record.AmountConfidence).To(Equal(77.8))
		Expect(record.CategoryConfidence).To(Equal(78.0))
		Expect(record.Amount.Decimal.String()).To(Equal("12.35"))
	})

	It("fills the vendor and category fallbacks", func() {
		record := Assemble("", "", "", AmountResult{}, Classification{})
		Expect(record.Vendor).To(Equal(DefaultVendor))
		Expect(record.Category).To(Equal(Miscellaneous))
		Expect(record.CategoryScores).NotTo(BeNil())
		Expect(record.Amount.Valid).To(BeFalse())
	})
})
