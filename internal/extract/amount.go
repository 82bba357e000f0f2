package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPatterns are applied independently and their matches pooled.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:total|subtotal|amount|price|cost|paid|due|balance|sum)[\s:]*[$€£₹]?\s*([0-9]+[.,][0-9]{2})`),
	regexp.MustCompile(`(?i)[$€£₹]\s*([0-9]+[.,][0-9]{2})`),
	regexp.MustCompile(`(?i)([0-9]+[.,][0-9]{2})\s*(?:USD|EUR|GBP|INR|RS|dollars?|euros?|pounds?|rupees?)`),
	regexp.MustCompile(`(?i)\b([0-9]{1,6}[.,][0-9]{2})\b`),
	regexp.MustCompile(`(?i)(?:total|amount|sum)\s*[=:]\s*[$€£₹]?\s*([0-9]+[.,][0-9]{2})`),
}

var totalKeyword = regexp.MustCompile(`(?i)(?:total|subtotal|amount|sum)[\s:=]*[$€£₹]?\s*[0-9]+`)

var (
	minAmount = decimal.RequireFromString("0.01")
	maxAmount = decimal.NewFromInt(999999)
)

// AmountResult is the selected total and how much the extractor trusts it.
type AmountResult struct {
	Amount     decimal.NullDecimal
	Confidence float64
	// Candidates holds every distinct in-range value, in first-seen order.
	Candidates []decimal.Decimal
}

// Amount selects the largest plausible monetary value in text. Receipts usually
// print the grand total as their largest figure; a tax rate or quantity larger
// than the total will be picked instead.
func Amount(text string) AmountResult {
	var (
		best     decimal.Decimal
		found    bool
		distinct []decimal.Decimal
		seen     = map[string]bool{}
	)
	for _, re := range amountPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
			if err != nil || v.LessThan(minAmount) || v.GreaterThan(maxAmount) {
				continue
			}
			if key := v.String(); !seen[key] {
				seen[key] = true
				distinct = append(distinct, v)
			}
			if !found || v.GreaterThan(best) {
				best, found = v, true
			}
		}
	}
	if !found {
		return AmountResult{}
	}

	confidence := 75.0
	if totalKeyword.MatchString(text) {
		confidence = 90
	}
	confidence = min(95, confidence+3*float64(len(distinct)-1))

	return AmountResult{
		Amount:     decimal.NewNullDecimal(best),
		Confidence: confidence,
		Candidates: distinct,
	}
}
