package extract

import (
	"regexp"
	"strings"
)

var travelKeywords = []string{
	"hotel", "flight", "booking", "reservation", "ticket",
	"airport", "airline", "train", "bus", "transit",
	"address", "location", "destination", "arrival", "departure",
	"date", "time", "price", "cost", "payment", "receipt",
	"passenger", "guest", "visitor", "tourist",
}

var (
	travelPrice = regexp.MustCompile(`[$€£][0-9]+\.?[0-9]*|[0-9]+\.?[0-9]*\s*(?:USD|EUR|GBP|dollars|euros|pounds)`)
	travelDate  = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{1,2}\b`)
)

// TravelInfo summarises travel-related hints in a document.
type TravelInfo struct {
	KeywordsFound    []string `json:"travel_keywords_found"`
	PotentialPrices  []string `json:"potential_prices"`
	PotentialDates   []string `json:"potential_dates"`
	IsTravelDocument bool     `json:"is_travel_document"`
}

// Travel scans text for travel keywords, prices and dates. Price and date
// matches are de-duplicated in order of appearance.
func Travel(text string) TravelInfo {
	lower := strings.ToLower(text)
	found := []string{}
	for _, kw := range travelKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return TravelInfo{
		KeywordsFound:    found,
		PotentialPrices:  unique(travelPrice.FindAllString(text, -1)),
		PotentialDates:   unique(travelDate.FindAllString(text, -1)),
		IsTravelDocument: len(found) > 0,
	}
}

func unique(values []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
