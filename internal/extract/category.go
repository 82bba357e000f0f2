package extract

import (
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category vocabulary. The order of Categories is the tie-break order.
const (
	Food          = "food"
	Accommodation = "accommodation"
	Transport     = "transport"
	Shopping      = "shopping"
	Activities    = "activities"
	Miscellaneous = "miscellaneous"
)

// Categories lists the vocabulary in classification order.
var Categories = []string{Food, Accommodation, Transport, Shopping, Activities, Miscellaneous}

var defaultKeywords = map[string][]string{
	Food: {
		"restaurant", "resto", "dining", "diner", "food", "eatery", "biryani", "briyani", "baker", "bakery",
		"cafe", "coffee", "tea", "snack", "meal", "lunch", "dinner", "breakfast", "canteen", "kitchen",
		"grill", "bar", "pub", "hotel", "chicken", "noodle", "noodles", "fried", "rice", "egg",
	},
	Accommodation: {
		"lodge", "lodging", "stay", "room", "rooms", "resort", "inn", "motel", "guest house",
		"homestay", "hostel", "suite", "accommodation", "night", "bed", "hotel",
	},
	Transport: {
		"travel", "travels", "taxi", "cab", "uber", "lyft", "ola", "bus", "coach", "train", "rail",
		"metro", "tram", "ferry", "flight", "airline", "airways", "boarding", "fare", "ticket",
		"parking", "toll", "fuel", "petrol", "diesel", "gas",
	},
	Shopping: {
		"trader", "traders", "shop", "shops", "store", "stores", "mart", "market", "supermarket",
		"grocery", "provision", "provisions", "textile", "textiles", "cloth", "clothing", "garment",
		"apparel", "boutique", "retail", "outlet", "purchase", "purchases", "electronics", "hardware",
	},
	Activities: {
		"movie", "cinema", "theater", "theatre", "park", "zoo", "museum", "gallery", "tour", "tourist",
		"attraction", "ticket", "tickets", "entry", "admission", "show", "event", "concert", "festival",
		"ride", "amusement", "experience",
	},
	Miscellaneous: {"misc", "other"},
}

const (
	vendorWeight          = 4
	fallbackConfidence    = 40.0
	baseConfidence        = 70.0
	confidencePerPoint    = 8.0
	maxCategoryConfidence = 95.0
)

// Classification is the outcome of scoring a receipt against the vocabulary.
type Classification struct {
	Category   string         `json:"category"`
	Confidence float64        `json:"category_confidence"`
	Scores     map[string]int `json:"category_scores"`
}

// Classifier scores text against per-category keyword sets.
type Classifier struct {
	keywords map[string][]string
}

// NewClassifier returns a Classifier using the built-in keyword sets extended by
// extra. Keys of extra must belong to the category vocabulary.
func NewClassifier(extra map[string][]string) (*Classifier, error) {
	keywords := make(map[string][]string, len(Categories))
	for _, c := range Categories {
		keywords[c] = slices.Clone(defaultKeywords[c])
	}
	for category, words := range extra {
		if !IsCategory(category) {
			return nil, fmt.Errorf("unknown category %q", category)
		}
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" && !slices.Contains(keywords[category], w) {
				keywords[category] = append(keywords[category], w)
			}
		}
	}
	return &Classifier{keywords: keywords}, nil
}

// LoadKeywords reads a YAML document mapping category names to extra keywords.
func LoadKeywords(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keywords file: %w", err)
	}
	var extra map[string][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parsing keywords file: %w", err)
	}
	return extra, nil
}

// IsCategory reports whether name is part of the category vocabulary.
func IsCategory(name string) bool {
	return slices.Contains(Categories, name)
}

// Classify scores text and the detected vendor. Vendor hits count four times.
func (c *Classifier) Classify(text, vendor string) Classification {
	text = strings.ToLower(text)
	vendor = strings.ToLower(vendor)

	scores := make(map[string]int, len(Categories))
	best, bestScore := Miscellaneous, 0
	for _, category := range Categories {
		score := 0
		for _, kw := range c.keywords[category] {
			score += strings.Count(text, kw)
			if vendor != "" {
				score += vendorWeight * strings.Count(vendor, kw)
			}
		}
		scores[category] = score
		if score > bestScore {
			best, bestScore = category, score
		}
	}

	if bestScore == 0 {
		return Classification{Category: Miscellaneous, Confidence: fallbackConfidence, Scores: scores}
	}
	return Classification{
		Category:   best,
		Confidence: math.Min(maxCategoryConfidence, baseConfidence+confidencePerPoint*float64(bestScore)),
		Scores:     scores,
	}
}
