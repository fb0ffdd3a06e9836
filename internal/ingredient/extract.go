package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

// Extracted is one ingredient mention pulled out of an utterance.
type Extracted struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
}

const unitPattern = `枚|個|本|ml|g|kg|l|リットル|片|パック|入り|つ|ヶ`

const conjunction = "と"

var (
	commaRe = regexp.MustCompile(`[、，]`)
	// quantityRe captures a trailing "<name><number><unit>" mention. The
	// name is matched lazily so the earliest qualifying number wins.
	quantityRe = regexp.MustCompile(`^(.*?)(\d+\.?\d*)(` + unitPattern + `)`)
	// afterConjunctionRe decides whether a conjunction separates two
	// items: only when digits and a unit follow it directly.
	afterConjunctionRe = regexp.MustCompile(`^\d+(?:` + unitPattern + `)`)
)

// Extractor turns free-form utterances like "鶏肉2枚、トマト3個" into
// structured ingredient mentions.
type Extractor struct {
	classifier *Classifier
}

// NewExtractor creates an Extractor that assigns categories with the
// given classifier.
func NewExtractor(c *Classifier) *Extractor {
	return &Extractor{classifier: c}
}

// Extract parses an utterance into ordered ingredient mentions. It
// never fails: items without a recognizable quantity fall back to
// quantity 1 with the default counting unit.
func (e *Extractor) Extract(text string) []Extracted {
	ingredients := []Extracted{}

	for _, segment := range commaRe.Split(text, -1) {
		for _, item := range splitOnConjunction(segment) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}

			name, quantity, unit, ok := matchQuantity(item)
			if !ok {
				// No quantity found, register as a single piece.
				name, quantity, unit = item, 1, "個"
			}

			ingredients = append(ingredients, Extracted{
				Name:     name,
				Quantity: quantity,
				Unit:     unit,
				Category: e.classifier.Classify(name),
			})
		}
	}

	return ingredients
}

// splitOnConjunction splits an item on "と", but only where the
// conjunction directly precedes a quantity and unit. "プチッと鍋" stays
// whole; "鶏肉とトマト2個" splits into "鶏肉" and "トマト2個".
func splitOnConjunction(item string) []string {
	var parts []string
	rest := item
	for {
		cut := -1
		off := 0
		for {
			i := strings.Index(rest[off:], conjunction)
			if i < 0 {
				break
			}
			pos := off + i
			if afterConjunctionRe.MatchString(rest[pos+len(conjunction):]) {
				cut = pos
				break
			}
			off = pos + len(conjunction)
		}
		if cut < 0 {
			return append(parts, rest)
		}
		parts = append(parts, rest[:cut])
		rest = rest[cut+len(conjunction):]
	}
}

// matchQuantity extracts a "<name><number><unit>" suffix. The name may be
// empty when the number starts the item; that is passed through as-is.
func matchQuantity(item string) (name string, quantity float64, unit string, ok bool) {
	m := quantityRe.FindStringSubmatch(item)
	if m == nil {
		return "", 0, "", false
	}
	quantity, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return "", 0, "", false
	}
	return strings.TrimSpace(m[1]), quantity, m[3], true
}
