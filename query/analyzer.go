// Package query turns raw user utterances into typed intents and structured
// filters. All functions are pure and case-insensitive; the rules are a
// deliberate rule-based approximation, not language understanding.
package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/crestline/leasebot/core"
)

// Keyword groups, checked against the lowercased utterance.
var (
	actionKeywords = []string{
		"tour", "schedule", "visit", "apply", "application", "details", "more info", "show me",
	}

	genericListingPhrases = []string{
		"what properties", "show me properties", "all properties",
		"list properties", "available properties",
	}

	filterKeywords = []string{
		"bed", "bath", "rent", "price", "pet", "dog", "cat",
	}

	descriptiveNouns = []string{
		"apartment", "house", "property", "available", "looking for",
	}

	// Cities the catalog covers. Membership gates city filter extraction.
	knownCities = []string{
		"austin", "dallas", "houston", "san antonio",
		"denver", "portland", "seattle",
	}
)

var (
	choiceDigitRe   = regexp.MustCompile(`^\s*[1-4]\s*$`)
	choiceOrdinalRe = regexp.MustCompile(`\b(first|second|third|fourth)\b`)
	choiceOptionRe  = regexp.MustCompile(`\boption\s*[1-4]\b`)

	bedsRe  = regexp.MustCompile(`\b(\d+)\s*(?:-\s*)?(?:bed(?:room)?s?|br|bd)\b`)
	bathsRe = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:-\s*)?(?:bath(?:room)?s?|ba)\b`)

	rentRangeRe  = regexp.MustCompile(`\$\s*(\d[\d,]*)\s*-\s*\$?\s*(\d[\d,]*)`)
	rentAmountRe = regexp.MustCompile(`\$\s*(\d[\d,]*(?:\.\d+)?)`)

	sqftRangeRe  = regexp.MustCompile(`\b(\d[\d,]*)\s*-\s*(\d[\d,]*)\s*(?:sq\.?\s*ft\.?|sqft|square\s+f(?:ee|oo)t)\b`)
	sqftAmountRe = regexp.MustCompile(`\b(\d[\d,]*)\s*(?:sq\.?\s*ft\.?|sqft|square\s+f(?:ee|oo)t)\b`)

	maxQualifiers = []string{"under", "less than", "below", "at most", "up to"}
	minQualifiers = []string{"over", "more than", "above", "at least"}
)

// Classify determines the intent of a raw utterance.
//
// Rules are evaluated in priority order: action keywords, choice references,
// generic listing phrases, filter keyword + descriptive noun (hybrid), filter
// keyword alone (exact), otherwise semantic. An ambiguous utterance is never
// an error; it falls through to semantic.
func Classify(text string) core.Intent {
	lower := strings.ToLower(strings.TrimSpace(text))

	if hasActionKeyword(lower) {
		return core.IntentAction
	}

	if choiceDigitRe.MatchString(lower) ||
		choiceOrdinalRe.MatchString(lower) ||
		choiceOptionRe.MatchString(lower) {
		return core.IntentChoice
	}

	if containsAny(lower, genericListingPhrases) {
		return core.IntentExact
	}

	hasFilter := containsAny(lower, filterKeywords)
	if hasFilter && containsAny(lower, descriptiveNouns) {
		return core.IntentHybrid
	}
	if hasFilter {
		return core.IntentExact
	}

	return core.IntentSemantic
}

// hasActionKeyword reports whether the utterance contains an action keyword.
// "show me" alone is ambiguous: "show me properties" is a generic listing
// request, not an action, so it only counts when no generic phrase matches.
func hasActionKeyword(lower string) bool {
	for _, kw := range actionKeywords {
		if !strings.Contains(lower, kw) {
			continue
		}
		if kw == "show me" && containsAny(lower, genericListingPhrases) {
			continue
		}
		return true
	}
	return false
}

// ChoiceIndex resolves a choice utterance to a 1-based option number.
// Returns false when the utterance doesn't reference an option.
func ChoiceIndex(text string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))

	if choiceDigitRe.MatchString(lower) {
		n, err := strconv.Atoi(strings.TrimSpace(lower))
		if err == nil {
			return n, true
		}
	}

	if m := choiceOrdinalRe.FindString(lower); m != "" {
		ordinals := map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4}
		return ordinals[m], true
	}

	if m := choiceOptionRe.FindString(lower); m != "" {
		digit := m[len(m)-1]
		return int(digit - '0'), true
	}

	return 0, false
}

// Analyze classifies the utterance and extracts its filters in one pass.
func Analyze(text string) core.SearchQuery {
	return core.SearchQuery{
		Intent:  Classify(text),
		Text:    text,
		Filters: ExtractFilters(text),
	}
}

// ExtractFilters pulls structured constraints out of a raw utterance.
// Absent constraints are left nil. Pet mentions only ever assert
// pets-allowed; "no pets wanted" is not expressible.
func ExtractFilters(text string) core.Filters {
	lower := strings.ToLower(text)
	var f core.Filters

	if m := bedsRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			f.Beds = &n
		}
	}

	if m := bathsRe.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			f.Baths = &n
		}
	}

	f.Rent = extractRent(lower)
	f.Sqft = extractSqft(lower)

	for _, city := range knownCities {
		if strings.Contains(lower, city) {
			c := city
			f.City = &c
			break
		}
	}

	if strings.Contains(lower, "pet") || strings.Contains(lower, "dog") || strings.Contains(lower, "cat") {
		allowed := true
		f.PetsAllowed = &allowed
	}

	return f
}

func extractRent(lower string) *core.RentRange {
	if m := rentRangeRe.FindStringSubmatch(lower); m != nil {
		lo, err1 := parseAmount(m[1])
		hi, err2 := parseAmount(m[2])
		if err1 == nil && err2 == nil {
			if hi < lo {
				lo, hi = hi, lo
			}
			return &core.RentRange{Min: &lo, Max: &hi}
		}
	}

	m := rentAmountRe.FindStringSubmatchIndex(lower)
	if m == nil {
		return nil
	}
	amount, err := parseAmount(lower[m[2]:m[3]])
	if err != nil {
		return nil
	}

	// Qualifier words preceding the amount decide which bound it sets.
	prefix := lower[:m[0]]
	switch {
	case hasTrailingQualifier(prefix, maxQualifiers):
		return &core.RentRange{Max: &amount}
	case hasTrailingQualifier(prefix, minQualifiers):
		return &core.RentRange{Min: &amount}
	default:
		exact := amount
		return &core.RentRange{Min: &exact, Max: &amount}
	}
}

func extractSqft(lower string) *core.SqftRange {
	if m := sqftRangeRe.FindStringSubmatch(lower); m != nil {
		lo, err1 := parseAmount(m[1])
		hi, err2 := parseAmount(m[2])
		if err1 == nil && err2 == nil {
			if hi < lo {
				lo, hi = hi, lo
			}
			loInt, hiInt := int(lo), int(hi)
			return &core.SqftRange{Min: &loInt, Max: &hiInt}
		}
	}

	m := sqftAmountRe.FindStringSubmatchIndex(lower)
	if m == nil {
		return nil
	}
	amount, err := parseAmount(lower[m[2]:m[3]])
	if err != nil {
		return nil
	}
	n := int(amount)

	prefix := lower[:m[0]]
	switch {
	case hasTrailingQualifier(prefix, maxQualifiers):
		return &core.SqftRange{Max: &n}
	case hasTrailingQualifier(prefix, minQualifiers):
		return &core.SqftRange{Min: &n}
	default:
		exact := n
		return &core.SqftRange{Min: &exact, Max: &n}
	}
}

// hasTrailingQualifier reports whether the text immediately before a numeric
// match ends with one of the qualifier words.
func hasTrailingQualifier(prefix string, qualifiers []string) bool {
	trimmed := strings.TrimRight(prefix, " ")
	for _, q := range qualifiers {
		if strings.HasSuffix(trimmed, q) {
			return true
		}
	}
	return false
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
