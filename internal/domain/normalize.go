package domain

import (
	"regexp"
	"strings"
)

// typeAlias lists the surface phrases accepted for one canonical type.
type typeAlias struct {
	canonical string
	phrases   []string
}

// aliasTable is ordered: detection returns the first canonical type with a
// matching phrase.
var aliasTable = []typeAlias{
	{"water_heater", []string{"water heater", "water-heater", "hot water heater", "waterheater"}},
	{"dishwasher", []string{"dishwasher", "dish washer"}},
	{"hvac", []string{"hvac"}},
	{"ac", []string{"ac", "a/c", "air conditioner", "air-conditioning"}},
	{"furnace", []string{"furnace"}},
	{"boiler", []string{"boiler"}},
	{"fridge", []string{"fridge", "refrigerator"}},
	{"washer", []string{"washer", "washing machine"}},
	{"dryer", []string{"dryer"}},
	{"disposal", []string{"garbage disposal", "disposal"}},
	{"oven", []string{"oven", "range", "stove"}},
	{"microwave", []string{"microwave"}},
}

type phraseMatcher struct {
	canonical string
	re        *regexp.Regexp
}

var (
	// exactAliases maps a whole normalized input to its canonical type.
	exactAliases = buildExactAliases()

	// phraseMatchers holds one case-insensitive word-boundary pattern per phrase.
	phraseMatchers = buildPhraseMatchers()

	whitespaceRe  = regexp.MustCompile(`\s+`)
	nonWordRe     = regexp.MustCompile(`[^\w]`)
	punctuationRe = regexp.MustCompile(`[^\w\s-]`)
	separatorRe   = regexp.MustCompile(`[\s-]+`)
)

func buildExactAliases() map[string]string {
	m := make(map[string]string)
	for _, a := range aliasTable {
		for _, p := range a.phrases {
			m[p] = a.canonical
		}
	}
	return m
}

func buildPhraseMatchers() []phraseMatcher {
	var out []phraseMatcher
	for _, a := range aliasTable {
		for _, p := range a.phrases {
			out = append(out, phraseMatcher{
				canonical: a.canonical,
				re:        regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`),
			})
		}
	}
	return out
}

// NormalizeApplianceType maps free text to a canonical type key. It tries an
// exact alias (hyphens read as spaces), then a whole-word alias phrase inside
// the text, then falls back to snake-casing the input ("Garage Freezer" ->
// "garage_freezer"). Text naming more than one canonical type, such as
// "microwave oven", is not guessed at and takes the fallback.
// It never fails; the result may be a key no table knows.
func NormalizeApplianceType(raw string) string {
	n := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")
	if n == "" {
		return ""
	}
	if canon, ok := exactAliases[n]; ok {
		return canon
	}
	if canon, ok := exactAliases[strings.ReplaceAll(n, "-", " ")]; ok {
		return canon
	}
	if canon, ok := uniqueApplianceType(n); ok {
		return canon
	}
	return snakeCase(n)
}

// uniqueApplianceType reports the canonical type of the alias phrases in
// text when they all name the same one.
func uniqueApplianceType(text string) (string, bool) {
	found := ""
	for _, m := range phraseMatchers {
		if m.canonical == found || !m.re.MatchString(text) {
			continue
		}
		if found != "" {
			return "", false
		}
		found = m.canonical
	}
	return found, found != ""
}

// DetectApplianceType finds the first canonical type whose alias phrase
// appears in text as a whole word, case-insensitively.
func DetectApplianceType(text string) (string, bool) {
	for _, m := range phraseMatchers {
		if m.re.MatchString(text) {
			return m.canonical, true
		}
	}
	return "", false
}

func snakeCase(s string) string {
	s = punctuationRe.ReplaceAllString(s, "")
	s = separatorRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// normKey lower-cases s and replaces every non-word character with "_",
// so "water heater" and "water_heater" compare equal.
func normKey(s string) string {
	return nonWordRe.ReplaceAllString(strings.ToLower(s), "_")
}

// PrettyType renders a canonical key for display: "water_heater" -> "Water Heater".
func PrettyType(t string) string {
	words := strings.Split(t, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
