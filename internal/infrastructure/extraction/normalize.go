package extraction

import (
	"regexp"
	"strings"
)

var (
	// Punctuation that does not change what was eaten
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}\s./%]+`)

	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// fillerWords carry no nutritional meaning in a meal description
var fillerWords = map[string]bool{
	"i":     true,
	"had":   true,
	"ate":   true,
	"just":  true,
	"some":  true,
	"um":    true,
	"uh":    true,
	"like":  true,
	"today": true,
	"for":   true,
	"my":    true,
}

// NormalizeText reduces a meal description to a canonical form for cache
// keys, so "I had 2 eggs, toast!" and "2 eggs toast" share an entry.
// Quantities and units are kept and the text is never shortened.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	cleaned := strings.ToLower(text)
	cleaned = punctuationPattern.ReplaceAllString(cleaned, " ")

	words := strings.Fields(cleaned)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.Trim(word, ".")
		if word == "" || fillerWords[word] {
			continue
		}
		kept = append(kept, word)
	}

	cleaned = strings.Join(kept, " ")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
