package search

import "strings"

// Stop words ignored when matching question terms against passages
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "what": true, "how": true, "did": true, "does": true,
	"were": true, "their": true, "its": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}$%"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// MatchedTerms returns the question terms, after stop-word filtering, that
// appear in document, in question order without repeats.
func MatchedTerms(document, question string) []string {
	docWords := make(map[string]bool)
	for _, word := range tokenizeAndFilter(document) {
		docWords[word] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, q := range tokenizeAndFilter(question) {
		if docWords[q] && !seen[q] {
			matched = append(matched, q)
			seen[q] = true
		}
	}
	return matched
}

// Snippet shortens content to at most maxRunes characters, starting at
// the first question term found in it when that term lies beyond the cut.
func Snippet(content, question string, maxRunes int) string {
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}

	start := 0
	lower := strings.ToLower(content)
	for _, term := range MatchedTerms(content, question) {
		if i := strings.Index(lower, term); i >= 0 {
			start = len([]rune(content[:i]))
			break
		}
	}
	if start+maxRunes > len(runes) {
		start = max(0, len(runes)-maxRunes)
	}

	snippet := string(runes[start : start+maxRunes])
	if start > 0 {
		snippet = "..." + snippet
	}
	if start+maxRunes < len(runes) {
		snippet += "..."
	}
	return snippet
}
