package services

import (
	"regexp"
	"strings"
)

// Some model families emit their chain of thought between explicit
// delimiters before the actual answer. The filters below are harmless
// no-ops when the configured model never does that.
var reasoningPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<think>.*?</think>`),
	regexp.MustCompile(`(?is)<reasoning>.*?</reasoning>`),
}

// stripReasoningMarkup removes side-channel reasoning blocks from a
// completion.
func stripReasoningMarkup(text string) string {
	for _, pattern := range reasoningPatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// stripEnclosingQuotes removes a single pair of matching quote characters
// wrapped around the whole text.
func stripEnclosingQuotes(text string) string {
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if first == last && (first == '\'' || first == '"') {
			return text[1 : len(text)-1]
		}
	}
	return text
}

// collapseWhitespace folds runs of whitespace and newlines into single
// spaces.
func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
