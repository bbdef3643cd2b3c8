package openai

import "strings"

// CountTokens approximates a token count by splitting text on the single
// space character and counting the segments. An empty string counts as one
// segment and consecutive spaces yield empty segments that are counted too.
func CountTokens(text string) int {
	return len(strings.Split(text, " "))
}

// SumTokens returns the total CountTokens over texts.
func SumTokens(texts []string) int {
	total := 0
	for _, t := range texts {
		total += CountTokens(t)
	}
	return total
}
