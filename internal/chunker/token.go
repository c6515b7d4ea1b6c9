package chunker

import "strings"

// EstimateTokens gives a rough token count from the word count, at about
// four tokens for every three words. Blank text counts as zero.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	return max(1, words*4/3)
}
