// Package tokenizer provides text tokenisation for the task search engine.
// It lower-cases input and extracts maximal runs of either CJK ideographs or
// Latin letters/digits. Latin runs are emitted as whole terms while CJK runs
// are split into one term per ideograph: CJK text carries no word-boundary
// whitespace, so character-level segmentation gives usable recall without a
// dictionary. Punctuation, symbols, and whitespace are discarded.
package tokenizer

import (
	"strings"
)

// cjk reports whether r falls in the CJK Unified Ideographs block.
func cjk(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

func latinOrDigit(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// Tokenize breaks text into an ordered slice of lowercased terms. It is pure
// and deterministic; empty or whitespace-only input yields an empty slice.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ToLower(text)

	terms := make([]string, 0, len(text)/4)
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			terms = append(terms, run.String())
			run.Reset()
		}
	}
	for _, r := range text {
		switch {
		case cjk(r):
			// One term per ideograph.
			flush()
			terms = append(terms, string(r))
		case latinOrDigit(r):
			run.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return terms
}
