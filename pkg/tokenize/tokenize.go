/*
Package tokenize turns document text into lowercase word tokens.

Segmentation follows the Unicode word boundary rules (UAX #29) as implemented
by github.com/rivo/uniseg. Segments that carry no letter or digit (spaces,
punctuation) and segments that are purely numeric are dropped; everything else
is lowercased and yielded one at a time.

The sequence returned by Words is lazy: nothing is scanned until the caller
ranges over it, and scanning stops as soon as the caller stops, the token cap
is reached, or the context is done.

	for tok := range tokenize.Words(ctx, text, 512) {
		set[tok] = struct{}{}
	}
*/
package tokenize

import (
	"context"
	"iter"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// DefaultMaxTokens is the token cap used when none is configured.
const DefaultMaxTokens = 512

// Token is a lowercase word extracted from document text.
type Token string

// Func produces a token sequence for text. Words is the default; the refresh
// controller accepts any Func so hosts can plug in their own segmenter.
type Func func(ctx context.Context, text string, maxCount int) iter.Seq[Token]

// Words returns the word tokens of text, lowercased, skipping numeric words.
// At most maxCount tokens are produced; maxCount <= 0 means no cap.
// ctx is checked before every segment, so a cancelled consumer never forces a
// full scan of the document.
//
// UAX #29 has no dictionary for scripts written without spaces: Han and
// Hiragana text comes out one character per token, so "日本語" yields three
// single-character tokens and a minimum word length above one drops them all.
// Hosts that need those scripts should pass their own Func to the controller.
func Words(ctx context.Context, text string, maxCount int) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		count := 0
		state := -1
		rest := text
		var word string
		for len(rest) > 0 {
			if maxCount > 0 && count >= maxCount {
				return
			}
			if ctx.Err() != nil {
				return
			}
			word, rest, state = uniseg.FirstWordInString(rest, state)
			if !IsWord(word) || IsNumeric(word) {
				continue
			}
			if !yield(Token(strings.ToLower(word))) {
				return
			}
			count++
		}
	}
}

// Collect drains seq into a slice.
func Collect(seq iter.Seq[Token]) []Token {
	var out []Token
	for tok := range seq {
		out = append(out, tok)
	}
	return out
}

// IsWord reports whether a segment carries at least one letter or digit.
func IsWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// IsNumeric reports whether s is a number such as "2024", "3.14" or "1,000".
// Separators alone do not count as numeric.
func IsNumeric(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsNumber(r):
			digits++
		case isNumericSeparator(r):
		default:
			return false
		}
	}
	return digits > 0
}

func isNumericSeparator(r rune) bool {
	return r == '.' || r == ',' || r == '\'' || r == '_' || r == '’'
}
