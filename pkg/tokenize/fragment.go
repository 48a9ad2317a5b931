package tokenize

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// FragmentBefore returns the partial word that ends exactly at the byte
// offset cursor. Only the line holding the cursor is segmented.
//
// ok is false when the cursor sits at the start of the text, right after
// whitespace or punctuation, or right after a number.
func FragmentBefore(text string, cursor int) (fragment string, ok bool) {
	cursor = ClampOffset(text, cursor)
	if cursor == 0 {
		return "", false
	}

	head := text[:cursor]
	line := head[strings.LastIndexByte(head, '\n')+1:]

	var last, word string
	state := -1
	for len(line) > 0 {
		word, line, state = uniseg.FirstWordInString(line, state)
		last = word
	}

	if !IsWord(last) || IsNumeric(last) {
		return "", false
	}
	return last, true
}

// ClampOffset limits off to [0, len(text)] and moves it back onto the start
// of a rune.
func ClampOffset(text string, off int) int {
	if off <= 0 {
		return 0
	}
	if off >= len(text) {
		return len(text)
	}
	for off > 0 && !utf8.RuneStart(text[off]) {
		off--
	}
	return off
}
