package suggest

import (
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

const (
	// SquareSuffix is appended to the first letter of a word to form its symbol.
	SquareSuffix = ".square"
	// NoteSymbol is used for words that do not start with an ASCII letter.
	NoteSymbol = "note.text"
)

// Entry is one completion candidate.
type Entry struct {
	ID         string
	Label      string
	Symbol     string
	InsertText string
}

// NewEntry creates an entry for a lowercase word with a fresh id.
func NewEntry(word string, caser cases.Caser) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Label:      caser.String(word),
		Symbol:     SymbolFor(word),
		InsertText: word,
	}
}

// SymbolFor derives the icon name shown next to word.
func SymbolFor(word string) string {
	r, _ := utf8.DecodeRuneInString(word)
	if r < utf8.RuneSelf && unicode.IsLetter(r) {
		return string(unicode.ToLower(r)) + SquareSuffix
	}
	return NoteSymbol
}
