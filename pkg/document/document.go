/*
Package document holds the text a completion session works on.

A Document is the stand-in for the host's text view: it stores the current
text, applies range replacements, and tells subscribers about every change
together with the full text after the change. Offsets are byte offsets into
the UTF-8 text and must fall on rune boundaries.
*/
package document

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bastiangx/docwords/pkg/tokenize"
	"github.com/cockroachdb/errors"
)

// ErrInvalidRange is returned for ranges outside the text or splitting a rune.
var ErrInvalidRange = errors.New("invalid range")

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int {
	return r.End - r.Start
}

// Change describes one edit: the replaced range in the old text and the text
// that replaced it.
type Change struct {
	Range   Range
	NewText string
	Version uint64
}

// Listener receives a change and the full text after it.
type Listener func(change Change, text string)

// Document is a text buffer safe for concurrent use.
type Document struct {
	mu      sync.RWMutex
	text    string
	version uint64

	// notifyMu keeps listeners seeing changes in the order they were applied
	notifyMu  sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// New creates a document holding text.
func New(text string) *Document {
	return &Document{
		text:      text,
		listeners: make(map[int]Listener),
	}
}

// Text returns the current text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Len returns the length of the text in bytes.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.text)
}

// Version counts applied changes.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Subscribe registers l for every future change. Listeners must not modify
// the document. The returned func removes the listener.
func (d *Document) Subscribe(l Listener) (unsubscribe func()) {
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()

	id := d.nextID
	d.nextID++
	d.listeners[id] = l

	return func() {
		d.notifyMu.Lock()
		defer d.notifyMu.Unlock()
		delete(d.listeners, id)
	}
}

// Replace swaps the bytes in r for newText.
func (d *Document) Replace(r Range, newText string) (Change, error) {
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()

	d.mu.Lock()
	if err := validate(d.text, r); err != nil {
		d.mu.Unlock()
		return Change{}, err
	}
	change, text := d.applyLocked(r, newText)
	d.mu.Unlock()

	d.notify(change, text)
	return change, nil
}

// ReplaceWordBefore swaps the partial word ending at cursor for newText, or
// inserts newText at cursor when no word precedes it. The word is located on
// the same text the edit applies to, so concurrent edits cannot shift it.
func (d *Document) ReplaceWordBefore(cursor int, newText string) Change {
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()

	d.mu.Lock()
	cursor = tokenize.ClampOffset(d.text, cursor)
	start := cursor
	if fragment, ok := tokenize.FragmentBefore(d.text, cursor); ok {
		start = cursor - len(fragment)
	}
	change, text := d.applyLocked(Range{Start: start, End: cursor}, newText)
	d.mu.Unlock()

	d.notify(change, text)
	return change
}

// Insert places text at offset at.
func (d *Document) Insert(at int, text string) (Change, error) {
	return d.Replace(Range{Start: at, End: at}, text)
}

// SetText replaces the whole document.
func (d *Document) SetText(text string) Change {
	d.notifyMu.Lock()
	defer d.notifyMu.Unlock()

	d.mu.Lock()
	change, after := d.applyLocked(Range{Start: 0, End: len(d.text)}, text)
	d.mu.Unlock()

	d.notify(change, after)
	return change
}

// applyLocked performs a validated edit. d.mu must be held.
func (d *Document) applyLocked(r Range, newText string) (Change, string) {
	var sb strings.Builder
	sb.Grow(len(d.text) - r.Len() + len(newText))
	sb.WriteString(d.text[:r.Start])
	sb.WriteString(newText)
	sb.WriteString(d.text[r.End:])
	d.text = sb.String()
	d.version++
	return Change{Range: r, NewText: newText, Version: d.version}, d.text
}

// WordBefore returns the partial word ending at loc.
func (d *Document) WordBefore(loc int) (string, bool) {
	return tokenize.FragmentBefore(d.Text(), loc)
}

func (d *Document) notify(change Change, text string) {
	for _, l := range d.listeners {
		l(change, text)
	}
}

func validate(text string, r Range) error {
	if r.Start < 0 || r.End < r.Start || r.End > len(text) {
		return errors.Wrapf(ErrInvalidRange, "[%d,%d) in text of length %d", r.Start, r.End, len(text))
	}
	if !onBoundary(text, r.Start) || !onBoundary(text, r.End) {
		return errors.WithHint(
			errors.Wrapf(ErrInvalidRange, "[%d,%d) splits a character", r.Start, r.End),
			"offsets are UTF-8 byte offsets",
		)
	}
	return nil
}

func onBoundary(text string, off int) bool {
	return off == len(text) || utf8.RuneStart(text[off])
}
