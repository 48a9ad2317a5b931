package suggest

import (
	"slices"
	"strings"

	"github.com/bastiangx/docwords/pkg/tokenize"
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Index is an ordered, immutable set of completion entries.
// It is safe for concurrent readers.
type Index struct {
	entries []Entry
	trie    *patricia.Trie
	ids     map[string]int
}

var emptyIndex = &Index{
	trie: patricia.NewTrie(),
	ids:  map[string]int{},
}

// EmptyIndex returns the shared index with no entries.
func EmptyIndex() *Index {
	return emptyIndex
}

// NewIndex wraps entries, keeping their order. InsertText values are
// expected to be unique; for duplicates only the first entry is reachable
// through prefix queries.
func NewIndex(entries []Entry) *Index {
	if len(entries) == 0 {
		return emptyIndex
	}

	idx := &Index{
		entries: entries,
		trie:    patricia.NewTrie(),
		ids:     make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		idx.trie.Insert(patricia.Prefix(strings.ToLower(e.InsertText)), i)
		idx.ids[e.ID] = i
	}
	return idx
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns a copy of the entries in index order.
func (idx *Index) Entries() []Entry {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.entries)
}

// Complete returns every entry whose InsertText starts with fragment,
// compared case-insensitively, in index order. An empty fragment matches
// nothing.
func (idx *Index) Complete(fragment string) []Entry {
	if idx.Len() == 0 || fragment == "" {
		return nil
	}

	var hits []int
	err := idx.trie.VisitSubtree(patricia.Prefix(strings.ToLower(fragment)), func(_ patricia.Prefix, item patricia.Item) error {
		hits = append(hits, item.(int))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting index subtree: %v", err)
		return nil
	}

	slices.Sort(hits)
	out := make([]Entry, 0, len(hits))
	for _, i := range hits {
		out = append(out, idx.entries[i])
	}
	return out
}

// Lookup finds an entry by id.
func (idx *Index) Lookup(id string) (Entry, bool) {
	if idx == nil {
		return Entry{}, false
	}
	i, ok := idx.ids[id]
	if !ok {
		return Entry{}, false
	}
	return idx.entries[i], true
}

// Contains reports whether e is one of this index's entries.
func (idx *Index) Contains(e Entry) bool {
	got, ok := idx.Lookup(e.ID)
	return ok && got == e
}

// Stats returns basic counters about the index.
func (idx *Index) Stats() map[string]int {
	symbols := make(map[string]struct{})
	for _, e := range idx.Entries() {
		symbols[e.Symbol] = struct{}{}
	}
	return map[string]int{
		"entries": idx.Len(),
		"symbols": len(symbols),
	}
}

// CompletionsAt finds the fragment ending at cursor in text and returns the
// matching entries. ok is false when no fragment precedes the cursor, in
// which case no completion menu should be shown.
func CompletionsAt(idx *Index, text string, cursor int) (entries []Entry, ok bool) {
	fragment, ok := tokenize.FragmentBefore(text, cursor)
	if !ok {
		return nil, false
	}
	return idx.Complete(fragment), true
}
