/*
Package suggest builds completion indexes from document tokens and answers
prefix queries against them.

An Index is immutable. A Builder consumes a token sequence, collapses it into
a set, drops short words, sorts what is left with locale-aware
case-insensitive collation and turns each word into an Entry:

	"fish" -> Entry{ID: "0b6c…", Label: "Fish", Symbol: "f.square", InsertText: "fish"}

Queries walk a patricia trie keyed by InsertText and return hits in index
order, so callers can rely on the collation order for listing.

	idx, ok := suggest.NewBuilder(suggest.DefaultOptions()).Build(ctx, tokens)
	if ok {
		entries := idx.Complete("fi")
	}

Build reports ok=false when its context is cancelled; that is a normal
outcome, not an error, and no partial index is ever returned.
*/
package suggest
