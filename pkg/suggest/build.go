package suggest

import (
	"context"
	"iter"
	"slices"
	"strings"

	"github.com/bastiangx/docwords/pkg/tokenize"
	"github.com/charmbracelet/log"
	"github.com/rivo/uniseg"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// DefaultMinWordLen drops words of two characters or fewer.
	DefaultMinWordLen = 3
	// DefaultLocale drives collation and capitalization.
	DefaultLocale = "en"
)

// Options tune how a Builder filters and presents words.
type Options struct {
	// MinWordLen is the minimum number of user-perceived characters a word
	// needs to be offered.
	MinWordLen int
	// Locale is a BCP 47 tag such as "en" or "de-CH".
	Locale string
}

// DefaultOptions returns the builder defaults.
func DefaultOptions() Options {
	return Options{
		MinWordLen: DefaultMinWordLen,
		Locale:     DefaultLocale,
	}
}

// Builder turns token sequences into indexes. A Builder holds no per-build
// state and can be shared across goroutines.
type Builder struct {
	minLen int
	tag    language.Tag

	// mapped runs after the entries are built, before the final ctx check
	mapped func()
}

// NewBuilder validates opts and falls back to defaults for anything unusable.
func NewBuilder(opts Options) *Builder {
	minLen := opts.MinWordLen
	if minLen < 1 {
		minLen = DefaultMinWordLen
	}

	tag := language.English
	if opts.Locale != "" {
		parsed, err := language.Parse(opts.Locale)
		if err != nil {
			log.Warnf("Unknown locale %q: %v. Falling back to %s", opts.Locale, err, tag)
		} else {
			tag = parsed
		}
	}

	return &Builder{minLen: minLen, tag: tag}
}

// Locale returns the language tag used for collation and labels.
func (b *Builder) Locale() language.Tag {
	return b.tag
}

// Build drains tokens into a new index. It returns ok=false, and no index,
// if ctx is cancelled before the index is complete.
func (b *Builder) Build(ctx context.Context, tokens iter.Seq[tokenize.Token]) (idx *Index, ok bool) {
	seen := make(map[string]struct{})
	for tok := range tokens {
		if ctx.Err() != nil {
			return nil, false
		}
		seen[string(tok)] = struct{}{}
	}
	if ctx.Err() != nil {
		return nil, false
	}

	words := make([]string, 0, len(seen))
	for w := range seen {
		if uniseg.GraphemeClusterCount(w) >= b.minLen {
			words = append(words, w)
		}
	}
	b.sort(words)

	caser := cases.Title(b.tag)
	entries := make([]Entry, len(words))
	for i, w := range words {
		entries[i] = NewEntry(w, caser)
	}
	idx = NewIndex(entries)
	if b.mapped != nil {
		b.mapped()
	}

	// a cancellation that lands while sorting still suppresses the result
	if ctx.Err() != nil {
		return nil, false
	}
	return idx, true
}

// Compare orders two words the way Build sorts them.
func (b *Builder) Compare(x, y string) int {
	return compareWith(collate.New(b.tag, collate.IgnoreCase), x, y)
}

func (b *Builder) sort(words []string) {
	col := collate.New(b.tag, collate.IgnoreCase)
	slices.SortFunc(words, func(x, y string) int {
		return compareWith(col, x, y)
	})
}

func compareWith(col *collate.Collator, x, y string) int {
	if c := col.CompareString(x, y); c != 0 {
		return c
	}
	return strings.Compare(x, y)
}
