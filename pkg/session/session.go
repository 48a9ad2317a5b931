/*
Package session wires a document to a refresh controller.

A Session is what a host text view talks to: it forwards every document
change to the controller, answers completion queries at a cursor and applies
accepted completions back to the document.
*/
package session

import (
	"sync/atomic"

	"github.com/bastiangx/docwords/internal/logger"
	"github.com/bastiangx/docwords/pkg/config"
	"github.com/bastiangx/docwords/pkg/document"
	"github.com/bastiangx/docwords/pkg/refresh"
	"github.com/bastiangx/docwords/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// ErrForeignEntry is returned when an accepted entry did not come from the
// index that served the completion menu.
var ErrForeignEntry = errors.New("completion entry does not belong to the active index")

// ErrClosed is returned when accepting an entry after Close.
var ErrClosed = errors.New("session is closed")

// Session is safe for concurrent use.
type Session struct {
	doc         *document.Document
	ctrl        *refresh.Controller
	cfg         config.CompletionConfig
	log         *log.Logger
	unsubscribe func()

	// served is the index behind the most recent completion menu
	served atomic.Pointer[suggest.Index]
}

// New creates a session over initial text and starts the first build.
func New(cfg *config.Config, initial string) *Session {
	opts := cfg.RefreshOptions()
	opts.Logger = logger.New("refresh")

	s := &Session{
		doc:  document.New(initial),
		ctrl: refresh.New(suggest.NewBuilder(cfg.BuilderOptions()), opts),
		cfg:  cfg.Completion,
		log:  logger.New("session"),
	}
	s.ctrl.OnPublish(func(idx *suggest.Index) {
		s.log.Debug("Index published", "entries", idx.Len(), "documentVersion", s.doc.Version())
	})
	s.unsubscribe = s.doc.Subscribe(func(_ document.Change, text string) {
		s.ctrl.TextChanged(text)
	})
	s.ctrl.TextChanged(initial)
	return s
}

// Document returns the session's document.
func (s *Session) Document() *document.Document {
	return s.doc
}

// Controller returns the session's refresh controller.
func (s *Session) Controller() *refresh.Controller {
	return s.ctrl
}

// SetText replaces the whole document.
func (s *Session) SetText(text string) document.Change {
	return s.doc.SetText(text)
}

// Edit replaces the bytes in r with text.
func (s *Session) Edit(r document.Range, text string) (document.Change, error) {
	return s.doc.Replace(r, text)
}

// Complete returns the entries matching the word that ends at cursor.
// ok is false when there is no word before the cursor and no menu should be
// shown.
func (s *Session) Complete(cursor int) (entries []suggest.Entry, ok bool) {
	idx := s.ctrl.Index()
	entries, ok = suggest.CompletionsAt(idx, s.doc.Text(), cursor)
	if !ok {
		return nil, false
	}
	s.served.Store(idx)

	if limit := s.cfg.MaxResults; limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, true
}

// Lookup finds an entry by id in the served or the active index.
func (s *Session) Lookup(id string) (suggest.Entry, bool) {
	if idx := s.served.Load(); idx != nil {
		if e, ok := idx.Lookup(id); ok {
			return e, true
		}
	}
	return s.ctrl.Index().Lookup(id)
}

// Accept inserts entry.InsertText at cursor, replacing the partial word the
// user typed before it, and returns the cursor after the inserted text.
//
// The entry must come from the index that served the last completion menu or
// from the active index. Anything else is a caller bug: strict sessions panic,
// others log it and return ErrForeignEntry without editing. A closed session
// accepts nothing and returns ErrClosed.
func (s *Session) Accept(entry suggest.Entry, cursor int) (int, error) {
	if s.ctrl.State() == refresh.Closed {
		return cursor, errors.Wrapf(ErrClosed, "accept entry %s", entry.ID)
	}
	if !s.owns(entry) {
		if s.cfg.Strict {
			panic(errors.AssertionFailedf("accepted entry %q (%s) is not in the active index", entry.InsertText, entry.ID))
		}
		s.log.Error("Ignoring foreign completion entry", "id", entry.ID, "text", entry.InsertText)
		return cursor, errors.Wrapf(ErrForeignEntry, "entry %s", entry.ID)
	}

	change := s.doc.ReplaceWordBefore(cursor, entry.InsertText)
	return change.Range.Start + len(entry.InsertText), nil
}

func (s *Session) owns(entry suggest.Entry) bool {
	if idx := s.served.Load(); idx != nil && idx.Contains(entry) {
		return true
	}
	return s.ctrl.Index().Contains(entry)
}

// Stats merges controller and document counters.
func (s *Session) Stats() map[string]int {
	stats := s.ctrl.Stats()
	stats["documentBytes"] = s.doc.Len()
	stats["documentVersion"] = int(s.doc.Version())
	return stats
}

// Close stops listening to the document and tears the controller down.
func (s *Session) Close() {
	s.unsubscribe()
	s.ctrl.Close()
	s.served.Store(nil)
}
