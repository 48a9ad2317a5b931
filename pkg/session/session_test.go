package session

import (
	"errors"
	"slices"
	"testing"

	"github.com/bastiangx/docwords/pkg/config"
	"github.com/bastiangx/docwords/pkg/document"
	"github.com/bastiangx/docwords/pkg/suggest"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func newSession(t *testing.T, text string, mutate func(*config.Config)) *Session {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	s := New(cfg, text)
	t.Cleanup(s.Close)
	s.Controller().Wait()
	return s
}

func labels(entries []suggest.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

func TestInitialBuild(t *testing.T) {
	s := newSession(t, "typing here", nil)

	if got := labels(s.Controller().Index().Entries()); !slices.Equal(got, []string{"Here", "Typing"}) {
		t.Errorf("got %v", got)
	}
}

func TestCompleteFollowsEdits(t *testing.T) {
	s := newSession(t, "dog door cat\n", nil)

	if _, err := s.Edit(document.Range{Start: s.Document().Len(), End: s.Document().Len()}, "I like do"); err != nil {
		t.Fatalf("edit failed: %v", err)
	}
	s.Controller().Wait()

	entries, ok := s.Complete(s.Document().Len())
	if !ok {
		t.Fatal("expected completions")
	}
	if got := labels(entries); !slices.Equal(got, []string{"Dog", "Door"}) {
		t.Errorf("got %v", got)
	}
}

func TestCompleteNoFragment(t *testing.T) {
	s := newSession(t, "dog door ", nil)

	if entries, ok := s.Complete(s.Document().Len()); ok || entries != nil {
		t.Errorf("expected no menu after whitespace, got (%v, %v)", entries, ok)
	}
	if entries, ok := s.Complete(0); ok || entries != nil {
		t.Errorf("expected no menu at document start, got (%v, %v)", entries, ok)
	}
}

func TestCompleteMaxResults(t *testing.T) {
	s := newSession(t, "alpha alpine altitude almond al", func(cfg *config.Config) {
		cfg.Completion.MaxResults = 2
	})

	entries, ok := s.Complete(s.Document().Len())
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got (%v, %v)", labels(entries), ok)
	}
	if got := labels(entries); !slices.Equal(got, []string{"Almond", "Alpha"}) {
		t.Errorf("got %v", got)
	}
}

func TestAcceptReplacesFragment(t *testing.T) {
	s := newSession(t, "the doorway is open\nwalk through the do", nil)
	end := s.Document().Len()

	entries, ok := s.Complete(end)
	if !ok || len(entries) != 1 {
		t.Fatalf("expected a single entry, got (%v, %v)", labels(entries), ok)
	}

	cursor, err := s.Accept(entries[0], end)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	want := "the doorway is open\nwalk through the doorway"
	if got := s.Document().Text(); got != want {
		t.Errorf("got %q, expected %q", got, want)
	}
	if cursor != len(want) {
		t.Errorf("cursor = %d, expected %d", cursor, len(want))
	}
}

func TestAcceptWithoutFragmentInserts(t *testing.T) {
	s := newSession(t, "kettle ", nil)
	entry := s.Controller().Index().Entries()[0]

	cursor, err := s.Accept(entry, s.Document().Len())
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if got := s.Document().Text(); got != "kettle kettle" {
		t.Errorf("got %q", got)
	}
	if cursor != len("kettle kettle") {
		t.Errorf("cursor = %d", cursor)
	}
}

func TestAcceptServedIndexAfterRebuild(t *testing.T) {
	s := newSession(t, "window wind", nil)

	entries, ok := s.Complete(s.Document().Len())
	if !ok || len(entries) == 0 {
		t.Fatalf("expected entries, got (%v, %v)", entries, ok)
	}

	// a rebuild replaces every id, the menu entry still comes from the served index
	s.SetText("window wind")
	s.Controller().Wait()
	if s.Controller().Index().Contains(entries[0]) {
		t.Fatal("rebuild should have produced fresh ids")
	}

	if _, err := s.Accept(entries[0], s.Document().Len()); err != nil {
		t.Errorf("accept of served entry failed: %v", err)
	}
	if got, ok := s.Lookup(entries[0].ID); !ok || got != entries[0] {
		t.Errorf("Lookup(%s) = (%v, %v)", entries[0].ID, got, ok)
	}
}

func TestAcceptForeignEntry(t *testing.T) {
	s := newSession(t, "window wind", nil)
	foreign := suggest.Entry{ID: "not-an-id", Label: "Wind", Symbol: "w.square", InsertText: "wind"}

	cursor, err := s.Accept(foreign, 3)
	if !errors.Is(err, ErrForeignEntry) {
		t.Errorf("expected ErrForeignEntry, got %v", err)
	}
	if cursor != 3 || s.Document().Text() != "window wind" {
		t.Errorf("foreign accept modified the document: %q at %d", s.Document().Text(), cursor)
	}
}

func TestAcceptForeignEntryStrict(t *testing.T) {
	s := newSession(t, "window wind", func(cfg *config.Config) {
		cfg.Completion.Strict = true
	})

	defer func() {
		if recover() == nil {
			t.Errorf("strict session should panic on foreign entry")
		}
	}()
	s.Accept(suggest.Entry{ID: "nope", InsertText: "wind"}, 0)
}

func TestCloseStopsUpdates(t *testing.T) {
	s := newSession(t, "window wind", nil)
	s.Close()

	s.SetText("other words entirely")
	s.Controller().Wait()

	if s.Controller().Index().Len() != 0 {
		t.Errorf("closed session should have an empty index")
	}
	if stats := s.Stats(); stats["buildsPublished"] != 1 {
		t.Errorf("unexpected stats %v", stats)
	}
}

func TestAcceptAfterClose(t *testing.T) {
	for _, strict := range []bool{false, true} {
		s := newSession(t, "doorway do", func(cfg *config.Config) {
			cfg.Completion.Strict = strict
		})

		entries, ok := s.Complete(s.Document().Len())
		if !ok || len(entries) != 1 {
			t.Fatalf("expected a single entry, got (%v, %v)", labels(entries), ok)
		}
		s.Close()

		cursor, err := s.Accept(entries[0], s.Document().Len())
		if !errors.Is(err, ErrClosed) {
			t.Errorf("strict=%v: expected ErrClosed, got %v", strict, err)
		}
		if got := s.Document().Text(); got != "doorway do" || cursor != len("doorway do") {
			t.Errorf("strict=%v: closed session edited the document: %q at %d", strict, got, cursor)
		}
		if _, ok := s.Lookup(entries[0].ID); ok {
			t.Errorf("strict=%v: closed session still resolves served entries", strict)
		}
	}
}
