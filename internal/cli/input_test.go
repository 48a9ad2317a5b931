package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/docwords/pkg/config"
	"github.com/bastiangx/docwords/pkg/session"
)

func runCLI(t *testing.T, input string) (*session.Session, string) {
	t.Helper()
	cfg := config.DefaultConfig()
	sess := session.New(cfg, "")
	t.Cleanup(sess.Close)

	var out bytes.Buffer
	h := NewInputHandler(sess, cfg.CLI, strings.NewReader(input), &out)
	if err := h.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sess, out.String()
}

func TestInputAppendsAndCompletes(t *testing.T) {
	sess, out := runCLI(t, "the doorway is open\nwalk through the do\n")

	if got := sess.Document().Text(); got != "the doorway is open\nwalk through the do" {
		t.Errorf("got document %q", got)
	}
	for _, want := range []string{"Found 1 entries for 'open'", "Found 1 entries for 'do'", "Doorway", "d.square"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestInputAccept(t *testing.T) {
	sess, out := runCLI(t, "the doorway is open\nwalk through the do\n:accept 1\n:text")

	if got := sess.Document().Text(); got != "the doorway is open\nwalk through the doorway" {
		t.Errorf("got document %q", got)
	}
	if !strings.Contains(out, `"the doorway is open\nwalk through the doorway"`) {
		t.Errorf(":text output missing:\n%s", out)
	}
}

func TestInputCommands(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expected    string
	}{
		{"Stats", "alpha beta\n:stats\n", "activeEntries"},
		{"Clear", "alpha beta\n:clear\n", "document cleared"},
		{"Unknown", ":reload\n", "Unknown command: reload"},
		{"Accept without menu", ":accept 1\n", "No entry 1 in the last menu"},
		{"Accept usage", ":accept\n", "usage: :accept N"},
		{"Trailing space", "alpha \n", "no word before the cursor"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, out := runCLI(t, tc.input)
			if !strings.Contains(out, tc.expected) {
				t.Errorf("output is missing %q:\n%s", tc.expected, out)
			}
		})
	}
}

func TestFormatWithCommas(t *testing.T) {
	testCases := []struct {
		in       int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}

	for _, tc := range testCases {
		if got := formatWithCommas(tc.in); got != tc.expected {
			t.Errorf("formatWithCommas(%d) = %q, expected %q", tc.in, got, tc.expected)
		}
	}
}
