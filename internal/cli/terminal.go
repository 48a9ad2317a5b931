package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bastiangx/docwords/pkg/suggest"
	"golang.org/x/exp/maps"
)

func (h *InputHandler) printEntries(fragment string, entries []suggest.Entry) {
	if len(entries) == 0 {
		h.out.Warnf("No entries found for '%s'", fragment)
		return
	}

	h.out.Printf("Found %d entries for '%s':", len(entries), fragment)
	for i, e := range entries {
		h.out.Printf("%2d. %-40s (%s)", i+1, highlight(e.Label), e.Symbol)
	}
}

func (h *InputHandler) printStats(stats map[string]int) {
	keys := maps.Keys(stats)
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "\n  %-18s %s", k, formatWithCommas(stats[k]))
	}
	h.out.Print("stats:" + sb.String())
}

func highlight(s string) string {
	return fmt.Sprintf("\033[38;5;75m%s\033[0m", s)
}

// formatWithCommas formats an integer with comma separators
func formatWithCommas(n int) string {
	if n < 0 {
		return "-" + formatWithCommas(-n)
	}
	str := fmt.Sprintf("%d", n)
	if n < 1000 {
		return str
	}

	var sb strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(char)
	}
	return sb.String()
}
