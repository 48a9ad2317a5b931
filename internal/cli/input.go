// Package cli handles cmd line input for debugging completions against a live document
package cli

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/docwords/internal/logger"
	"github.com/bastiangx/docwords/pkg/config"
	"github.com/bastiangx/docwords/pkg/session"
	"github.com/bastiangx/docwords/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
)

// InputHandler reads lines, appends them to the session's document and
// prints the completions for the word at the end of the text.
//
// Lines starting with ':' are commands:
//
//	:text       print the document
//	:stats      print controller and document counters
//	:clear      empty the document
//	:accept N   accept the Nth entry of the last menu
type InputHandler struct {
	sess   *session.Session
	prompt string
	in     io.Reader
	out    *log.Logger

	// menu shown for the last line
	last         []suggest.Entry
	requestCount int
}

// NewInputHandler creates a handler reading from r and printing to w.
func NewInputHandler(sess *session.Session, cfg config.CliConfig, r io.Reader, w io.Writer) *InputHandler {
	return &InputHandler{
		sess:   sess,
		prompt: cfg.Prompt,
		in:     r,
		out:    logger.NewWithWriter(w, ""),
	}
}

// Start begins the interface loop and returns nil when the input ends.
func (h *InputHandler) Start() error {
	h.out.Print("docwords CLI [DBG]")
	h.out.Print("type some text and press Enter, completions come from your own words (:text :stats :clear :accept N)")
	reader := bufio.NewReader(h.in)

	for {
		h.out.Print(h.prompt)
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" {
			h.handleInput(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(line string) {
	h.requestCount++
	if cmd, ok := strings.CutPrefix(line, ":"); ok {
		h.handleCommand(strings.Fields(cmd))
		return
	}

	text := line
	if h.sess.Document().Len() > 0 {
		text = "\n" + line
	}
	end := h.sess.Document().Len()
	if _, err := h.sess.Document().Insert(end, text); err != nil {
		h.out.Errorf("Append failed: %v", err)
		return
	}

	start := time.Now()
	h.sess.Controller().Wait()
	entries, ok := h.sess.Complete(h.sess.Document().Len())
	log.Debugf("Took [ %v ] to index and complete", time.Since(start))

	h.last = entries
	if !ok {
		h.out.Print("no word before the cursor")
		return
	}
	fragment, _ := h.sess.Document().WordBefore(h.sess.Document().Len())
	h.printEntries(fragment, entries)
}

func (h *InputHandler) handleCommand(args []string) {
	if len(args) == 0 {
		h.out.Warn("Empty command")
		return
	}

	switch args[0] {
	case "text":
		h.out.Printf("%q", h.sess.Document().Text())
	case "stats":
		h.printStats(h.sess.Stats())
	case "clear":
		h.sess.SetText("")
		h.sess.Controller().Wait()
		h.last = nil
		h.out.Print("document cleared")
	case "accept":
		h.accept(args[1:])
	default:
		h.out.Warnf("Unknown command: %s", args[0])
	}
}

func (h *InputHandler) accept(args []string) {
	if len(args) != 1 {
		h.out.Error("usage: :accept N")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(h.last) {
		h.out.Errorf("No entry %s in the last menu (%d entries)", args[0], len(h.last))
		return
	}

	cursor, err := h.sess.Accept(h.last[n-1], h.sess.Document().Len())
	if err != nil {
		h.out.Errorf("Accept failed: %v", err)
		return
	}
	h.sess.Controller().Wait()
	h.last = nil
	h.out.Printf("accepted %s, cursor at %d", highlight(h.sess.Document().Text()), cursor)
}
