package server

import (
	"bufio"
	"io"
	"time"

	"github.com/bastiangx/docwords/internal/logger"
	"github.com/bastiangx/docwords/pkg/config"
	"github.com/bastiangx/docwords/pkg/document"
	"github.com/bastiangx/docwords/pkg/session"
	"github.com/bastiangx/docwords/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// maxDecodeErrors is how many malformed messages in a row end the loop.
const maxDecodeErrors = 8

// Server handles msgpack IPC for one session.
type Server struct {
	sess   *session.Session
	config *config.Config
	dec    *msgpack.Decoder
	out    *bufio.Writer
	enc    *msgpack.Encoder
	log    *log.Logger

	requestCount int
}

// NewServer creates a server reading requests from r and writing responses to w.
func NewServer(sess *session.Session, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	out := bufio.NewWriter(w)
	return &Server{
		sess:   sess,
		config: cfg,
		dec:    msgpack.NewDecoder(bufio.NewReader(r)),
		out:    out,
		enc:    msgpack.NewEncoder(out),
		log:    logger.New("ipc"),
	}
}

// Start sends the ready status and serves requests until EOF.
func (s *Server) Start() error {
	s.log.Debug("Starting server",
		"maxResults", s.config.Completion.MaxResults,
		"strict", s.config.Completion.Strict)
	if err := s.send(Response{Status: StatusReady}); err != nil {
		return err
	}

	failures := 0
	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.log.Debug("Input closed", "requests", s.requestCount)
				return nil
			}
			failures++
			s.log.Errorf("Decoding request: %v", err)
			if failures >= maxDecodeErrors {
				return errors.Wrapf(err, "%d malformed requests in a row", failures)
			}
			if err := s.sendError("", "invalid msgpack request", 400); err != nil {
				return err
			}
			continue
		}
		failures = 0
		s.requestCount++

		if err := s.send(s.handle(req)); err != nil {
			return err
		}
	}
}

func (s *Server) handle(req Request) Response {
	start := time.Now()

	var resp Response
	switch req.Action {
	case ActionSetText:
		resp = s.handleSetText(req)
	case ActionEdit:
		resp = s.handleEdit(req)
	case ActionComplete:
		resp = s.handleComplete(req)
	case ActionAccept:
		resp = s.handleAccept(req)
	case ActionStats:
		resp = Response{Status: StatusOK, Stats: s.sess.Stats()}
	case ActionHealth:
		resp = Response{Status: StatusOK}
	case "":
		resp = errorResponse("missing 'action'", 400)
	default:
		resp = errorResponse("unknown action: "+req.Action, 400)
	}

	resp.ID = req.ID
	if resp.Status == StatusOK {
		resp.TimeTaken = time.Since(start).Microseconds()
	}
	return resp
}

func (s *Server) handleSetText(req Request) Response {
	change := s.sess.SetText(req.Text)
	if req.Wait {
		s.sess.Controller().Wait()
	}
	return Response{Status: StatusOK, Version: change.Version}
}

func (s *Server) handleEdit(req Request) Response {
	if req.Start == nil || req.End == nil {
		return errorResponse("edit needs 'start' and 'end'", 400)
	}
	change, err := s.sess.Edit(document.Range{Start: *req.Start, End: *req.End}, req.Text)
	if err != nil {
		s.log.Debug("Rejected edit", "err", err)
		return errorResponse(err.Error(), 400)
	}
	if req.Wait {
		s.sess.Controller().Wait()
	}
	return Response{Status: StatusOK, Version: change.Version}
}

func (s *Server) handleComplete(req Request) Response {
	cursor := s.cursor(req)
	entries, ok := s.sess.Complete(cursor)
	if !ok {
		return Response{Status: StatusOK}
	}
	fragment, _ := s.sess.Document().WordBefore(cursor)
	s.log.Debugf("Completed fragment '%s': %d entries", fragment, len(entries))

	return Response{
		Status:   StatusOK,
		Entries:  toMessages(entries),
		Count:    len(entries),
		Fragment: fragment,
	}
}

func (s *Server) handleAccept(req Request) Response {
	if req.EntryID == "" {
		return errorResponse("accept needs 'entry_id'", 400)
	}
	entry, ok := s.sess.Lookup(req.EntryID)
	if !ok {
		return errorResponse("unknown entry: "+req.EntryID, 404)
	}

	cursor, err := s.sess.Accept(entry, s.cursor(req))
	if err != nil {
		if errors.Is(err, session.ErrForeignEntry) || errors.Is(err, session.ErrClosed) {
			return errorResponse(err.Error(), 409)
		}
		return errorResponse(err.Error(), 500)
	}
	return Response{
		Status:  StatusOK,
		Cursor:  &cursor,
		Version: s.sess.Document().Version(),
	}
}

// cursor defaults to the end of the document.
func (s *Server) cursor(req Request) int {
	if req.Cursor == nil {
		return s.sess.Document().Len()
	}
	return *req.Cursor
}

func toMessages(entries []suggest.Entry) []EntryMessage {
	out := make([]EntryMessage, len(entries))
	for i, e := range entries {
		out[i] = EntryMessage{
			ID:         e.ID,
			Label:      e.Label,
			Symbol:     e.Symbol,
			InsertText: e.InsertText,
		}
	}
	return out
}

func errorResponse(message string, code int) Response {
	return Response{Status: StatusError, Error: message, Code: code}
}

func (s *Server) sendError(id, message string, code int) error {
	resp := errorResponse(message, code)
	resp.ID = id
	return s.send(resp)
}

// send encodes one response and flushes it to the client.
func (s *Server) send(resp Response) error {
	if err := s.enc.Encode(resp); err != nil {
		return errors.Wrap(err, "encode response")
	}
	if err := s.out.Flush(); err != nil {
		return errors.Wrap(err, "write response")
	}
	return nil
}
