/*
Package server implements msgpack IPC for document word completion.

The server reads a stream of msgpack requests from stdin and writes one
msgpack response per request to stdout. Logs never go to stdout, so the
stream stays clean for the client.

# IPC

Every request names an action and carries an optional ID that is echoed in
the response. The first message the server writes is a ready status:

	{"status": "ready"}

Push the document text, or a ranged edit of it:

	{"id": "t1", "action": "set_text", "text": "the doorway is open\nwalk through the do", "wait": true}
	{"id": "t2", "action": "edit", "start": 0, "end": 3, "text": "a"}

Setting "wait" blocks the response until the index for the new text is
published, which keeps scripted clients deterministic.

Ask for completions of the word that ends at a cursor:

	{"id": "c1", "action": "complete", "cursor": 38}

The response lists entries from the active index in collation order:

	{"id": "c1", "status": "ok", "e": [{"i": "8c1f...", "l": "Doorway", "s": "d.square", "t": "doorway"}], "c": 1, "f": "do", "t": 12}

Accept one of them by id. The partial word before the cursor is replaced and
the new cursor is returned:

	{"id": "a1", "action": "accept", "entry_id": "8c1f...", "cursor": 38}

stats and health take no arguments.

Failed requests get a status of "error" with a message and an HTTP-like code.
The loop keeps going after a failed request and ends cleanly on EOF.
*/
package server

// Actions understood by the server.
const (
	ActionSetText  = "set_text"
	ActionEdit     = "edit"
	ActionComplete = "complete"
	ActionAccept   = "accept"
	ActionStats    = "stats"
	ActionHealth   = "health"
)

// Response status values.
const (
	StatusReady = "ready"
	StatusOK    = "ok"
	StatusError = "error"
)

// Request is a single client message.
type Request struct {
	ID      string `msgpack:"id,omitempty"`
	Action  string `msgpack:"action"`
	Text    string `msgpack:"text,omitempty"`
	Start   *int   `msgpack:"start,omitempty"`
	End     *int   `msgpack:"end,omitempty"`
	Cursor  *int   `msgpack:"cursor,omitempty"`
	EntryID string `msgpack:"entry_id,omitempty"`
	Wait    bool   `msgpack:"wait,omitempty"`
}

// EntryMessage is the wire form of a completion entry.
type EntryMessage struct {
	ID         string `msgpack:"i"`
	Label      string `msgpack:"l"`
	Symbol     string `msgpack:"s"`
	InsertText string `msgpack:"t"`
}

// Response answers a Request.
type Response struct {
	ID        string         `msgpack:"id,omitempty"`
	Status    string         `msgpack:"status"`
	Error     string         `msgpack:"error,omitempty"`
	Code      int            `msgpack:"code,omitempty"`
	Entries   []EntryMessage `msgpack:"e,omitempty"`
	Count     int            `msgpack:"c,omitempty"`
	Fragment  string         `msgpack:"f,omitempty"`
	Cursor    *int           `msgpack:"cursor,omitempty"`
	Version   uint64         `msgpack:"version,omitempty"`
	Stats     map[string]int `msgpack:"stats,omitempty"`
	TimeTaken int64          `msgpack:"t,omitempty"`
}
