/*
Package server implements msgpack IPC for dictionary lookups.

Clients write msgpack-encoded requests to stdin and read msgpack-encoded
responses and events from stdout. Every request carries an id and an action;
the response echoes the id.

	{"id": "1", "action": "list"}
	{"id": "2", "action": "select", "index": 1}
	{"id": "3", "action": "search", "term": "ca", "limit": 20}
	{"id": "4", "action": "lookup", "term": "cat"}
	{"id": "5", "action": "import", "source": "file:///home/me/en.wld"}
	{"id": "6", "action": "status"}

Dictionaries load lazily. A search against a dictionary that is still loading
is answered with status "loading", and the results follow as an event once the
load completes:

	{"id": "3", "status": "loading", "term": "ca", "r": [], "c": 0}
	{"event": "results", "index": 0, "term": "ca", "r": ["car", "cat"]}

Loads and imports report their outcome as events too: "loaded", "load_failed",
"imported" and "import_failed". Failures carry an error message and code:

	{"id": "5", "e": "target path exists: ...", "c": 409}

Codes: 400 bad request, 404 no such dictionary, 409 not loaded or duplicate
target, 422 incompatible or unreadable file, 500 write or internal failure.
*/
package server

import "github.com/bastiangx/wordlook/pkg/codec"

// Request is any client request; fields beyond id and action depend on the action.
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"action"`
	Index  *int   `msgpack:"index,omitempty"`
	Term   string `msgpack:"term,omitempty"`
	Source string `msgpack:"source,omitempty"`
	Limit  int    `msgpack:"limit,omitempty"`
}

// DictionaryInfo describes one dictionary.
type DictionaryInfo struct {
	Index    int    `msgpack:"index"`
	Name     string `msgpack:"name"`
	Path     string `msgpack:"path"`
	State    string `msgpack:"state"`
	Selected bool   `msgpack:"selected"`
	Terms    int    `msgpack:"terms,omitempty"`
}

// ListResponse answers "list".
type ListResponse struct {
	ID           string           `msgpack:"id"`
	Dictionaries []DictionaryInfo `msgpack:"dictionaries"`
	Selected     int              `msgpack:"selected"`
}

// SearchResponse answers "search".
type SearchResponse struct {
	ID        string       `msgpack:"id"`
	Status    string       `msgpack:"status"`
	Term      string       `msgpack:"term"`
	Results   []string     `msgpack:"r"`
	Count     int          `msgpack:"c"`
	Entry     *codec.Entry `msgpack:"entry,omitempty"`
	TimeTaken int64        `msgpack:"t"`
}

// LookupResponse answers "lookup".
type LookupResponse struct {
	ID    string       `msgpack:"id"`
	Term  string       `msgpack:"term"`
	Found bool         `msgpack:"found"`
	Entry *codec.Entry `msgpack:"entry,omitempty"`
}

// StatusResponse answers "select", "import", "status" and "health".
type StatusResponse struct {
	ID           string          `msgpack:"id,omitempty"`
	Status       string          `msgpack:"status"`
	Selected     *DictionaryInfo `msgpack:"selected,omitempty"`
	Term         string          `msgpack:"term,omitempty"`
	Dictionaries int             `msgpack:"dictionaries"`
	Importing    []string        `msgpack:"importing,omitempty"`
}

// EventMessage is pushed when background work completes.
type EventMessage struct {
	Event   string       `msgpack:"event"`
	Index   int          `msgpack:"index"`
	Name    string       `msgpack:"name,omitempty"`
	Path    string       `msgpack:"path,omitempty"`
	Source  string       `msgpack:"source,omitempty"`
	Term    string       `msgpack:"term,omitempty"`
	Results []string     `msgpack:"r,omitempty"`
	Entry   *codec.Entry `msgpack:"entry,omitempty"`
	Error   string       `msgpack:"e,omitempty"`
	Code    int          `msgpack:"c,omitempty"`
}

// ErrorResponse holds basic error information for a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
