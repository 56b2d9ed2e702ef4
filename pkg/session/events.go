package session

import (
	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/bastiangx/wordlook/pkg/dictionary"
)

// EventKind identifies what happened in an Event.
type EventKind int

const (
	// EventLoaded: a dictionary finished loading.
	EventLoaded EventKind = iota + 1
	// EventLoadFailed: a dictionary failed to load and was removed.
	EventLoadFailed
	// EventImported: an imported dictionary was added, already loaded.
	EventImported
	// EventImportFailed: an import did not add a dictionary.
	EventImportFailed
	// EventResults: search results for the current term became available.
	EventResults
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventLoadFailed:
		return "load_failed"
	case EventImported:
		return "imported"
	case EventImportFailed:
		return "import_failed"
	case EventResults:
		return "results"
	}
	return "unknown"
}

// Event reports the outcome of background work once it has been applied.
type Event struct {
	Kind    EventKind
	Index   int
	Name    string
	Path    string
	Source  string
	Term    string
	Results []string
	Entry   *codec.Entry
	Err     error
}

// Message is the result of a background task, applied by Update.
type Message interface {
	message()
}

type loadDone struct {
	dict   *dictionary.Lazy
	result dictionary.LoadResult
}

// loadRefused reports a load task the pool did not accept.
type loadRefused struct {
	dict *dictionary.Lazy
	err  error
}

type importDone struct {
	source string
	path   string
	index  *dictionary.Index
	err    error
}

func (loadDone) message()    {}
func (loadRefused) message() {}
func (importDone) message()  {}

// Info describes one dictionary of the session.
type Info struct {
	Index    int
	Name     string
	Path     string
	State    dictionary.State
	Selected bool
	Terms    int
	Err      error
}

// View is a snapshot of the session state.
type View struct {
	Dictionaries []Info
	Selected     int
	Term         string
	Results      []string
	Entry        *codec.Entry
	Importing    []string
}
