package dictionary

import (
	"path/filepath"
	"strings"

	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/charmbracelet/log"
)

// State is the load state of a Lazy dictionary.
type State int

const (
	// Unloaded: nothing has been read from disk.
	Unloaded State = iota
	// Loading: a load task has been handed out and has not completed.
	Loading
	// Loaded: the index is available.
	Loaded
	// Failed: the last load attempt failed. The dictionary may be retried.
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// LoadResult is what a LoadTask produces.
type LoadResult struct {
	Index *Index
	Err   error
}

// LoadTask performs one load of a dictionary file. It touches no state of the
// Lazy that issued it and may run on any goroutine.
type LoadTask func() LoadResult

// Lazy is a dictionary file whose index is built on first use.
//
// A Lazy has exactly one owner and is not safe for concurrent use; only the
// returned LoadTask runs elsewhere, and its result is handed back through
// CompleteLoad by the owner.
type Lazy struct {
	path  string
	state State
	index *Index
	err   error
}

// NewLazy returns an unloaded dictionary for path. No I/O happens.
func NewLazy(path string) *Lazy {
	return &Lazy{path: path}
}

// NewLoaded returns a dictionary that is already loaded with ix.
func NewLoaded(path string, ix *Index) *Lazy {
	return &Lazy{path: path, state: Loaded, index: ix}
}

// Path returns the backing file path.
func (l *Lazy) Path() string { return l.path }

// State returns the current load state.
func (l *Lazy) State() State { return l.state }

// Err returns the error of the last failed load, if the dictionary is Failed.
func (l *Lazy) Err() error { return l.err }

// IsLoaded reports whether the index is available.
func (l *Lazy) IsLoaded() bool { return l.state == Loaded }

// RequestLoad moves the dictionary to Loading and returns the task that loads
// it. While a load is already in flight it returns nil and the request is
// dropped. Requesting a load of a Loaded dictionary discards the current index
// and loads the file again.
func (l *Lazy) RequestLoad() LoadTask {
	switch l.state {
	case Loading:
		log.Debugf("%s is already loading, dropping duplicate request", l.path)
		return nil
	case Loaded:
		log.Warnf("%s is already loaded, load again now", l.path)
	}

	l.state = Loading
	l.index = nil
	l.err = nil

	path := l.path
	return func() LoadResult {
		ix, err := LoadFromPath(path)
		return LoadResult{Index: ix, Err: err}
	}
}

// CompleteLoad applies the result of the task returned by RequestLoad. It
// reports false and changes nothing if no load was in flight.
func (l *Lazy) CompleteLoad(r LoadResult) bool {
	if l.state != Loading {
		log.Debugf("Ignoring load result for %s in state %s", l.path, l.state)
		return false
	}
	if r.Err != nil || r.Index == nil {
		l.state = Failed
		l.index = nil
		l.err = r.Err
		if l.err == nil {
			l.err = &FormatError{Path: l.path, Err: errNoIndex}
		}
		return true
	}
	l.state = Loaded
	l.index = r.Index
	return true
}

// AbortLoad returns a dictionary whose load task never ran to Unloaded, so a
// later RequestLoad starts over. It reports false if no load was in flight.
func (l *Lazy) AbortLoad() bool {
	if l.state != Loading {
		return false
	}
	l.state = Unloaded
	return true
}

// Search returns the terms starting with query.
func (l *Lazy) Search(query string) ([]string, error) {
	if l.state != Loaded {
		return nil, &NotLoadedError{Path: l.path, State: l.state}
	}
	return l.index.Search(query), nil
}

// Lookup returns the entry for exactly term, or nil if there is none.
func (l *Lazy) Lookup(term string) (*codec.Entry, error) {
	if l.state != Loaded {
		return nil, &NotLoadedError{Path: l.path, State: l.state}
	}
	e, _ := l.index.Lookup(term)
	return e, nil
}

// Index returns the loaded index, or nil.
func (l *Lazy) Index() *Index {
	return l.index
}

// DisplayName is the declared dictionary name once loaded, falling back to the
// file name without its extension.
func (l *Lazy) DisplayName() string {
	if l.state == Loaded && l.index.Name() != "" {
		return l.index.Name()
	}
	return stem(l.path)
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
