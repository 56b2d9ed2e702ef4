/*
Package session owns the set of dictionaries a user works with.

A Session holds the dictionaries found in managed storage, the selected one,
the current search term and its results. All state changes happen on the
owner's side under one lock; loads and imports run on a task pool and hand
their results back as Messages, which Run applies through Update:

	s, err := session.New(session.Options{StorageDir: dir})
	if err != nil {
		return err
	}
	go s.Run(ctx)

	results, err := s.Search("ca")
	if errors.Is(err, dictionary.ErrNotLoaded) {
		// the selected dictionary is loading; an EventResults follows
	}

Each dictionary has at most one load in flight. A dictionary that fails to
load is removed from the session, and results for dictionaries that are no
longer part of it are dropped on arrival.
*/
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bastiangx/wordlook/internal/logger"
	"github.com/bastiangx/wordlook/internal/tasks"
	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/bastiangx/wordlook/pkg/config"
	"github.com/bastiangx/wordlook/pkg/dictionary"
	"github.com/charmbracelet/log"
)

var (
	// ErrNoDictionary is returned by queries when the session has no dictionaries.
	ErrNoDictionary = errors.New("no dictionary available")
	// ErrInvalidIndex is returned when selecting a dictionary that does not exist.
	ErrInvalidIndex = errors.New("invalid dictionary index")
	// ErrImportInProgress is returned when the same source is already being imported.
	ErrImportInProgress = errors.New("import already in progress")
)

// DefaultMaxResults caps the number of search results.
const DefaultMaxResults = 1000

// Options configure a Session.
type Options struct {
	// StorageDir is the managed storage directory.
	StorageDir string
	// MaxResults caps search results; zero means DefaultMaxResults.
	MaxResults int
	// Workers is the number of background task goroutines.
	Workers int
	// Config, if set, provides the initial state and receives state updates.
	Config *config.Config
	// ConfigPath is where Config is persisted. Empty keeps updates in memory.
	ConfigPath string
	// Term, if not empty, replaces the persisted search term.
	Term string
}

// Session is the single owner of a set of lazily loaded dictionaries.
type Session struct {
	mu        sync.Mutex
	dicts     []*dictionary.Lazy
	selected  int
	term      string
	results   []string
	entry     *codec.Entry
	importing map[string]bool

	storageDir string
	maxResults int
	cfg        *config.Config
	cfgPath    string

	pool   *tasks.Pool
	msgs   chan Message
	events chan Event
	log    *log.Logger
}

// work is a job for the pool plus the message to apply if the pool refuses it.
type work struct {
	job    tasks.Job
	reject func(error) Message
}

// New discovers the dictionaries in opts.StorageDir and restores the persisted
// selection and search term. Nothing is loaded until Run.
func New(opts Options) (*Session, error) {
	dicts, err := dictionary.Discover(opts.StorageDir)
	if err != nil {
		return nil, err
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 2
	}

	s := &Session{
		dicts:      dicts,
		importing:  make(map[string]bool),
		storageDir: opts.StorageDir,
		maxResults: maxResults,
		cfg:        opts.Config,
		cfgPath:    opts.ConfigPath,
		pool:       tasks.NewPool(workers, 16),
		msgs:       make(chan Message, 16),
		events:     make(chan Event, 64),
		log:        logger.New("session"),
	}
	if s.cfg != nil {
		s.selected = s.cfg.State.SelectedIndex
		s.term = s.cfg.State.SearchTerm
	}
	s.correctSelectedLocked()
	if opts.Term != "" && opts.Term != s.term {
		s.term = opts.Term
		s.persistLocked()
	}

	s.log.Debugf("Session with %d dictionaries, selected=%d", len(dicts), s.selected)
	return s, nil
}

// Run starts the task pool, loads the selected dictionary and applies task
// results until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	s.pool.Start(ctx)
	defer s.pool.Close()

	s.mu.Lock()
	w := s.loadSelectedLocked()
	s.mu.Unlock()
	s.submit(w)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-s.msgs:
			s.Update(msg)
		}
	}
}

// Events returns the channel on which applied results are reported. Events
// are dropped when nobody keeps up with the channel.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Update applies a task result to the session.
func (s *Session) Update(msg Message) {
	s.mu.Lock()
	w := s.updateLocked(msg)
	s.mu.Unlock()
	s.submit(w)
}

func (s *Session) updateLocked(msg Message) *work {
	switch m := msg.(type) {
	case loadDone:
		return s.applyLoadLocked(m)
	case loadRefused:
		if m.dict.AbortLoad() {
			s.log.Debugf("Load of %s not started: %v", m.dict.Path(), m.err)
		}
	case importDone:
		s.applyImportLocked(m)
	default:
		s.log.Warnf("Unknown message %T", msg)
	}
	return nil
}

func (s *Session) applyLoadLocked(m loadDone) *work {
	i := s.indexOfLocked(m.dict)
	if i < 0 {
		s.log.Debugf("Dropping load result for %s: no longer in session", m.dict.Path())
		return nil
	}
	if !m.dict.CompleteLoad(m.result) {
		return nil
	}

	if m.dict.IsLoaded() {
		s.log.Debugf("Loaded %s", m.dict.Path())
		s.emitLocked(Event{
			Kind:  EventLoaded,
			Index: i,
			Name:  m.dict.DisplayName(),
			Path:  m.dict.Path(),
		})
		if i == s.selected {
			s.refreshLocked()
		}
		return nil
	}

	s.log.Errorf("load dictionary error: %v", m.dict.Err())
	wasSelected := i == s.selected
	s.removeLocked(i)
	s.emitLocked(Event{
		Kind:  EventLoadFailed,
		Index: i,
		Name:  m.dict.DisplayName(),
		Path:  m.dict.Path(),
		Err:   m.dict.Err(),
	})
	s.persistLocked()
	if wasSelected {
		return s.loadSelectedLocked()
	}
	return nil
}

func (s *Session) applyImportLocked(m importDone) {
	delete(s.importing, m.source)
	if m.err != nil {
		s.log.Errorf("import failed: %v", m.err)
		s.emitLocked(Event{Kind: EventImportFailed, Source: m.source, Err: m.err})
		return
	}

	d := dictionary.NewLoaded(m.path, m.index)
	s.dicts = append(s.dicts, d)
	s.emitLocked(Event{
		Kind:   EventImported,
		Index:  len(s.dicts) - 1,
		Name:   d.DisplayName(),
		Path:   d.Path(),
		Source: m.source,
	})
}

// Dictionaries describes every dictionary in the session, in order.
func (s *Session) Dictionaries() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infosLocked()
}

// Selected describes the selected dictionary.
func (s *Session) Selected() (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedLocked() == nil {
		return Info{}, false
	}
	return s.infoLocked(s.selected), true
}

// Select makes dictionary i the selected one and starts loading it if needed.
func (s *Session) Select(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.dicts) {
		n := len(s.dicts)
		s.mu.Unlock()
		return fmt.Errorf("%w: %d (have %d)", ErrInvalidIndex, i, n)
	}
	if i == s.selected && s.dicts[i].State() != dictionary.Unloaded {
		s.mu.Unlock()
		return nil
	}

	s.selected = i
	s.results = nil
	s.entry = nil
	s.persistLocked()

	var w *work
	if s.dicts[i].IsLoaded() {
		s.refreshLocked()
	} else {
		w = s.loadSelectedLocked()
	}
	s.mu.Unlock()
	s.submit(w)
	return nil
}

// Search sets the search term and returns the matching terms of the selected
// dictionary, at most MaxResults of them. Surrounding whitespace is ignored.
// If the selected dictionary is not loaded yet, a load is started, the error
// matches dictionary.ErrNotLoaded, and the results follow as EventResults.
// The term is saved only when it changes.
func (s *Session) Search(term string) ([]string, error) {
	s.mu.Lock()
	if term != s.term {
		s.term = term
		s.persistLocked()
	}
	results, w, err := s.searchLocked()
	s.mu.Unlock()
	s.submit(w)
	return results, err
}

func (s *Session) searchLocked() ([]string, *work, error) {
	q := strings.TrimSpace(s.term)
	s.results = nil
	s.entry = nil
	if q == "" {
		return []string{}, nil, nil
	}

	d := s.selectedLocked()
	if d == nil {
		return nil, nil, ErrNoDictionary
	}
	terms, err := d.Search(q)
	if err != nil {
		return nil, s.loadSelectedLocked(), err
	}
	if len(terms) > s.maxResults {
		terms = terms[:s.maxResults]
	}
	s.results = terms
	s.entry, _ = d.Lookup(q)
	return append([]string(nil), terms...), nil, nil
}

// refreshLocked re-runs the current search and reports it as EventResults.
func (s *Session) refreshLocked() {
	if strings.TrimSpace(s.term) == "" {
		return
	}
	results, _, err := s.searchLocked()
	if err != nil {
		return
	}
	s.emitLocked(Event{
		Kind:    EventResults,
		Index:   s.selected,
		Term:    s.term,
		Results: results,
		Entry:   s.entry,
	})
}

// Lookup returns the entry for exactly term in the selected dictionary and
// makes it the current entry. A nil entry means the term is not defined.
func (s *Session) Lookup(term string) (*codec.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.selectedLocked()
	if d == nil {
		return nil, ErrNoDictionary
	}
	e, err := d.Lookup(term)
	if err != nil {
		return nil, err
	}
	s.entry = e
	return e, nil
}

// Import copies the dictionary at source into managed storage in the
// background. The outcome is reported as EventImported or EventImportFailed.
// Sources that cannot name a local file are rejected immediately.
func (s *Session) Import(source string) error {
	source = strings.TrimSpace(source)
	if _, err := dictionary.ResolveLocator(source); err != nil {
		return err
	}

	s.mu.Lock()
	if s.importing[source] {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrImportInProgress, source)
	}
	s.importing[source] = true
	s.mu.Unlock()

	storageDir := s.storageDir
	s.submit(&work{
		job: func(ctx context.Context) error {
			res, err := dictionary.Import(storageDir, source)
			msg := importDone{source: source, err: err}
			if err == nil {
				msg.path = res.Path
				msg.index = dictionary.Build(res.Dictionary)
			}
			s.post(ctx, msg)
			return err
		},
		reject: func(err error) Message {
			return importDone{source: source, err: err}
		},
	})
	return nil
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Dictionaries: s.infosLocked(),
		Selected:     s.selected,
		Term:         s.term,
		Results:      append([]string(nil), s.results...),
		Entry:        s.entry,
	}
	for src := range s.importing {
		v.Importing = append(v.Importing, src)
	}
	sort.Strings(v.Importing)
	return v
}

// loadSelectedLocked requests a load of the selected dictionary if it has no
// index and no load in flight.
func (s *Session) loadSelectedLocked() *work {
	d := s.selectedLocked()
	if d == nil || d.IsLoaded() {
		return nil
	}
	task := d.RequestLoad()
	if task == nil {
		return nil
	}
	return &work{
		job: func(ctx context.Context) error {
			r := task()
			s.post(ctx, loadDone{dict: d, result: r})
			return r.Err
		},
		reject: func(err error) Message {
			return loadRefused{dict: d, err: err}
		},
	}
}

// submit hands w to the pool. It must be called without holding s.mu.
func (s *Session) submit(w *work) {
	if w == nil {
		return
	}
	if err := s.pool.Submit(w.job); err != nil {
		s.log.Warnf("Task rejected: %v", err)
		s.Update(w.reject(err))
	}
}

// post delivers a task result to Run.
func (s *Session) post(ctx context.Context, msg Message) {
	select {
	case s.msgs <- msg:
	case <-ctx.Done():
	}
}

func (s *Session) emitLocked(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Debugf("Dropping %s event: no listener", ev.Kind)
	}
}

func (s *Session) persistLocked() {
	if s.cfg == nil {
		return
	}
	if err := s.cfg.SaveState(s.cfgPath, s.selected, s.term); err != nil {
		s.log.Warnf("Failed to save state: %v", err)
	}
}

func (s *Session) selectedLocked() *dictionary.Lazy {
	if s.selected < 0 || s.selected >= len(s.dicts) {
		return nil
	}
	return s.dicts[s.selected]
}

func (s *Session) indexOfLocked(d *dictionary.Lazy) int {
	for i, cur := range s.dicts {
		if cur == d {
			return i
		}
	}
	return -1
}

// removeLocked drops dictionary i and keeps the selection on the same
// dictionary where possible.
func (s *Session) removeLocked(i int) {
	s.dicts = append(s.dicts[:i], s.dicts[i+1:]...)
	if i < s.selected {
		s.selected--
	}
	if i == s.selected {
		s.results = nil
		s.entry = nil
	}
	s.correctSelectedLocked()
}

func (s *Session) correctSelectedLocked() {
	if s.selected < 0 || s.selected >= len(s.dicts) {
		if s.selected != 0 {
			s.log.Infof("Reset selected dictionary index %d to 0", s.selected)
		}
		s.selected = 0
	}
}

func (s *Session) infosLocked() []Info {
	infos := make([]Info, len(s.dicts))
	for i := range s.dicts {
		infos[i] = s.infoLocked(i)
	}
	return infos
}

func (s *Session) infoLocked(i int) Info {
	d := s.dicts[i]
	info := Info{
		Index:    i,
		Name:     d.DisplayName(),
		Path:     d.Path(),
		State:    d.State(),
		Selected: i == s.selected,
		Err:      d.Err(),
	}
	if ix := d.Index(); ix != nil {
		info.Terms = ix.Len()
	}
	return info
}
