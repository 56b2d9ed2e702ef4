package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bastiangx/wordlook/internal/logger"
	"github.com/bastiangx/wordlook/pkg/config"
	"github.com/bastiangx/wordlook/pkg/dictionary"
	"github.com/bastiangx/wordlook/pkg/session"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles msgpack IPC for a session.
type Server struct {
	session *session.Session
	config  *config.Config
	decoder *msgpack.Decoder
	writeMu sync.Mutex
	encoder *msgpack.Encoder
	log     *log.Logger
}

// NewServer creates a server reading requests from r and writing to w.
func NewServer(sess *session.Session, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Server{
		session: sess,
		config:  cfg,
		decoder: msgpack.NewDecoder(r),
		encoder: msgpack.NewEncoder(w),
		log:     logger.New("server"),
	}
}

// Start announces readiness, forwards session events and serves requests
// until the input ends or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server")
	s.sendResponse(StatusResponse{Status: "ready", Dictionaries: len(s.session.Dictionaries())})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.forwardEvents(ctx)

	requests := make(chan msgpack.RawMessage)
	readErr := make(chan error, 1)
	go s.readRequests(ctx, requests, readErr)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Reading request: %v", err)
			return err
		case raw := <-requests:
			var req Request
			if err := msgpack.Unmarshal(raw, &req); err != nil {
				s.log.Debugf("Malformed request: %v", err)
				s.sendError("", "Invalid msgpack request", 400)
				continue
			}
			s.handleRequest(req)
		}
	}
}

// readRequests splits the input into raw messages until it fails.
func (s *Server) readRequests(ctx context.Context, out chan<- msgpack.RawMessage, errc chan<- error) {
	for {
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			errc <- err
			return
		}
		select {
		case out <- raw:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) forwardEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.session.Events():
			s.sendResponse(eventMessage(ev))
		}
	}
}

func (s *Server) handleRequest(req Request) {
	switch req.Action {
	case "list":
		s.handleList(req)
	case "select":
		s.handleSelect(req)
	case "search":
		s.handleSearch(req)
	case "lookup":
		s.handleLookup(req)
	case "import":
		s.handleImport(req)
	case "status":
		s.sendResponse(s.status(req.ID, "ok"))
	case "health":
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok", Dictionaries: len(s.session.Dictionaries())})
	case "":
		s.sendError(req.ID, "Missing 'action'", 400)
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

func (s *Server) handleList(req Request) {
	infos := s.session.Dictionaries()
	resp := ListResponse{ID: req.ID, Dictionaries: make([]DictionaryInfo, 0, len(infos))}
	for _, info := range infos {
		resp.Dictionaries = append(resp.Dictionaries, dictionaryInfo(info))
		if info.Selected {
			resp.Selected = info.Index
		}
	}
	s.sendResponse(resp)
}

func (s *Server) handleSelect(req Request) {
	if req.Index == nil {
		s.sendError(req.ID, "Missing 'index' parameter", 400)
		return
	}
	if err := s.session.Select(*req.Index); err != nil {
		s.sendFailure(req.ID, err)
		return
	}
	s.sendResponse(s.status(req.ID, "ok"))
}

func (s *Server) handleSearch(req Request) {
	if len(req.Term) > s.config.Server.MaxTerm {
		s.sendError(req.ID, fmt.Sprintf("Term exceeds maximum length of %d bytes", s.config.Server.MaxTerm), 400)
		return
	}
	limit := req.Limit
	if limit < 1 {
		limit = s.config.Server.DefaultLimit
	}

	start := time.Now()
	results, err := s.session.Search(req.Term)
	elapsed := time.Since(start)

	resp := SearchResponse{ID: req.ID, Status: "ok", Term: req.Term, Results: []string{}}
	switch {
	case errors.Is(err, dictionary.ErrNotLoaded):
		resp.Status = "loading"
	case err != nil:
		s.sendFailure(req.ID, err)
		return
	default:
		if len(results) > limit {
			results = results[:limit]
		}
		resp.Results = results
		resp.Entry = s.session.View().Entry
	}
	resp.Count = len(resp.Results)
	resp.TimeTaken = elapsed.Microseconds()
	s.sendResponse(resp)
}

func (s *Server) handleLookup(req Request) {
	if req.Term == "" {
		s.sendError(req.ID, "Missing 'term' parameter", 400)
		return
	}
	entry, err := s.session.Lookup(req.Term)
	if err != nil {
		s.sendFailure(req.ID, err)
		return
	}
	s.sendResponse(LookupResponse{ID: req.ID, Term: req.Term, Found: entry != nil, Entry: entry})
}

func (s *Server) handleImport(req Request) {
	if req.Source == "" {
		s.sendError(req.ID, "Missing 'source' parameter", 400)
		return
	}
	if err := s.session.Import(req.Source); err != nil {
		s.sendFailure(req.ID, err)
		return
	}
	s.sendResponse(s.status(req.ID, "importing"))
}

func (s *Server) status(id, status string) StatusResponse {
	v := s.session.View()
	resp := StatusResponse{
		ID:           id,
		Status:       status,
		Term:         v.Term,
		Dictionaries: len(v.Dictionaries),
		Importing:    v.Importing,
	}
	if v.Selected < len(v.Dictionaries) {
		info := dictionaryInfo(v.Dictionaries[v.Selected])
		resp.Selected = &info
	}
	return resp
}

// sendResponse encodes one message. Writes from the request loop and the
// event forwarder are serialized.
func (s *Server) sendResponse(response any) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.encoder.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}

func (s *Server) sendFailure(id string, err error) {
	s.sendError(id, err.Error(), errorCode(err))
}

// errorCode maps an error to its protocol code.
func errorCode(err error) int {
	var (
		versionErr     *dictionary.VersionError
		formatErr      *dictionary.FormatError
		unsupportedErr *dictionary.UnsupportedSourceError
		writeErr       *dictionary.WriteError
	)
	switch {
	case errors.Is(err, dictionary.ErrNotLoaded),
		errors.Is(err, dictionary.ErrDuplicateTarget),
		errors.Is(err, session.ErrImportInProgress):
		return 409
	case errors.Is(err, session.ErrInvalidIndex),
		errors.Is(err, session.ErrNoDictionary):
		return 404
	case errors.As(err, &versionErr), errors.As(err, &formatErr):
		return 422
	case errors.As(err, &unsupportedErr):
		return 400
	case errors.As(err, &writeErr):
		return 500
	}
	return 500
}

func dictionaryInfo(info session.Info) DictionaryInfo {
	return DictionaryInfo{
		Index:    info.Index,
		Name:     info.Name,
		Path:     info.Path,
		State:    info.State.String(),
		Selected: info.Selected,
		Terms:    info.Terms,
	}
}

func eventMessage(ev session.Event) EventMessage {
	msg := EventMessage{
		Event:   ev.Kind.String(),
		Index:   ev.Index,
		Name:    ev.Name,
		Path:    ev.Path,
		Source:  ev.Source,
		Term:    ev.Term,
		Results: ev.Results,
		Entry:   ev.Entry,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
		msg.Code = errorCode(ev.Err)
	}
	return msg
}
