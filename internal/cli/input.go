// Package cli runs an interactive lookup session in the terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/wordlook/internal/logger"
	"github.com/bastiangx/wordlook/pkg/dictionary"
	"github.com/bastiangx/wordlook/pkg/session"
	"github.com/charmbracelet/log"
)

type commandKind int

const (
	cmdSearch commandKind = iota
	cmdList
	cmdUse
	cmdImport
	cmdHelp
	cmdQuit
)

type command struct {
	kind  commandKind
	arg   string
	index int
}

const helpText = `Type a prefix and press Enter to search.
  :list          list dictionaries
  :use N         select dictionary N
  :import PATH   import a dictionary file
  :help          show this help
  :quit          exit`

// parseCommand reads one input line. Lines not starting with ':' are searches.
func parseCommand(line string) (command, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		return command{kind: cmdSearch, arg: line}, nil
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "list", "ls":
		return command{kind: cmdList}, nil
	case "use":
		i, err := strconv.Atoi(arg)
		if err != nil {
			return command{}, fmt.Errorf(":use needs a dictionary number, got %q", arg)
		}
		return command{kind: cmdUse, index: i}, nil
	case "import":
		if arg == "" {
			return command{}, errors.New(":import needs a path")
		}
		return command{kind: cmdImport, arg: arg}, nil
	case "help", "h", "?":
		return command{kind: cmdHelp}, nil
	case "quit", "q", "exit":
		return command{kind: cmdQuit}, nil
	}
	return command{}, fmt.Errorf("unknown command :%s (try :help)", name)
}

// InputHandler reads commands and searches from a line-oriented input and
// prints results and entries.
type InputHandler struct {
	session *session.Session
	in      io.Reader
	out     io.Writer
	limit   int
	styles  Styles
	log     *log.Logger
}

// NewInputHandler creates a handler over sess printing at most limit results
// per search.
func NewInputHandler(sess *session.Session, in io.Reader, out io.Writer, limit int) *InputHandler {
	return &InputHandler{
		session: sess,
		in:      in,
		out:     out,
		limit:   limit,
		styles:  NewStyles(out),
		log:     logger.New("cli"),
	}
}

// Start runs the loop until :quit, end of input or ctx is done. Session
// events are printed as they arrive.
func (h *InputHandler) Start(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(h.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	fmt.Fprintln(h.out, h.styles.Title.Render("wordlook")+" "+h.styles.Muted.Render("(:help for commands)"))
	h.prompt()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case ev := <-h.session.Events():
			h.handleEvent(ev)
		case line := <-lines:
			cmd, err := parseCommand(line)
			if err != nil {
				h.printError(err)
			} else if cmd.kind == cmdQuit {
				return nil
			} else {
				h.handleCommand(cmd)
			}
			h.prompt()
		}
	}
}

func (h *InputHandler) prompt() {
	fmt.Fprint(h.out, "> ")
}

func (h *InputHandler) handleCommand(cmd command) {
	switch cmd.kind {
	case cmdList:
		fmt.Fprint(h.out, h.styles.RenderList(h.session.Dictionaries()))
	case cmdUse:
		if err := h.session.Select(cmd.index); err != nil {
			h.printError(err)
			return
		}
		if info, ok := h.session.Selected(); ok {
			fmt.Fprintf(h.out, "Using %s\n", info.Name)
		}
	case cmdImport:
		if err := h.session.Import(cmd.arg); err != nil {
			h.printError(err)
			return
		}
		fmt.Fprintf(h.out, "Importing %s...\n", cmd.arg)
	case cmdHelp:
		fmt.Fprintln(h.out, helpText)
	case cmdSearch:
		h.search(cmd.arg)
	}
}

func (h *InputHandler) search(term string) {
	if term == "" {
		return
	}
	start := time.Now()
	results, err := h.session.Search(term)
	h.log.Debugf("Took [ %v ] for '%s'", time.Since(start), term)

	switch {
	case errors.Is(err, dictionary.ErrNotLoaded):
		fmt.Fprintln(h.out, h.styles.Muted.Render("Loading..."))
	case err != nil:
		h.printError(err)
	default:
		h.printResults(term, results)
	}
}

func (h *InputHandler) printResults(term string, results []string) {
	fmt.Fprint(h.out, h.styles.RenderResults(term, results, h.limit))
	if entry := h.session.View().Entry; entry != nil {
		fmt.Fprintln(h.out)
		fmt.Fprint(h.out, h.styles.RenderEntry(entry))
	}
}

func (h *InputHandler) handleEvent(ev session.Event) {
	fmt.Fprintln(h.out)
	switch ev.Kind {
	case session.EventLoaded:
		fmt.Fprintln(h.out, h.styles.Muted.Render("Loaded "+ev.Name))
	case session.EventLoadFailed:
		h.printError(fmt.Errorf("%s removed: %w", ev.Name, ev.Err))
	case session.EventImported:
		fmt.Fprintf(h.out, "Imported %s as dictionary %d\n", ev.Name, ev.Index)
	case session.EventImportFailed:
		h.printError(ev.Err)
	case session.EventResults:
		h.printResults(ev.Term, ev.Results)
	}
	h.prompt()
}

func (h *InputHandler) printError(err error) {
	fmt.Fprintln(h.out, h.styles.Error.Render("Error: "+err.Error()))
}
