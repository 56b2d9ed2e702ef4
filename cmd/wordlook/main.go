/*
Package main implements the wordlook dictionary lookup server and terminal
client.

wordlook keeps dictionary files in a managed storage directory, loads them on
first use and answers prefix searches and exact lookups. It runs as a
MessagePack IPC server for editors and launchers, or as an interactive
terminal session.

# Usage

Start the IPC server with default settings:

	wordlook

Import a dictionary and look a word up:

	wordlook import ~/Downloads/english.wld
	wordlook query cat

Run the interactive session with debug logging:

	wordlook -d repl

# Storage

Dictionaries live in one directory, one .wld file each. The default location
is platform specific (XDG_DATA_HOME on Linux, Application Support on macOS,
APPDATA on Windows) and can be changed with --data-dir or [storage] data_dir.
Importing copies a file into storage after checking that it decodes and that
its format version is supported.

# Configuration

Runtime configuration is a TOML file, created with defaults on first run:

	[search]
	max_results = 1000

	[server]
	max_term = 256
	default_limit = 50

	[log]
	level = "warn"

The selected dictionary and last search term are written back to the [state]
section as they change.

# IPC Protocol

The server reads MessagePack requests from stdin and writes responses and
events to stdout. Logs go to stderr. See package server for the messages.

	{"id": "1", "action": "search", "term": "ca"}
	{"id": "1", "status": "ok", "term": "ca", "r": ["car", "cat"], "c": 2, "t": 12}
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "wordlook"
	gh      = "https://github.com/bastiangx/wordlook"
)

// sigContext returns a context cancelled on interrupt or SIGTERM. A second
// signal exits immediately.
func sigContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx, cancel
}

func main() {
	ctx, cancel := sigContext()
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
