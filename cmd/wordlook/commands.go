package main

import (
	"errors"
	"fmt"
	"os"

	console "github.com/bastiangx/wordlook/internal/cli"
	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/bastiangx/wordlook/pkg/config"
	"github.com/bastiangx/wordlook/pkg/dictionary"
	"github.com/bastiangx/wordlook/pkg/server"
	"github.com/bastiangx/wordlook/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/rodaine/table"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "serve MessagePack requests on stdin/stdout (default)",
	Action: serveAction,
}

var replCommand = &cli.Command{
	Name:      "repl",
	Usage:     "search interactively in the terminal",
	ArgsUsage: "[TERM]",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "show at most `N` results per search (default from config)",
		},
	},
	Action: func(c *cli.Context) error {
		e, err := setup(c)
		if err != nil {
			return err
		}
		if c.NArg() > 1 {
			return cli.Exit("repl takes at most one TERM", 2)
		}
		sess, err := newSession(e, c.Args().First())
		if err != nil {
			return err
		}
		limit := c.Int("limit")
		if limit < 1 {
			limit = e.cfg.CLI.DefaultLimit
		}

		go func() {
			if err := sess.Run(c.Context); err != nil {
				log.Errorf("session: %v", err)
			}
		}()
		return console.NewInputHandler(sess, os.Stdin, os.Stdout, limit).Start(c.Context)
	},
}

var listCommand = &cli.Command{
	Name:  "list",
	Usage: "list dictionaries in storage",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "min-version",
			Usage: "hide dictionaries older than `VERSION`",
		},
	},
	Action: func(c *cli.Context) error {
		var minVersion codec.Version
		if s := c.String("min-version"); s != "" {
			v, err := codec.ParseVersion(s)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			minVersion = v
		}
		e, err := setup(c)
		if err != nil {
			return err
		}
		dicts, err := dictionary.Discover(e.dataDir)
		if err != nil {
			return err
		}
		if len(dicts) == 0 {
			fmt.Printf("No dictionaries in %s\n", e.dataDir)
			return nil
		}

		tbl := table.New("#", "Name", "Version", "Size", "Status").
			WithHeaderFormatter(headerFormatter).
			WithWriter(os.Stdout)
		for i, d := range dicts {
			info, err := dictionary.Probe(d.Path())
			if err != nil {
				tbl.AddRow(i, d.DisplayName(), "-", "-", err)
				continue
			}
			if info.Version.Less(minVersion) {
				continue
			}
			status := "ok"
			if !info.Compatible {
				status = "unsupported, needs " + dictionary.MinVersion.String()
			}
			tbl.AddRow(i, info.Name, info.Version, info.Size, status)
		}
		tbl.Print()
		return nil
	},
}

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func headerFormatter(format string, vals ...interface{}) string {
	return headerStyle.Render(fmt.Sprintf(format, vals...))
}

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "copy dictionary files into storage",
	ArgsUsage: "FILE...",
	Action: func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.Exit("import needs at least one FILE", 2)
		}
		e, err := setup(c)
		if err != nil {
			return err
		}

		var errs []error
		for _, src := range c.Args().Slice() {
			res, err := dictionary.Import(e.dataDir, src)
			if err != nil {
				log.Errorf("import %s: %v", src, err)
				errs = append(errs, err)
				continue
			}
			fmt.Printf("Imported %s as %s (%d terms)\n", src, res.Path, len(res.Dictionary.Entries))
		}
		return errors.Join(errs...)
	},
}

var queryCommand = &cli.Command{
	Name:      "query",
	Usage:     "search a dictionary once and print the results",
	ArgsUsage: "TERM",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "dict",
			Usage: "search dictionary `N` instead of the selected one",
			Value: -1,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "show at most `N` results (default from config)",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.Exit("query needs exactly one TERM", 2)
		}
		e, err := setup(c)
		if err != nil {
			return err
		}
		ix, err := openDictionary(e, c.Int("dict"))
		if err != nil {
			return err
		}
		limit := c.Int("limit")
		if limit < 1 {
			limit = e.cfg.CLI.DefaultLimit
		}

		term := c.Args().First()
		styles := console.NewStyles(os.Stdout)
		fmt.Print(styles.RenderResults(term, ix.Search(term), limit))
		if entry, ok := ix.Lookup(term); ok {
			fmt.Println()
			fmt.Print(styles.RenderEntry(entry))
		}
		return nil
	},
}

var termsCommand = &cli.Command{
	Name:  "terms",
	Usage: "print every term of a dictionary in byte order",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "dict",
			Usage: "read dictionary `N` instead of the selected one",
			Value: -1,
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "stop after `N` terms (0 prints all)",
		},
	},
	Action: func(c *cli.Context) error {
		e, err := setup(c)
		if err != nil {
			return err
		}
		ix, err := openDictionary(e, c.Int("dict"))
		if err != nil {
			return err
		}

		limit := c.Int("limit")
		n := 0
		ix.Walk(func(term string) bool {
			fmt.Println(term)
			n++
			return limit < 1 || n < limit
		})
		return nil
	},
}

// openDictionary loads dictionary i from storage, or the selected one when i
// is negative.
func openDictionary(e *env, i int) (*dictionary.Index, error) {
	dicts, err := dictionary.Discover(e.dataDir)
	if err != nil {
		return nil, err
	}
	if i < 0 {
		i = e.cfg.State.SelectedIndex
	}
	if i >= len(dicts) {
		return nil, fmt.Errorf("%w: %d (have %d)", session.ErrInvalidIndex, i, len(dicts))
	}
	return dictionary.LoadFromPath(dicts[i].Path())
}

var configCommand = &cli.Command{
	Name:  "config",
	Usage: "show or reset the configuration file",
	Subcommands: []*cli.Command{
		{
			Name:  "path",
			Usage: "print the active configuration file",
			Action: func(c *cli.Context) error {
				_, configPath, err := config.LoadConfigWithPriority(c.String("config"))
				if err != nil {
					return err
				}
				fmt.Println(config.GetActiveConfigPath(configPath))
				return nil
			},
		},
		{
			Name:  "reset",
			Usage: "rewrite the configuration file with defaults",
			Action: func(c *cli.Context) error {
				path, err := config.RebuildConfigFile(c.String("config"))
				if err != nil {
					return err
				}
				fmt.Printf("Wrote defaults to %s\n", path)
				return nil
			},
		},
	},
}

func serveAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	sess, err := newSession(e, "")
	if err != nil {
		return err
	}
	log.Debug("spawning IPC")

	go func() {
		if err := sess.Run(c.Context); err != nil {
			log.Errorf("session: %v", err)
		}
	}()
	return server.NewServer(sess, e.cfg, os.Stdin, os.Stdout).Start(c.Context)
}

// newSession opens the session for storage. A non-empty term replaces the
// saved search term.
func newSession(e *env, term string) (*session.Session, error) {
	return session.New(session.Options{
		StorageDir: e.dataDir,
		MaxResults: e.cfg.Search.MaxResults,
		Workers:    e.cfg.Search.Workers,
		Config:     e.cfg,
		ConfigPath: e.configPath,
		Term:       term,
	})
}
