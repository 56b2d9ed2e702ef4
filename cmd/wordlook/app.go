package main

import (
	"fmt"
	"os"

	"github.com/bastiangx/wordlook/internal/logger"
	"github.com/bastiangx/wordlook/internal/utils"
	"github.com/bastiangx/wordlook/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"
)

//nolint:gochecknoinits // urfave/cli exposes the version flag and printer as globals.
func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Aliases:            []string{"V"},
		Usage:              "print version information and exit",
		DisableDefaultText: true,
	}
	cli.VersionPrinter = printVersion
}

func newApp() *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "Look up words in local dictionaries.",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "load configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "keep dictionaries in `DIR`",
				EnvVars: []string{"WORDLOOK_DATA_DIR"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "enable debug logging",
			},
		},
		Action: serveAction,
		Commands: []*cli.Command{
			serveCommand,
			replCommand,
			listCommand,
			importCommand,
			queryCommand,
			termsCommand,
			configCommand,
		},
	}
}

// printVersion shows the version banner on stderr.
func printVersion(_ *cli.Context) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ wordlook ] Local dictionary lookups")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// env is what every command needs: configuration and the storage directory.
type env struct {
	cfg        *config.Config
	configPath string
	dataDir    string
}

// setup loads configuration, applies the log level and resolves the storage
// directory. The flag wins over the config file, which wins over the
// platform default.
func setup(c *cli.Context) (*env, error) {
	if c.Bool("debug") {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, configPath, err := config.LoadConfigWithPriority(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !c.Bool("debug") {
		log.SetLevel(logger.ParseLevel(cfg.Log.Level))
	}
	log.Debugf("Using config: %s", config.GetActiveConfigPath(configPath))

	pathResolver, err := utils.NewPathResolver(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize path resolver: %w", err)
	}
	for k, v := range pathResolver.GetRuntimeInfo() {
		log.Debug("runtime", k, v)
	}

	override := c.String("data-dir")
	if override == "" {
		override = cfg.Storage.DataDir
	}
	dataDir, err := pathResolver.GetDataDir(override)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	log.Debugf("Using data dir at: %s", dataDir)

	return &env{cfg: cfg, configPath: configPath, dataDir: dataDir}, nil
}
