package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func TestInitConfigCreatesDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config (-want, +got):\n%s", diff)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), loaded); diff != "" {
		t.Errorf("reloaded config (-want, +got):\n%s", diff)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		data   string
		mutate func(*Config)
	}{
		{
			name: "full file",
			data: `
[storage]
data_dir = "/srv/dicts"
[search]
max_results = 50
workers = 4
[log]
level = "debug"
[state]
selected_index = 2
search_term = "cat"
`,
			mutate: func(c *Config) {
				c.Storage.DataDir = "/srv/dicts"
				c.Search.MaxResults = 50
				c.Search.Workers = 4
				c.Log.Level = "debug"
				c.State.SelectedIndex = 2
				c.State.SearchTerm = "cat"
			},
		},
		{
			name:   "missing sections keep defaults",
			data:   "[cli]\ndefault_limit = 5\n",
			mutate: func(c *Config) { c.CLI.DefaultLimit = 5 },
		},
		{
			name: "type errors recover other keys",
			data: `
[search]
max_results = "lots"
workers = 3
[state]
search_term = "dog"
`,
			mutate: func(c *Config) {
				c.Search.Workers = 3
				c.State.SearchTerm = "dog"
			},
		},
		{
			name:   "out of range values use defaults",
			data:   "[search]\nmax_results = 0\n[state]\nselected_index = -4\n",
			mutate: func(c *Config) {},
		},
		{
			name:   "unparseable file uses defaults",
			data:   "[search\nmax_results = ",
			mutate: func(c *Config) {},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.data), 0o644); err != nil {
				t.Fatal(err)
			}

			got, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			want := DefaultConfig()
			tc.mutate(want)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("config (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestSaveState(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := InitConfig(path)
	if err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if err := cfg.SaveState(path, 3, "wor"); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(StateConfig{SelectedIndex: 3, SearchTerm: "wor"}, got.State); diff != "" {
		t.Errorf("state (-want, +got):\n%s", diff)
	}

	// without a path only memory changes
	if err := got.SaveState("", 1, "x"); err != nil {
		t.Fatalf("SaveState(\"\"): %v", err)
	}
	if got.State.SelectedIndex != 1 || got.State.SearchTerm != "x" {
		t.Errorf("state = %+v", got.State)
	}
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[search]\nmax_results = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, used, err := LoadConfigWithPriority(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPriority: %v", err)
	}
	if used != path {
		t.Errorf("path = %q, want %q", used, path)
	}
	if cfg.Search.MaxResults != 7 {
		t.Errorf("MaxResults = %d, want 7", cfg.Search.MaxResults)
	}
}

func TestLoadConfigWithPriorityDefaultPath(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, used, err := LoadConfigWithPriority(filepath.Join(xdg, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadConfigWithPriority: %v", err)
	}
	if want := filepath.Join(xdg, AppName, "config.toml"); used != want {
		t.Errorf("path = %q, want %q", used, want)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config (-want, +got):\n%s", diff)
	}
}

func TestRebuildConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[search]\nmax_results = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := RebuildConfigFile(path)
	if err != nil || got != path {
		t.Fatalf("RebuildConfigFile() = %q, %v", got, err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.MaxResults != DefaultConfig().Search.MaxResults {
		t.Errorf("MaxResults = %d after rebuild", cfg.Search.MaxResults)
	}
}
