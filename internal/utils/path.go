package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
)

// PathResolver resolves the platform directories the binary works with.
type PathResolver struct {
	appName        string
	executablePath string
	executableDir  string
	homeDir        string
	dataDir        string
}

// NewPathResolver creates a resolver for appName's directories.
func NewPathResolver(appName string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks to get the actual binary location
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		appName:        appName,
		executablePath: execPath,
		executableDir:  filepath.Dir(execPath),
		homeDir:        homeDir,
		dataDir:        platformDataDir(appName, homeDir, runtime.GOOS),
	}
	log.Debugf("PathResolver initialized: exec=%s, dataDir=%s", execPath, pr.dataDir)
	return pr, nil
}

// platformDataDir returns the per-user data directory for goos.
func platformDataDir(appName, homeDir, goos string) string {
	switch goos {
	case "darwin":
		return filepath.Join(homeDir, "Library", "Application Support", appName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	default:
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, appName)
		}
		return filepath.Join(homeDir, ".local", "share", appName)
	}
}

// GetDataDir returns the managed storage directory, creating it if needed.
// A non-empty override replaces the platform default; relative overrides are
// taken from the working directory.
func (pr *PathResolver) GetDataDir(override string) (string, error) {
	dir := pr.dataDir
	if override != "" {
		dir = GetAbsolutePath(ExpandHome(override, pr.homeDir))
	}
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// ExpandHome replaces a leading "~/" with homeDir.
func ExpandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// GetRuntimeInfo returns debug information about the current runtime environment
func (pr *PathResolver) GetRuntimeInfo() map[string]string {
	cwd, _ := os.Getwd()

	info := map[string]string{
		"executable_path": pr.executablePath,
		"executable_dir":  pr.executableDir,
		"current_dir":     cwd,
		"home_dir":        pr.homeDir,
		"data_dir":        pr.dataDir,
		"os":              runtime.GOOS,
		"arch":            runtime.GOARCH,
	}

	envVars := []string{"HOME", "XDG_CONFIG_HOME", "XDG_DATA_HOME", "APPDATA"}
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			info["env_"+strings.ToLower(envVar)] = value
		}
	}
	return info
}
