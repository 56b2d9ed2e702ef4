package dictionary

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/bastiangx/wordlook/internal/utils"
	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/charmbracelet/log"
)

// ImportResult is a dictionary copied into managed storage.
type ImportResult struct {
	Dictionary *codec.Dictionary
	Path       string
}

// Import reads the dictionary named by locator, checks its version and writes
// it into storageDir under a name derived from the dictionary itself. An
// existing file is never overwritten.
//
// locator is a local path or a file:// URL.
func Import(storageDir, locator string) (*ImportResult, error) {
	start := time.Now()

	src, err := ResolveLocator(locator)
	if err != nil {
		return nil, err
	}

	log.Debugf("Reading dictionary from %s...", src)
	d, err := readDictionary(src)
	if err != nil {
		return nil, err
	}

	if err := utils.EnsureDir(storageDir); err != nil {
		return nil, &WriteError{Path: storageDir, Err: err}
	}

	target := filepath.Join(storageDir, TargetName(d, src)+codec.Ext)
	if utils.FileExists(target) {
		return nil, &DuplicateTargetError{Path: target}
	}

	log.Debugf("Writing dictionary to %s...", target)
	if err := codec.CreateFile(target, d, nil); err != nil {
		if codec.IsExist(err) {
			return nil, &DuplicateTargetError{Path: target}
		}
		return nil, &WriteError{Path: target, Err: err}
	}

	log.Debugf("Import of %s took [ %v ]", src, time.Since(start))
	return &ImportResult{Dictionary: d, Path: target}, nil
}

// TargetName returns the storage file name (without extension) for d. The
// declared name is used with path separators replaced by "|". Unnamed
// dictionaries take the stem of src, which is also recorded as their name.
func TargetName(d *codec.Dictionary, src string) string {
	if d.Name != "" {
		return strings.NewReplacer("/", "|", "\\", "|").Replace(d.Name)
	}
	d.Name = stem(src)
	return d.Name
}

// ResolveLocator turns an import locator into a local file path.
func ResolveLocator(locator string) (string, error) {
	if strings.TrimSpace(locator) == "" {
		return "", &UnsupportedSourceError{Locator: locator}
	}

	u, err := url.Parse(locator)
	// single letter schemes are drive letters
	if err != nil || len(u.Scheme) <= 1 {
		return filepath.Clean(locator), nil
	}
	if u.Scheme != "file" {
		return "", &UnsupportedSourceError{Locator: locator, Scheme: u.Scheme}
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", &UnsupportedSourceError{Locator: locator, Scheme: u.Scheme}
	}
	if u.Path == "" {
		return "", &UnsupportedSourceError{Locator: locator, Scheme: u.Scheme}
	}
	return filepath.FromSlash(u.Path), nil
}
