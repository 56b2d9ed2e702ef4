package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/charmbracelet/log"
)

// FileInfo describes a dictionary file by its header only.
type FileInfo struct {
	Path       string
	Name       string
	Version    codec.Version
	Compatible bool
	Size       int64
}

// Discover returns one unloaded dictionary per dictionary file in dir, ordered
// by file name. A missing dir yields no dictionaries.
func Discover(dir string) ([]*Lazy, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan for dictionary files: %w", err)
	}

	var dicts []*Lazy
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsDictionaryFile(e.Name()) {
			continue
		}
		dicts = append(dicts, NewLazy(filepath.Join(dir, e.Name())))
	}
	log.Debugf("Discovered %d dictionaries in %s", len(dicts), dir)
	return dicts, nil
}

// IsDictionaryFile reports whether name has the dictionary file extension.
func IsDictionaryFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), codec.Ext)
}

// Probe reads the header of the file at path without decoding its entries.
func Probe(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if stat.Size() < int64(codec.HeaderSize) {
		return nil, &FormatError{Path: path, Err: codec.ErrTruncated}
	}

	f, err := codec.ReadFile(path)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return &FileInfo{
		Path:       path,
		Name:       stem(path),
		Version:    f.Version,
		Compatible: IsCompatible(f.Version),
		Size:       stat.Size(),
	}, nil
}
