package dictionary

import (
	"time"

	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/charmbracelet/log"
)

// LoadFromPath reads, version-checks and decodes the file at path and builds
// its index. Errors are *FormatError or *VersionError.
func LoadFromPath(path string) (*Index, error) {
	start := time.Now()
	d, err := readDictionary(path)
	if err != nil {
		return nil, err
	}
	ix := Build(d)
	log.Debugf("Loaded %s (%d terms) in [ %v ]", path, ix.Len(), time.Since(start))
	return ix, nil
}

// readDictionary runs the version gate between reading the header and
// decoding the payload.
func readDictionary(path string) (*codec.Dictionary, error) {
	f, err := codec.ReadFile(path)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	if err := CheckVersion(path, f.Version); err != nil {
		return nil, err
	}
	d, err := f.Dictionary()
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	return d, nil
}
