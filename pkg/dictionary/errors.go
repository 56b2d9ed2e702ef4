package dictionary

import (
	"errors"
	"fmt"

	"github.com/bastiangx/wordlook/pkg/codec"
)

var (
	// ErrNotLoaded is matched by every *NotLoadedError.
	ErrNotLoaded = errors.New("dictionary not loaded")
	// ErrDuplicateTarget is matched by every *DuplicateTargetError.
	ErrDuplicateTarget = errors.New("target already exists")

	errNoIndex = errors.New("load produced no index")
)

// FormatError reports a dictionary file that could not be read or decoded.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid dictionary file %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// VersionError reports a file whose declared format version is older than
// MinVersion.
type VersionError struct {
	Path     string
	Declared codec.Version
	Minimum  codec.Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("%s: requires format version ~%s, but found %s", e.Path, e.Minimum, e.Declared)
}

// NotLoadedError is returned by queries against a dictionary whose index is
// not available.
type NotLoadedError struct {
	Path  string
	State State
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("dictionary %s is %s", e.Path, e.State)
}

func (e *NotLoadedError) Is(target error) bool { return target == ErrNotLoaded }

// UnsupportedSourceError is returned for import locators that do not name a
// local file.
type UnsupportedSourceError struct {
	Locator string
	Scheme  string
}

func (e *UnsupportedSourceError) Error() string {
	if e.Scheme == "" {
		return fmt.Sprintf("%s is not a valid source", e.Locator)
	}
	return fmt.Sprintf("%s has unknown scheme: %s", e.Locator, e.Scheme)
}

// DuplicateTargetError is returned when an import would overwrite a file in
// managed storage.
type DuplicateTargetError struct {
	Path string
}

func (e *DuplicateTargetError) Error() string {
	return fmt.Sprintf("target path exists: %s", e.Path)
}

func (e *DuplicateTargetError) Is(target error) bool { return target == ErrDuplicateTarget }

// WriteError wraps an I/O failure while writing into managed storage.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
