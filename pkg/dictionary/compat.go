package dictionary

import "github.com/bastiangx/wordlook/pkg/codec"

// MinVersion is the oldest file format version this build can read.
var MinVersion = codec.Version{Major: 2, Minor: 8, Patch: 0}

// IsCompatible reports whether v is at least MinVersion. Later major versions
// are accepted.
func IsCompatible(v codec.Version) bool {
	return !v.Less(MinVersion)
}

// CheckVersion returns a *VersionError for the file at path when v is older
// than MinVersion.
func CheckVersion(path string, v codec.Version) error {
	if IsCompatible(v) {
		return nil
	}
	return &VersionError{Path: path, Declared: v, Minimum: MinVersion}
}
