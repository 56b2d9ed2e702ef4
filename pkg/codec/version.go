package codec

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the format version declared in a file header.
type Version struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// CurrentVersion is written by this package unless WriteOptions says otherwise.
var CurrentVersion = Version{Major: 2, Minor: 8, Patch: 0}

// Compare returns -1, 0 or 1 ordering v against o by (major, minor, patch).
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpUint16(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpUint16(v.Minor, o.Minor)
	default:
		return cmpUint16(v.Patch, o.Patch)
	}
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses "major.minor.patch". Missing minor or patch parts are zero.
func ParseVersion(s string) (Version, error) {
	var v Version
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(s), "v"), ".")
	if len(parts) == 0 || len(parts) > 3 || parts[0] == "" {
		return v, fmt.Errorf("invalid version %q", s)
	}
	fields := []*uint16{&v.Major, &v.Minor, &v.Patch}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		*fields[i] = uint16(n)
	}
	return v, nil
}

func cmpUint16(a, b uint16) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
