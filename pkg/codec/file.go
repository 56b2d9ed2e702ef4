package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/ianlewis/go-dictzip"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	// ErrBadMagic is returned when the header does not start with the file magic.
	ErrBadMagic = errors.New("not a wordlook dictionary file")
	// ErrTruncated is returned when the file ends before the header or payload.
	ErrTruncated = errors.New("truncated dictionary file")
)

var magic = [4]byte{'W', 'L', 'D', 'X'}

// header is the fixed part at the start of every file.
type header struct {
	Magic [4]byte
	Major uint16
	Minor uint16
	Patch uint16
	Flags uint16
}

// HeaderSize is the encoded size of the file header in bytes.
var HeaderSize = binary.Size(header{})

// File is a dictionary file whose header has been read and validated. The
// payload stays compressed until Dictionary is called.
type File struct {
	Version Version
	payload []byte
}

// ReadFile reads the whole file at path and validates its header.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// Read reads a dictionary file from r and validates its header.
func Read(r io.Reader) (*File, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if h.Magic != magic {
		return nil, ErrBadMagic
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	if len(payload) == 0 {
		return nil, ErrTruncated
	}

	v := Version{Major: h.Major, Minor: h.Minor, Patch: h.Patch}
	log.Debugf("Read dictionary header: version=%s, payload=%d bytes", v, len(payload))
	return &File{Version: v, payload: payload}, nil
}

// Dictionary decompresses and decodes the payload.
func (f *File) Dictionary() (*Dictionary, error) {
	z, err := dictzip.NewReader(bytes.NewReader(f.payload))
	if err != nil {
		return nil, fmt.Errorf("opening payload: %w", err)
	}
	defer z.Close()

	raw, err := io.ReadAll(z)
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}

	var d Dictionary
	if err := msgpack.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	if d.Entries == nil {
		d.Entries = make(map[string]Entry)
	}
	for term, e := range d.Entries {
		if e.Term == "" {
			e.Term = term
			d.Entries[term] = e
		}
	}
	return &d, nil
}
