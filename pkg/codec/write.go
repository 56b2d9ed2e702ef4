package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ianlewis/go-dictzip"
	"github.com/vmihailenco/msgpack/v5"
)

// WriteOptions control how a dictionary is encoded.
type WriteOptions struct {
	// Version is the version declared in the header.
	Version *Version
}

// GetVersion returns the version to declare; nil options use CurrentVersion.
func (o *WriteOptions) GetVersion() Version {
	if o == nil || o.Version == nil {
		return CurrentVersion
	}
	return *o.Version
}

// Encode writes d to w as a complete dictionary file.
//
// The dictzip writer needs to seek back over its own header once the chunk
// table is known, so the payload is staged in a temporary file first.
func Encode(w io.Writer, d *Dictionary, opts *WriteOptions) error {
	tmp, err := os.CreateTemp("", "wordlook-*.dz")
	if err != nil {
		return fmt.Errorf("staging payload: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	z, err := dictzip.NewWriter(tmp)
	if err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}
	enc := msgpack.NewEncoder(z)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(d); err != nil {
		z.Close()
		return fmt.Errorf("encoding payload: %w", err)
	}
	if err := z.Close(); err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}

	v := opts.GetVersion()
	h := header{Magic: magic, Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("staging payload: %w", err)
	}
	if _, err := io.Copy(w, tmp); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}
	return nil
}

// WriteFile writes d to path, replacing any existing file.
func WriteFile(path string, d *Dictionary, opts *WriteOptions) error {
	return writeFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, d, opts)
}

// CreateFile writes d to a new file at path. It fails with an error matching
// fs.ErrExist if the path is already taken, and removes the file again if
// writing fails part way.
func CreateFile(path string, d *Dictionary, opts *WriteOptions) error {
	return writeFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, d, opts)
}

func writeFile(path string, flag int, d *Dictionary, opts *WriteOptions) (err error) {
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := Encode(f, d, opts); err != nil {
		return err
	}
	return f.Sync()
}

// IsExist reports whether err is the result of CreateFile finding an existing file.
func IsExist(err error) bool {
	return errors.Is(err, os.ErrExist)
}
