/*
Package codec reads and writes wordlook dictionary files (.wld).

A file is a fixed little-endian header followed by a dictzip stream:

	offset  size  field
	0       4     magic "WLDX"
	4       2     major version
	6       2     minor version
	8       2     patch version
	10      2     flags (reserved, zero)
	12      ...   dictzip(msgpack(Dictionary))

The header is readable without touching the payload, so callers can gate on the
declared version before paying for decompression and decoding:

	f, err := codec.ReadFile(path)
	if err != nil {
		return err
	}
	if f.Version.Less(minimum) {
		return fmt.Errorf("too old: %s", f.Version)
	}
	d, err := f.Dictionary()

Entries are opaque to the indexing layer; the model here exists so they can be
rendered and round-tripped.
*/
package codec

// Ext is the file extension of dictionary files in managed storage.
const Ext = ".wld"

// Dictionary is a named mapping from term to entry.
type Dictionary struct {
	Name    string           `msgpack:"name,omitempty"`
	Entries map[string]Entry `msgpack:"entries"`
}

// Entry is everything a dictionary says about one term.
type Entry struct {
	Term        string      `msgpack:"term"`
	Etymologies []Etymology `msgpack:"etymologies,omitempty"`
}

// Etymology groups senses that share an origin.
type Etymology struct {
	Description string  `msgpack:"description,omitempty"`
	Senses      []Sense `msgpack:"senses,omitempty"`
}

// Sense is one part-of-speech reading of a term.
type Sense struct {
	POS         string       `msgpack:"pos,omitempty"`
	Definitions []Definition `msgpack:"definitions,omitempty"`
	Groups      []Group      `msgpack:"groups,omitempty"`
}

// Group collects related definitions under a shared description.
type Group struct {
	Description string       `msgpack:"description,omitempty"`
	Definitions []Definition `msgpack:"definitions,omitempty"`
}

// Definition is a single meaning with optional usage examples and notes.
type Definition struct {
	Value    string   `msgpack:"value"`
	Examples []string `msgpack:"examples,omitempty"`
	Notes    []Note   `msgpack:"notes,omitempty"`
}

// Note annotates a definition.
type Note struct {
	Value    string   `msgpack:"value"`
	Examples []string `msgpack:"examples,omitempty"`
}

// NewDictionary returns an empty, named dictionary.
func NewDictionary(name string) *Dictionary {
	return &Dictionary{Name: name, Entries: make(map[string]Entry)}
}

// Add stores e under its term, replacing any previous entry.
func (d *Dictionary) Add(e Entry) {
	if d.Entries == nil {
		d.Entries = make(map[string]Entry)
	}
	d.Entries[e.Term] = e
}
