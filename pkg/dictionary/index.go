package dictionary

import (
	"time"

	"github.com/bastiangx/wordlook/pkg/codec"
	"github.com/bastiangx/wordlook/pkg/prefix"
	"github.com/charmbracelet/log"
)

// Index is a decoded dictionary plus a prefix index over its terms. The
// prefix index holds exactly the dictionary's key set. An Index is never
// modified after Build returns.
type Index struct {
	dict   *codec.Dictionary
	prefix *prefix.Index
}

// Build indexes every term of d.
func Build(d *codec.Dictionary) *Index {
	start := time.Now()
	if d == nil {
		d = codec.NewDictionary("")
	}
	if d.Entries == nil {
		d.Entries = make(map[string]codec.Entry)
	}

	px := prefix.New()
	for term := range d.Entries {
		px.Insert(term)
	}

	log.Debugf("Indexed %d terms for %q in [ %v ]", px.Len(), d.Name, time.Since(start))
	return &Index{dict: d, prefix: px}
}

// Lookup returns the entry stored under exactly term.
func (ix *Index) Lookup(term string) (*codec.Entry, bool) {
	e, ok := ix.dict.Entries[term]
	if !ok {
		return nil, false
	}
	return &e, true
}

// Search returns all terms starting with query in byte order.
func (ix *Index) Search(query string) []string {
	return ix.prefix.Search(query)
}

// Name is the name declared inside the dictionary, possibly empty.
func (ix *Index) Name() string {
	return ix.dict.Name
}

// Len returns the number of terms.
func (ix *Index) Len() int {
	return len(ix.dict.Entries)
}

// Dictionary returns the decoded dictionary backing the index. Callers must not
// modify it.
func (ix *Index) Dictionary() *codec.Dictionary {
	return ix.dict
}

// Walk calls fn for every term in byte order until fn returns false.
func (ix *Index) Walk(fn func(term string) bool) {
	ix.prefix.Walk(fn)
}
