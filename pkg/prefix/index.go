// Package prefix implements the byte-keyed prefix tree used to answer
// "every term starting with q" queries over a dictionary's key set.
//
// The tree is a compressed Patricia trie. Matches are emitted in depth-first
// pre-order with children visited in ascending byte order, so results come back
// in byte-wise lexicographic order and a term always precedes its extensions:
//
//	ix := prefix.New()
//	ix.Insert("cat")
//	ix.Insert("car")
//	ix.Insert("dog")
//	ix.Search("ca") // ["car", "cat"]
//
// There is no deletion. An Index is built once and then only read.
package prefix

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

var errStopWalk = errors.New("stop walk")

// terminal marks a node that ends an inserted term.
type terminal struct{}

// Index is a prefix tree over a set of terms.
type Index struct {
	trie *patricia.Trie
	// the root of the trie cannot carry an item, so the empty term is tracked here.
	empty bool
	count int
}

// New returns an empty Index.
func New() *Index {
	return &Index{trie: patricia.NewTrie()}
}

// Insert adds term to the index. Inserting an existing term is a no-op.
func (ix *Index) Insert(term string) {
	if term == "" {
		if !ix.empty {
			ix.empty = true
			ix.count++
		}
		return
	}
	if ix.trie.Insert(patricia.Prefix(term), terminal{}) {
		ix.count++
	}
}

// Len returns the number of distinct terms.
func (ix *Index) Len() int {
	return ix.count
}

// Search returns every term that starts with query. An unknown prefix yields
// an empty result; there is no fuzzy fallback.
func (ix *Index) Search(query string) []string {
	results := []string{}
	if query == "" && ix.empty {
		results = append(results, "")
	}

	err := ix.trie.VisitSubtree(patricia.Prefix(query), func(p patricia.Prefix, item patricia.Item) error {
		if item == nil {
			return nil
		}
		results = append(results, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting prefix subtree for %q: %v", query, err)
	}
	return results
}

// Walk calls fn for every term in traversal order until fn returns false.
func (ix *Index) Walk(fn func(term string) bool) {
	if ix.empty && !fn("") {
		return
	}
	err := ix.trie.Visit(func(p patricia.Prefix, item patricia.Item) error {
		if item == nil {
			return nil
		}
		if !fn(string(p)) {
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		log.Errorf("Error walking prefix index: %v", err)
	}
}
