// Package dedup keeps the set of posting URLs already persisted, so detail
// pages the store knows about are never fetched again. File persistence is
// the store's job; the index lives only for the duration of a run.
package dedup

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Index is the in-memory seen-URL set, seeded from the store at startup.
type Index struct {
	seen mapset.Set[string]
}

// NewIndex builds an index over the URLs the store already holds.
func NewIndex(urls ...string) *Index {
	return &Index{seen: mapset.NewSet(urls...)}
}

// Seen reports whether the URL was stored by this or an earlier run.
func (i *Index) Seen(url string) bool {
	return i.seen.Contains(url)
}

// Add marks a URL as stored.
func (i *Index) Add(url string) {
	i.seen.Add(url)
}

// Len returns the number of known URLs, for the startup log line.
func (i *Index) Len() int {
	return i.seen.Cardinality()
}
