package crawler

import (
	"math/rand/v2"
	"time"

	"github.com/nao1215/urlextract/internal/model"
)

// Frontier is an unordered set of URLs waiting to be fetched.
// Pop removes an arbitrary member, so traversal order is neither FIFO nor
// depth-ordered. A Frontier is not safe for concurrent use.
type Frontier struct {
	items []model.CanonicalURL
	index map[model.CanonicalURL]int
	rnd   *rand.Rand
}

// NewFrontier creates an empty frontier. A nil rnd selects a time-seeded
// random source.
func NewFrontier(rnd *rand.Rand) *Frontier {
	if rnd == nil {
		now := uint64(time.Now().UnixNano())
		rnd = rand.New(rand.NewPCG(now, now>>1))
	}
	return &Frontier{
		items: make([]model.CanonicalURL, 0),
		index: make(map[model.CanonicalURL]int),
		rnd:   rnd,
	}
}

// Add inserts u. It reports false if u was already queued.
func (f *Frontier) Add(u model.CanonicalURL) bool {
	if _, ok := f.index[u]; ok {
		return false
	}
	f.index[u] = len(f.items)
	f.items = append(f.items, u)
	return true
}

// Has reports whether u is queued.
func (f *Frontier) Has(u model.CanonicalURL) bool {
	_, ok := f.index[u]
	return ok
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	return len(f.items)
}

// Pop removes and returns an arbitrary URL. It reports false when empty.
func (f *Frontier) Pop() (model.CanonicalURL, bool) {
	n := len(f.items)
	if n == 0 {
		return "", false
	}

	i := f.rnd.IntN(n)
	u := f.items[i]
	last := f.items[n-1]

	f.items[i] = last
	f.index[last] = i
	f.items = f.items[:n-1]
	delete(f.index, u)

	return u, true
}
