package headers

import (
	"iter"

	"github.com/indigo-web/utils/strcomp"
)

type Pair struct {
	Key, Value string
}

// Table is an ordered associative storage of header fields. Keys are compared case-insensitively
// on both reads and writes, so two names differing only in case refer to the same entry. Each
// name holds a single value: writing an existing name overwrites its value in place, preserving
// the position of the first insertion. The key spelling of the most recent write is kept for
// enumeration.
//
// Linear search is used instead of a map, as requests rarely carry more than a couple dozens
// of headers.
type Table struct {
	pairs []Pair
	keys  []string
}

func New() *Table {
	return NewPrealloc(0)
}

// NewPrealloc returns an instance of Table with pre-allocated underlying storage.
func NewPrealloc(n int) *Table {
	return &Table{
		pairs: make([]Pair, 0, n),
	}
}

// NewFromMap returns a new Table filled with the given pairs. As maps are unordered, the
// resulting order is unspecified.
func NewFromMap(m map[string]string) *Table {
	t := NewPrealloc(len(m))

	for key, value := range m {
		t.Set(key, value)
	}

	return t
}

// Set inserts the pair or overwrites the value of already existing one.
func (t *Table) Set(key, value string) *Table {
	if i := t.index(key); i != -1 {
		t.pairs[i] = Pair{Key: key, Value: value}
		return t
	}

	t.pairs = append(t.pairs, Pair{
		Key:   key,
		Value: value,
	})

	return t
}

// Get returns the value and a bool, indicating whether the key was found. If it wasn't,
// the value is an empty string.
func (t *Table) Get(key string) (value string, found bool) {
	if i := t.index(key); i != -1 {
		return t.pairs[i].Value, true
	}

	return "", false
}

// Value returns the value corresponding to the key, or an empty string.
func (t *Table) Value(key string) string {
	return t.GetOr(key, "")
}

// GetOr returns either the value corresponding to the key or the fallback.
func (t *Table) GetOr(key, or string) string {
	value, found := t.Get(key)
	if !found {
		return or
	}

	return value
}

// Has indicates, whether there's an entry of the key.
func (t *Table) Has(key string) bool {
	return t.index(key) != -1
}

// Remove deletes the entry, if presented. Order of the rest is preserved.
func (t *Table) Remove(key string) {
	i := t.index(key)
	if i == -1 {
		return
	}

	t.pairs = append(t.pairs[:i], t.pairs[i+1:]...)
}

// Keys returns all the presented keys in insertion order.
//
// WARNING: calling it twice will override values, returned by the first call. Consider
// copying the returned slice for safe use.
func (t *Table) Keys() []string {
	t.keys = t.keys[:0]

	for _, pair := range t.pairs {
		t.keys = append(t.keys, pair.Key)
	}

	return t.keys
}

// Iter returns an iterator over the pairs in insertion order.
func (t *Table) Iter() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, pair := range t.pairs {
			if !yield(pair.Key, pair.Value) {
				break
			}
		}
	}
}

// Expose exposes the underlying pairs slice.
func (t *Table) Expose() []Pair {
	return t.pairs
}

// Len returns a number of stored pairs.
func (t *Table) Len() int {
	return len(t.pairs)
}

func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Clone creates a deep copy, which may be safely stored after the request is reset.
func (t *Table) Clone() *Table {
	if len(t.pairs) == 0 {
		return New()
	}

	pairs := make([]Pair, len(t.pairs))
	copy(pairs, t.pairs)

	return &Table{pairs: pairs}
}

// Clear all the entries. However, all the allocated space won't be freed.
func (t *Table) Clear() *Table {
	t.pairs = t.pairs[:0]
	return t
}

func (t *Table) index(key string) int {
	for i, pair := range t.pairs {
		if strcomp.EqualFold(key, pair.Key) {
			return i
		}
	}

	return -1
}
