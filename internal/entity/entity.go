// Package entity provides densely numbered, append-only tables addressed by
// typed integer keys. Every cross-reference inside a function is one of these
// keys, never a pointer.
package entity

import (
	"iter"

	"tlog.app/go/errors"
)

// Key is implemented by every entity reference type.
type Key interface {
	~uint32
}

// Capacity ceilings. Instructions, EBBs and values share the primary limit,
// every other table uses the secondary one.
const (
	MaxPrimary   = 1<<31 - 1
	MaxSecondary = 1<<32 - 1

	// MaxArgs bounds EBB parameter lists and signature parameter lists.
	MaxArgs = 1 << 16
)

// Reserved is the key value that never names a real entity.
const Reserved = ^uint32(0)

// ErrCapacity is returned when a table or list would grow past its ceiling.
var ErrCapacity = errors.New("capacity exceeded")

// CheckCapacity returns ErrCapacity wrapped with the table name when n
// entries exceed limit.
func CheckCapacity(name string, n, limit uint64) error {
	if n > limit {
		return errors.Wrap(ErrCapacity, "%s: %d entries, limit %d", name, n, limit)
	}

	return nil
}

// Table is an append-only vector of V addressed by K.
type Table[K Key, V any] struct {
	name  string
	limit uint64
	data  []V
}

// NewTable returns an empty table. A zero limit means MaxSecondary.
func NewTable[K Key, V any](name string, limit uint64) *Table[K, V] {
	if limit == 0 || limit > MaxSecondary {
		limit = MaxSecondary
	}

	return &Table[K, V]{name: name, limit: limit}
}

// Name returns the table name used in error messages.
func (t *Table[K, V]) Name() string { return t.name }

// Limit returns the capacity ceiling.
func (t *Table[K, V]) Limit() uint64 { return t.limit }

// Len returns the number of entries.
func (t *Table[K, V]) Len() int { return len(t.data) }

// Push appends v and returns its key.
func (t *Table[K, V]) Push(v V) (K, error) {
	n := uint64(len(t.data))

	if err := CheckCapacity(t.name, n+1, t.limit); err != nil {
		return K(Reserved), err
	}

	t.data = append(t.data, v)

	return K(n), nil
}

// Valid reports whether k names an existing entry.
func (t *Table[K, V]) Valid(k K) bool {
	return uint64(k) < uint64(len(t.data))
}

// Get returns a pointer to the entry for k, or false if k is out of bounds.
func (t *Table[K, V]) Get(k K) (*V, bool) {
	if !t.Valid(k) {
		return nil, false
	}

	return &t.data[k], true
}

// At returns a pointer to the entry for k. It panics if k is out of bounds;
// callers validate keys first.
func (t *Table[K, V]) At(k K) *V {
	return &t.data[k]
}

// All iterates over entries in key order.
func (t *Table[K, V]) All() iter.Seq2[K, *V] {
	return func(yield func(K, *V) bool) {
		for i := range t.data {
			if !yield(K(i), &t.data[i]) {
				return
			}
		}
	}
}

// Keys iterates over keys in order.
func (t *Table[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for i := range t.data {
			if !yield(K(i)) {
				return
			}
		}
	}
}

// SecondaryMap associates data with keys of a primary table. Reads of keys
// never written return the default value.
type SecondaryMap[K Key, V any] struct {
	data []V
	def  V
}

// NewSecondaryMap returns an empty map with the given default.
func NewSecondaryMap[K Key, V any](def V) *SecondaryMap[K, V] {
	return &SecondaryMap[K, V]{def: def}
}

// Get returns the value for k, or the default.
func (m *SecondaryMap[K, V]) Get(k K) V {
	if uint64(k) < uint64(len(m.data)) {
		return m.data[k]
	}

	return m.def
}

// Set stores v for k, growing the map as needed.
func (m *SecondaryMap[K, V]) Set(k K, v V) {
	m.grow(k)
	m.data[k] = v
}

// Ref returns a pointer to the slot for k, growing the map as needed.
func (m *SecondaryMap[K, V]) Ref(k K) *V {
	m.grow(k)
	return &m.data[k]
}

// Len returns one past the highest key that has a slot.
func (m *SecondaryMap[K, V]) Len() int { return len(m.data) }

// Clear resets every slot to the default keeping the allocation.
func (m *SecondaryMap[K, V]) Clear() {
	for i := range m.data {
		m.data[i] = m.def
	}
}

func (m *SecondaryMap[K, V]) grow(k K) {
	for uint64(len(m.data)) <= uint64(k) {
		m.data = append(m.data, m.def)
	}
}
