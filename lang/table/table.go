// Package table implements the open-addressed, linearly probed hash table
// used to intern strings (spec §4.2). It is deliberately hand-rolled rather
// than built on a generic map or on github.com/dolthub/swiss (used
// elsewhere in this module for the VM's globals): the collector needs to
// walk every entry as a *weak* reference to prune dead strings between the
// mark and sweep phases, which requires direct access to tombstone slots
// that a black-box map type does not expose.
package table

import "github.com/emberlang/ember/lang/object"

const maxLoad = 0.75

// entry is one slot in the table. used=false means the slot has never held
// anything; used=true with key==nil means a tombstone left behind by
// Delete, which must not stop a probe sequence from continuing past it.
type entry struct {
	key   *object.String
	value interface{}
	used  bool
}

// Table is the hash table described in spec §4.2. count tracks live entries
// plus tombstones (as clox does: a tombstone still occupies a probe slot, so
// it must still count against the load factor), which is what Capacity/
// Count's invariant in spec §8 refers to.
type Table struct {
	entries []entry
	count   int
}

// Count returns the number of occupied slots, live entries and tombstones
// alike, matching the quantity the 0.75 load factor is measured against.
func (t *Table) Count() int { return t.count }

// Capacity returns the table's current slot count, always 0 or a power of
// two.
func (t *Table) Capacity() int { return len(t.entries) }

func findEntry(entries []entry, key *object.String) int {
	mask := uint32(len(entries) - 1)
	index := key.Hash & mask
	tombstone := -1
	for {
		e := &entries[index]
		switch {
		case !e.used:
			if tombstone != -1 {
				return tombstone
			}
			return int(index)
		case e.key == nil:
			// tombstone
			if tombstone == -1 {
				tombstone = int(index)
			}
		case e.key == key:
			return int(index)
		}
		index = (index + 1) & mask
	}
}

func (t *Table) adjustCapacity(newCap int) {
	entries := make([]entry, newCap)
	count := 0
	for i := range t.entries {
		old := &t.entries[i]
		if old.key == nil {
			continue // drop empty slots and tombstones alike
		}
		dst := findEntry(entries, old.key)
		entries[dst] = entry{key: old.key, value: old.value, used: true}
		count++
	}
	t.entries = entries
	t.count = count
}

func (t *Table) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	t.adjustCapacity(newCap)
}

// Get returns the value associated with key, if any.
func (t *Table) Get(key *object.String) (interface{}, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := &t.entries[findEntry(t.entries, key)]
	if e.key == nil {
		return nil, false
	}
	return e.value, true
}

// Set inserts or updates key -> v, growing the table first if inserting
// would push the load factor past 0.75. It reports whether key was not
// already present.
func (t *Table) Set(key *object.String, v interface{}) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		t.grow()
	}

	e := &t.entries[findEntry(t.entries, key)]
	isNewKey := e.key == nil
	if isNewKey && !e.used {
		t.count++
	}
	*e = entry{key: key, value: v, used: true}
	return isNewKey
}

// Delete removes key from the table, replacing its slot with a tombstone so
// that later probe sequences through this slot are not broken. count is left
// unchanged, since the tombstone still occupies the slot.
func (t *Table) Delete(key *object.String) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := &t.entries[findEntry(t.entries, key)]
	if e.key == nil {
		return false
	}
	*e = entry{used: true}
	return true
}

// FindString walks the probe sequence comparing (length, hash, content),
// returning the canonical interned string if one with this exact content
// already exists. It is the only way new strings should be interned: see
// Intern.
func (t *Table) FindString(chars string, hash uint32) *object.String {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint32(len(t.entries) - 1)
	index := hash & mask
	for {
		e := &t.entries[index]
		if !e.used {
			return nil
		}
		if e.key != nil && e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) & mask
	}
}

// Intern returns the canonical *object.String for chars, allocating a new
// one via newFn only if no equal string is already interned.
func (t *Table) Intern(chars string, hash uint32, newFn func() *object.String) *object.String {
	if s := t.FindString(chars, hash); s != nil {
		return s
	}
	s := newFn()
	t.Set(s, true)
	return s
}

// RemoveUnmarked deletes every entry whose key has not been marked by the
// current collection cycle. It must run after the mark phase has finished
// tracing reachable objects and before sweep frees them, so that the table
// never outlives a string it is the last weak reference to.
func (t *Table) RemoveUnmarked() {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && !e.key.Marked {
			*e = entry{used: true}
		}
	}
}

// Keys calls yield once for every live interned string, for root-marking.
func (t *Table) Keys(yield func(*object.String)) {
	for i := range t.entries {
		if k := t.entries[i].key; k != nil {
			yield(k)
		}
	}
}
