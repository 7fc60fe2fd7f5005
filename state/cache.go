// Package state implements the per-invocation hook-state cache: a staged
// mapping from 32-byte key to blob with deferred, all-or-nothing write-back
// to the ledger.
package state

import "sort"

// Entry is one staged row. Modified entries are written back at commit;
// unmodified entries only cache a ledger read. An empty value on a
// modified entry deletes the row at commit.
type Entry struct {
	Modified bool
	Value    []byte
}

// Key is a hook-state key, left-zero-padded to 32 bytes.
type Key = [32]byte

// MakeKey pads a 1..32 byte input into a Key. ok is false outside that
// range.
func MakeKey(src []byte) (Key, bool) {
	var k Key
	if len(src) < 1 || len(src) > 32 {
		return k, false
	}
	copy(k[32-len(src):], src)
	return k, true
}

// Cache stages hook-state reads and writes for one invocation.
type Cache struct {
	entries map[Key]Entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[Key]Entry)}
}

// Get returns the staged entry for key.
func (c *Cache) Get(key Key) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Set stages a write. The value is copied; an empty value marks deletion.
func (c *Cache) Set(key Key, value []byte) {
	c.entries[key] = Entry{Modified: true, Value: append([]byte(nil), value...)}
}

// StageRead records a ledger read so later reads hit the cache. It never
// downgrades a staged write.
func (c *Cache) StageRead(key Key, value []byte) {
	if e, ok := c.entries[key]; ok && e.Modified {
		return
	}
	c.entries[key] = Entry{Value: append([]byte(nil), value...)}
}

// ModifiedKeys returns the keys with staged writes in sorted order, so
// commit application is deterministic.
func (c *Cache) ModifiedKeys() []Key {
	keys := make([]Key, 0, len(c.entries))
	for k, e := range c.entries {
		if e.Modified {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		for n := 0; n < len(a); n++ {
			if a[n] != b[n] {
				return a[n] < b[n]
			}
		}
		return false
	})
	return keys
}

// Len returns the number of staged entries, reads included.
func (c *Cache) Len() int { return len(c.entries) }
