// Package record implements the single key/value record owned by a node.
package record

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Record is a key/value pair of integers.
type Record struct {
	Key   int `json:"key"`
	Value int `json:"value"`
}

// New creates a Record.
func New(key, value int) Record {
	return Record{Key: key, Value: value}
}

// Parse parses the key:value form of a record.
func Parse(s string) (Record, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Record{}, fmt.Errorf("record %q should be key:value", s)
	}

	key, err := strconv.Atoi(parts[0])
	if err != nil {
		return Record{}, fmt.Errorf("record %q has a non-numeric key", s)
	}

	value, err := strconv.Atoi(parts[1])
	if err != nil {
		return Record{}, fmt.Errorf("record %q has a non-numeric value", s)
	}

	return New(key, value), nil
}

// String returns the key:value form of the record.
func (r Record) String() string {
	return strconv.Itoa(r.Key) + ":" + strconv.Itoa(r.Value)
}

// Cell holds the current record of a node. A node always has a record: it can
// be replaced wholesale but not removed. All methods are safe for concurrent
// use and each one is a single atomic update.
type Cell struct {
	mu  sync.RWMutex
	rec Record
}

// NewCell creates a Cell holding the given record.
func NewCell(r Record) *Cell {
	return &Cell{rec: r}
}

// Get returns the current record.
func (c *Cell) Get() Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rec
}

// Replace swaps the whole record and returns the previous one.
func (c *Cell) Replace(r Record) Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.rec
	c.rec = r
	return old
}

// SetValue updates the value if the current key matches. It reports whether
// the record was updated.
func (c *Cell) SetValue(key, value int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rec.Key != key {
		return false
	}
	c.rec.Value = value
	return true
}

// Lookup returns the record if its key matches.
func (c *Cell) Lookup(key int) (Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.rec.Key != key {
		return Record{}, false
	}
	return c.rec, true
}
