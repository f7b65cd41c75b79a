package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mihira/deskpulse/pkg/logger"
)

// ErrNotFound is returned when no record matches the requested ID.
var ErrNotFound = errors.New("record not found")

// Collection is a flat-JSON keyed record store: one JSON array per
// entity type, read whole and written whole. A per-collection mutex
// serializes read-modify-write cycles in process, and a flock file
// lock excludes concurrent processes.
type Collection[T any] struct {
	path  string
	mu    sync.Mutex
	flock *flock.Flock

	id    func(*T) string
	setID func(*T, string)
}

// NewCollection opens (or creates) the collection file under dir.
// id and setID give the store access to the record's key field.
func NewCollection[T any](dir, name string, id func(*T) string, setID func(*T, string)) (*Collection[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %v", err)
	}

	path := filepath.Join(dir, name+".json")
	c := &Collection[T]{
		path:  path,
		flock: flock.New(path + ".lock"),
		id:    id,
		setID: setID,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := c.writeAll(nil); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Seed writes the given records only when the collection is empty.
func (c *Collection[T]) Seed(records []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := c.readAll()
	if len(existing) > 0 {
		return nil
	}
	for i := range records {
		if c.id(&records[i]) == "" {
			c.setID(&records[i], uuid.NewString())
		}
	}
	return c.lockedWrite(records)
}

// List returns every record in the collection.
func (c *Collection[T]) List() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readAll(), nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (c *Collection[T]) Get(id string) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, record := range c.readAll() {
		record := record
		if c.id(&record) == id {
			return &record, nil
		}
	}
	return nil, ErrNotFound
}

// Put inserts the record, assigning a fresh UUID when the ID is empty,
// or replaces the existing record with the same ID.
func (c *Collection[T]) Put(record *T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.id(record) == "" {
		c.setID(record, uuid.NewString())
	}

	records := c.readAll()
	replaced := false
	for i := range records {
		if c.id(&records[i]) == c.id(record) {
			records[i] = *record
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, *record)
	}
	return c.lockedWrite(records)
}

// Delete removes the record with the given ID. Returns ErrNotFound
// when no record matches.
func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.readAll()
	for i := range records {
		if c.id(&records[i]) == id {
			records = append(records[:i], records[i+1:]...)
			return c.lockedWrite(records)
		}
	}
	return ErrNotFound
}

// Update applies fn to every record and writes the result back in one
// locked cycle. fn reports whether anything changed.
func (c *Collection[T]) Update(fn func(records []T) ([]T, bool)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := c.readAll()
	updated, changed := fn(records)
	if !changed {
		return nil
	}
	return c.lockedWrite(updated)
}

// readAll loads the whole collection. A missing or corrupt file is
// treated as an empty collection, never an error.
func (c *Collection[T]) readAll() []T {
	data, err := os.ReadFile(c.path)
	if err != nil || len(data) == 0 {
		return nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		logger.Log.WithError(err).WithField("path", c.path).Warn("Corrupt collection file, treating as empty")
		return nil
	}
	return records
}

func (c *Collection[T]) lockedWrite(records []T) error {
	if err := c.flock.Lock(); err != nil {
		return fmt.Errorf("failed to lock collection file: %v", err)
	}
	defer c.flock.Unlock()
	return c.writeAll(records)
}

// writeAll persists the whole collection atomically via temp + rename.
func (c *Collection[T]) writeAll(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal collection: %v", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write collection: %v", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace collection file: %v", err)
	}
	return nil
}
