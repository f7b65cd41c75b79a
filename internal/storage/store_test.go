package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestCollection(t *testing.T, dir string) *Collection[record] {
	t.Helper()
	c, err := NewCollection(dir, "records",
		func(r *record) string { return r.ID },
		func(r *record, id string) { r.ID = id },
	)
	require.NoError(t, err)
	return c
}

func TestCollection_CRUD(t *testing.T) {
	t.Run("Should assign a UUID on insert and round-trip the record", func(t *testing.T) {
		c := newTestCollection(t, t.TempDir())

		r := record{Name: "first"}
		require.NoError(t, c.Put(&r))
		require.NotEmpty(t, r.ID)

		got, err := c.Get(r.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.Name)
	})

	t.Run("Should replace the record with the same ID", func(t *testing.T) {
		c := newTestCollection(t, t.TempDir())

		r := record{Name: "before"}
		require.NoError(t, c.Put(&r))

		r.Name = "after"
		require.NoError(t, c.Put(&r))

		all, err := c.List()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "after", all[0].Name)
	})

	t.Run("Should return ErrNotFound for missing records", func(t *testing.T) {
		c := newTestCollection(t, t.TempDir())

		_, err := c.Get("missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, c.Delete("missing"), ErrNotFound)
	})

	t.Run("Should delete a record", func(t *testing.T) {
		c := newTestCollection(t, t.TempDir())

		r := record{Name: "gone soon"}
		require.NoError(t, c.Put(&r))
		require.NoError(t, c.Delete(r.ID))

		_, err := c.Get(r.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCollection_Resilience(t *testing.T) {
	t.Run("Should treat a corrupt file as empty", func(t *testing.T) {
		dir := t.TempDir()
		c := newTestCollection(t, dir)

		path := filepath.Join(dir, "records.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		all, err := c.List()
		require.NoError(t, err)
		assert.Empty(t, all)

		// Writes recover the file.
		r := record{Name: "fresh"}
		require.NoError(t, c.Put(&r))
		all, err = c.List()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Should survive reopening the same file", func(t *testing.T) {
		dir := t.TempDir()
		c := newTestCollection(t, dir)

		r := record{Name: "durable"}
		require.NoError(t, c.Put(&r))

		reopened := newTestCollection(t, dir)
		got, err := reopened.Get(r.ID)
		require.NoError(t, err)
		assert.Equal(t, "durable", got.Name)
	})
}

func TestCollection_Seed(t *testing.T) {
	t.Run("Should seed only an empty collection", func(t *testing.T) {
		c := newTestCollection(t, t.TempDir())

		require.NoError(t, c.Seed([]record{{Name: "a"}, {Name: "b"}}))
		all, err := c.List()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.NotEmpty(t, all[0].ID)

		require.NoError(t, c.Seed([]record{{Name: "c"}}))
		all, err = c.List()
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestCollection_Update(t *testing.T) {
	t.Run("Should apply a bulk mutation in one cycle", func(t *testing.T) {
		c := newTestCollection(t, t.TempDir())
		require.NoError(t, c.Seed([]record{{Name: "x"}, {Name: "y"}}))

		err := c.Update(func(records []record) ([]record, bool) {
			for i := range records {
				records[i].Name = "z"
			}
			return records, true
		})
		require.NoError(t, err)

		all, err := c.List()
		require.NoError(t, err)
		for _, r := range all {
			assert.Equal(t, "z", r.Name)
		}
	})

	t.Run("Should skip the write when nothing changed", func(t *testing.T) {
		dir := t.TempDir()
		c := newTestCollection(t, dir)
		require.NoError(t, c.Seed([]record{{Name: "x"}}))

		before, err := os.Stat(filepath.Join(dir, "records.json"))
		require.NoError(t, err)

		err = c.Update(func(records []record) ([]record, bool) {
			return records, false
		})
		require.NoError(t, err)

		after, err := os.Stat(filepath.Join(dir, "records.json"))
		require.NoError(t, err)
		assert.Equal(t, before.ModTime(), after.ModTime())
	})
}
