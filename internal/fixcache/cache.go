// Package fixcache remembers the digest of every fixture file written into
// an output directory so unchanged files are not rewritten.
package fixcache

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// ManifestName is the file the cache keeps inside the output directory.
const ManifestName = ".irforge-cache.mp"

// Current schema version - increment when manifest format changes
const schemaVersion uint16 = 1

// Digest is the SHA-256 of a written file.
type Digest [sha256.Size]byte

// Sum hashes file contents.
func Sum(data []byte) Digest { return sha256.Sum256(data) }

// Entry describes one written fixture.
type Entry struct {
	Digest  Digest
	Dialect string
	Size    int64
}

type manifest struct {
	Schema  uint16
	Entries map[string]Entry
}

// Cache is safe for concurrent use by the generate workers.
type Cache struct {
	mu      sync.RWMutex
	dir     string
	entries map[string]Entry
	dirty   bool
}

// Open loads the manifest in dir. A missing manifest, or one written with
// another schema, yields an empty cache.
func Open(dir string) (*Cache, error) {
	c := &Cache{dir: dir, entries: make(map[string]Entry)}
	f, err := os.Open(filepath.Join(dir, ManifestName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return nil, err
	}
	defer f.Close()

	var m manifest
	if err := msgpack.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("fixcache: decode %s: %w", f.Name(), err)
	}
	if m.Schema != schemaVersion {
		c.dirty = true
		return c, nil
	}
	if m.Entries != nil {
		c.entries = m.Entries
	}
	return c, nil
}

// Unchanged reports whether rel was last written with the same contents
// and dialect and the file on disk still has the recorded size.
func (c *Cache) Unchanged(rel, dialect string, d Digest) bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	e, ok := c.entries[filepath.ToSlash(rel)]
	c.mu.RUnlock()
	if !ok || e.Digest != d || e.Dialect != dialect {
		return false
	}
	info, err := os.Stat(filepath.Join(c.dir, rel))
	return err == nil && info.Size() == e.Size
}

// Record stores the entry for rel.
func (c *Cache) Record(rel, dialect string, d Digest, size int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[filepath.ToSlash(rel)] = Entry{Digest: d, Dialect: dialect, Size: size}
	c.dirty = true
}

// Len returns the number of recorded files.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Save writes the manifest if anything was recorded since Open.
func (c *Cache) Save() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(c.dir, "tmp-cache-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := msgpack.NewEncoder(f).Encode(&manifest{Schema: schemaVersion, Entries: c.entries}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// atomic replace
	if err := os.Rename(tmp, filepath.Join(c.dir, ManifestName)); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Drop forgets every entry and removes the manifest.
func (c *Cache) Drop() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
	c.dirty = false
	err := os.Remove(filepath.Join(c.dir, ManifestName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
