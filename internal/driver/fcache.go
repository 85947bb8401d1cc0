package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"surgelint/internal/diag"
)

// Current schema version - increment when findingsPayload format changes
const cacheSchemaVersion uint16 = 1

// FindingsCache хранит готовые находки по ключу бандла на диске.
// Thread-safe for concurrent access.
type FindingsCache struct {
	mu  sync.RWMutex
	dir string
}

// findingsPayload stores one module's materialized findings. Spans stay valid
// across runs because file IDs follow the bundle's file table order, and the
// key pins the bundle digest.
type findingsPayload struct {
	Schema     uint16
	Findings   []diag.Diagnostic
	Suppressed int
}

// OpenFindingsCache initializes and returns a disk cache at the standard
// location.
func OpenFindingsCache(app string) (*FindingsCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FindingsCache{dir: dir}, nil
}

// CacheKey derives the lookup key for one bundle: the bundle content, the
// lint configuration, the tool version and the registered lint set all
// invalidate it.
func CacheKey(bundleDigest, configDigest [32]byte, tool string, lints []string) [32]byte {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], cacheSchemaVersion)
	h.Write(schema[:])
	h.Write(bundleDigest[:])
	h.Write(configDigest[:])
	h.Write([]byte(tool))
	for _, name := range lints {
		h.Write([]byte{0})
		h.Write([]byte(name))
	}
	var key [32]byte
	h.Sum(key[:0])
	return key
}

func (c *FindingsCache) pathFor(key [32]byte) string {
	hexKey := hex.EncodeToString(key[:])
	// Для удобства читаемости/очистки — подкаталог "findings".
	return filepath.Join(c.dir, "findings", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *FindingsCache) Put(key [32]byte, payload *findingsPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. A missing entry
// or a schema mismatch is a miss, not an error.
func (c *FindingsCache) Get(key [32]byte, out *findingsPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", p, err)
	}
	if out.Schema != cacheSchemaVersion {
		return false, nil
	}
	return true, nil
}
