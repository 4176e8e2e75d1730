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
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"regionck/internal/diag"
	"regionck/internal/regions"
	"regionck/internal/source"
)

// Current schema version - increment when CachePayload format changes
const cacheSchemaVersion uint16 = 1

// Digest is a SHA-256 value; source.File.Hash has the same shape.
type Digest [32]byte

// Cache хранит результаты проверки сценариев на диске, по ключу из
// содержимого файла и настроек проверки. Thread-safe.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is what gets stored per scenario file. Spans are stored
// with the file ID of the run that wrote them and are rebased on read.
type CachePayload struct {
	Schema      uint16
	Path        string
	Outcomes    []Outcome
	Diagnostics []diag.Diagnostic
}

// OpenCache opens the cache at dir, or at $XDG_CACHE_HOME/regionck
// (~/.cache/regionck) when dir is empty.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "regionck")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey derives the key of a file from its content hash and the
// options that can change its outcomes.
func CacheKey(content Digest, opts regions.Options) Digest {
	h := sha256.New()
	var buf [2 + 1 + 8]byte
	binary.LittleEndian.PutUint16(buf[0:2], cacheSchemaVersion)
	buf[2] = byte(opts.SelfFallback)
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = regions.DefaultMaxDepth
	}
	d, err := safecast.Conv[uint64](depth)
	if err != nil {
		d = 0
	}
	binary.LittleEndian.PutUint64(buf[3:], d)
	_, _ = h.Write(buf[:])
	_, _ = h.Write(content[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог по первым двум символам, чтобы не раздувать один каталог
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the cache.
func (c *Cache) Put(key Digest, payload *CachePayload) error {
	if c == nil || payload == nil {
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
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = cacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	committed = true
	return nil
}

// Get reads the payload for key. Entries written with another schema
// version read as misses. All spans are rebased onto file.
func (c *Cache) Get(key Digest, file source.FileID, out *CachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	var payload CachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode cache entry: %w", err)
	}
	if payload.Schema != cacheSchemaVersion {
		return false, nil
	}
	for i := range payload.Outcomes {
		payload.Outcomes[i].Span.File = file
	}
	for i := range payload.Diagnostics {
		d := &payload.Diagnostics[i]
		d.Primary.File = file
		for j := range d.Notes {
			d.Notes[j].Span.File = file
		}
	}
	*out = payload
	return true, nil
}

// DropAll invalidates the cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	results := filepath.Join(c.dir, "results")
	// переименуем каталог, чтобы параллельный запуск не увидел полупустой кэш
	old := results + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(results, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
