package cachestore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dshkol/cancensus-go/config"
	"github.com/dshkol/cancensus-go/errors"
	"github.com/dshkol/cancensus-go/frame"
	"github.com/dshkol/cancensus-go/geometry"
)

const (
	payloadSuffix = ".payload.json"
	metaSuffix    = ".meta.json"
)

// Payload is one cached response: the normalized table plus optional
// boundary geometry. A zero-row table is a legitimate payload; the store
// distinguishes it from a miss.
type Payload struct {
	Dataset   string               `json:"dataset"`
	Table     *frame.Table         `json:"table"`
	Geometry  *geometry.Collection `json:"geometry,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// EntryInfo describes a cached entry without deserializing its payload.
type EntryInfo struct {
	Key       string    `json:"key"`
	Dataset   string    `json:"dataset"`
	Rows      int       `json:"rows"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// HumanSize renders the approximate payload size for cache hygiene output.
func (e EntryInfo) HumanSize() string {
	return humanize.Bytes(uint64(e.SizeBytes))
}

// metaFile is the sidecar written next to each payload so List never has
// to read payloads.
type metaFile struct {
	Dataset   string    `json:"dataset"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the durable, file-based response cache. Entries never expire on
// their own: census releases are static. Concurrent writes to the same key
// are last-writer-wins via atomic rename.
type Store struct {
	dir    string
	logger *slog.Logger
}

// Option configures the store.
type Option func(*Store)

// WithLogger sets the structured logger. Nil keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New opens (creating if needed) the cache directory named by the
// configuration.
func New(cfg config.Config, opts ...Option) (*Store, error) {
	cfg = cfg.WithDefaults()
	if cfg.CacheDir == "" {
		return nil, errors.InvalidSpec("cachestore", "New", "cache dir is empty", nil)
	}
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "cachestore", "New", "create "+cfg.CacheDir)
	}
	s := &Store{dir: cfg.CacheDir, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) payloadPath(key string) string {
	return filepath.Join(s.dir, key+payloadSuffix)
}

func (s *Store) metaPath(key string) string {
	return filepath.Join(s.dir, key+metaSuffix)
}

// Get reads a cached payload. A miss returns (nil, false, nil); only a
// present-but-unreadable entry is an error.
func (s *Store) Get(key string) (*Payload, bool, error) {
	raw, err := os.ReadFile(s.payloadPath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "cachestore", "Get", "read "+key)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, errors.Parse("cachestore", "Get", "decode "+key, err)
	}
	// Put never writes a payload without a table; an entry missing one was
	// corrupted or hand-edited and must surface as unreadable, not as a hit.
	if p.Table == nil {
		return nil, false, errors.Parse("cachestore", "Get", "decode "+key, errors.ErrInvalidPayload)
	}
	s.logger.Debug("cache hit", "key", key, "dataset", p.Dataset)
	return &p, true, nil
}

// Put writes a payload under key. The payload and its sidecar meta are
// written to temp files and renamed into place, so readers never observe
// a partial entry and the last writer wins.
func (s *Store) Put(key string, p *Payload) error {
	if key == "" {
		return errors.InvalidSpec("cachestore", "Put", "empty key", nil)
	}
	if p == nil || p.Table == nil {
		return errors.InvalidSpec("cachestore", "Put", "payload must carry a table", errors.ErrInvalidPayload)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "cachestore", "Put", "encode "+key)
	}
	meta, err := json.Marshal(metaFile{
		Dataset:   p.Dataset,
		Rows:      p.Table.NumRows(),
		CreatedAt: p.CreatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "cachestore", "Put", "encode meta "+key)
	}

	if err := writeAtomic(s.payloadPath(key), raw); err != nil {
		return errors.Wrap(err, "cachestore", "Put", "write "+key)
	}
	if err := writeAtomic(s.metaPath(key), meta); err != nil {
		return errors.Wrap(err, "cachestore", "Put", "write meta "+key)
	}
	s.logger.Debug("cache write", "key", key, "dataset", p.Dataset, "rows", p.Table.NumRows())
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

// List enumerates cached entries from sidecar metadata and file sizes,
// without deserializing payloads. Entries are sorted by creation time,
// oldest first.
func (s *Store) List() ([]EntryInfo, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "cachestore", "List", "read dir")
	}
	var out []EntryInfo
	for _, de := range dirents {
		name := de.Name()
		if !strings.HasSuffix(name, metaSuffix) {
			continue
		}
		key := strings.TrimSuffix(name, metaSuffix)
		raw, err := os.ReadFile(s.metaPath(key))
		if err != nil {
			continue // raced with Remove
		}
		var m metaFile
		if err := json.Unmarshal(raw, &m); err != nil {
			s.logger.Warn("skipping unreadable cache meta", "key", key, "error", err)
			continue
		}
		info := EntryInfo{Key: key, Dataset: m.Dataset, Rows: m.Rows, CreatedAt: m.CreatedAt}
		if st, err := os.Stat(s.payloadPath(key)); err == nil {
			info.SizeBytes = st.Size()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Remove deletes one entry. Returns whether it existed.
func (s *Store) Remove(key string) (bool, error) {
	err := os.Remove(s.payloadPath(key))
	if os.IsNotExist(err) {
		_ = os.Remove(s.metaPath(key))
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "cachestore", "Remove", "remove "+key)
	}
	_ = os.Remove(s.metaPath(key))
	s.logger.Debug("cache remove", "key", key)
	return true, nil
}

// RemoveIf deletes every entry whose metadata satisfies pred (for hygiene
// such as "older than N days" or "belongs to dataset X"). Returns the
// number removed.
func (s *Store) RemoveIf(pred func(EntryInfo) bool) (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if !pred(e) {
			continue
		}
		ok, err := s.Remove(e.Key)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	_, err := s.RemoveIf(func(EntryInfo) bool { return true })
	return err
}
