package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/cache"
	"github.com/DaymaNKinG990/NeuralForge-sub000/pkg/codec"
)

const (
	cacheFileSuffix = ".cache"
	tempFilePrefix  = "tmp-"
)

// DefaultCompressionThreshold is the snapshot size in bytes at which
// payloads are zstd-compressed before hitting disk.
const DefaultCompressionThreshold = 4 * 1024

// Disk persists cache entries as one file per key inside a directory.
// Writes land in a temp file first and are renamed into place, so readers
// never observe partial files.
type Disk struct {
	fs        billy.Filesystem
	codec     codec.Codec
	threshold int
	logger    zerolog.Logger
}

var _ cache.Store = (*Disk)(nil)

// DiskOption configures a Disk store.
type DiskOption func(*Disk)

// WithCodec selects the snapshot codec (default codec.Default).
func WithCodec(c codec.Codec) DiskOption {
	return func(d *Disk) { d.codec = c }
}

// WithCompressionThreshold compresses snapshots of at least n bytes.
// A negative n disables compression.
func WithCompressionThreshold(n int) DiskOption {
	return func(d *Disk) { d.threshold = n }
}

// WithLogger overrides the global logger.
func WithLogger(logger zerolog.Logger) DiskOption {
	return func(d *Disk) { d.logger = logger.With().Str("component", "disk-store").Logger() }
}

// NewDisk creates a disk store rooted at the given filesystem. Temp files
// left behind by interrupted writes are swept on open.
func NewDisk(fsys billy.Filesystem, opts ...DiskOption) (*Disk, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}

	d := &Disk{
		fs:        fsys,
		codec:     codec.Default,
		threshold: DefaultCompressionThreshold,
		logger:    log.With().Str("component", "disk-store").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.sweepTempFiles()
	return d, nil
}

// NewDiskAt creates the cache directory if needed and opens a disk store
// on it.
func NewDiskAt(dir string, opts ...DiskOption) (*Disk, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return NewDisk(osfs.New(dir), opts...)
}

// fileName maps a cache key to its file name. Path escaping keeps
// arbitrary keys filesystem-safe and reversible.
func fileName(key string) string {
	return url.PathEscape(key) + cacheFileSuffix
}

// Save writes the entry snapshot atomically.
func (d *Disk) Save(ctx context.Context, entry *cache.Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := d.codec.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	compress := d.threshold >= 0 && len(payload) >= d.threshold
	data, err := encodeEnvelope(d.codec.Name(), payload, compress)
	if err != nil {
		return err
	}

	tmp, err := d.fs.TempFile("", tempFilePrefix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = d.fs.Remove(tmpName)
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = d.fs.Remove(tmpName)
		return fmt.Errorf("close cache file: %w", err)
	}

	// Rename is atomic on POSIX filesystems
	if err := d.fs.Rename(tmpName, fileName(entry.Key)); err != nil {
		_ = d.fs.Remove(tmpName)
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

// Load reads the snapshot for key. Corrupt or expired files are removed
// and reported as cache.ErrCacheMiss.
func (d *Disk) Load(ctx context.Context, key string) (*cache.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := fileName(key)
	data, err := util.ReadFile(d.fs, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cache.ErrCacheMiss
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	entry, err := decodeSnapshot(data)
	if err != nil {
		d.logger.Warn().Err(err).Str("key", key).Msg("Removing corrupt cache file")
		_ = d.fs.Remove(name)
		return nil, cache.ErrCacheMiss
	}
	if entry.Expired(time.Now()) {
		_ = d.fs.Remove(name)
		return nil, cache.ErrCacheMiss
	}
	return entry, nil
}

// Delete removes the cache file for key, if any.
func (d *Disk) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.fs.Remove(fileName(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	return nil
}

// Purge removes cache files, all of them or only those modified longer
// than olderThan ago.
func (d *Disk) Purge(ctx context.Context, olderThan time.Duration) error {
	infos, err := d.fs.ReadDir(".")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache directory: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	var errs []error
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), cacheFileSuffix) {
			continue
		}
		if olderThan > 0 && !info.ModTime().Before(cutoff) {
			continue
		}
		if err := d.fs.Remove(info.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", info.Name(), err))
			continue
		}
		removed++
	}

	if removed > 0 {
		d.logger.Debug().Int("removed", removed).Msg("Purged cache files")
	}
	return errors.Join(errs...)
}

// Size returns the total on-disk size in bytes of cache files.
func (d *Disk) Size(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	infos, err := d.fs.ReadDir(".")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache directory: %w", err)
	}

	var total int64
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), cacheFileSuffix) {
			total += info.Size()
		}
	}
	return total, nil
}

// sweepTempFiles drops temp files left behind by interrupted writes.
func (d *Disk) sweepTempFiles() {
	infos, err := d.fs.ReadDir(".")
	if err != nil {
		return
	}
	for _, info := range infos {
		if !info.IsDir() && strings.HasPrefix(info.Name(), tempFilePrefix) {
			_ = d.fs.Remove(info.Name())
		}
	}
}

// decodeSnapshot unwraps the envelope and unmarshals the snapshot with
// the codec named in its header.
func decodeSnapshot(data []byte) (*cache.Entry, error) {
	codecName, payload, err := decodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", cache.ErrInvalidEntry, codecName)
	}

	var entry cache.Entry
	if err := c.Unmarshal(payload, &entry); err != nil {
		return nil, fmt.Errorf("%w: %v", cache.ErrInvalidEntry, err)
	}
	return &entry, nil
}
