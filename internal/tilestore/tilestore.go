// Package tilestore implements the out-of-core pixel spill area the
// Tiler uses below the serial-mode "I/O boundary" recursion level (spec
// §5 "Serial (single-threaded, cooperative)", §9 "scoped tile access").
// It replaces the legacy manual restore_pixel_data/save_pixel_data
// bracketing around each recursive call with a scoped guard: Acquire
// hands the caller a section's pixel buffer and returns a release
// closure that persists it back, so no recursion failure path can leak
// a tile-store file handle or silently drop a write.
package tilestore

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"hseg/internal/pixel"
)

// Key identifies one section's spilled pixel buffer: the recursion
// level and section index pair the legacy code addressed as
// (file_type, section).
type Key struct {
	Level   int
	Section int
}

func (k Key) filename() string {
	return fmt.Sprintf("hseg-tile-L%02d-S%06d.gob", k.Level, k.Section)
}

// Store owns a directory of per-section spill files. Each Key maps to
// exactly one file; Store never keeps more than one section's pixels in
// memory at a time per caller, by construction of the Acquire/release
// contract below.
type Store struct {
	dir      string
	ownsDir  bool
	mu       sync.Mutex
	inFlight map[Key]bool // guards against concurrent double-acquire of the same section
}

// Open creates (or reuses, if dir is non-empty) a spill directory. An
// empty dir creates a fresh temp directory under os.TempDir(), which
// Close removes; a caller-supplied dir is left in place on Close.
func Open(dir string) (*Store, error) {
	ownsDir := dir == ""
	if ownsDir {
		d, err := os.MkdirTemp("", "hseg-tilestore-*")
		if err != nil {
			return nil, fmt.Errorf("tilestore: create temp dir: %w", err)
		}
		dir = d
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("tilestore: create dir %s: %w", dir, err)
	}
	return &Store{dir: dir, ownsDir: ownsDir, inFlight: make(map[Key]bool)}, nil
}

// Close removes the store's own temp directory. It is a no-op for a
// caller-supplied directory.
func (s *Store) Close() error {
	if !s.ownsDir {
		return nil
	}
	return os.RemoveAll(s.dir)
}

// Put persists a section's pixel buffer, overwriting any prior save
// (the legacy save_pixel_data call).
func (s *Store) Put(key Key, pixels []pixel.Pixel, dims pixel.Dims) error {
	path := filepath.Join(s.dir, key.filename())
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tilestore: create %s: %w", path, err)
	}
	defer f.Close()
	enc := gob.NewEncoder(f)
	if err := enc.Encode(section{Pixels: pixels, Dims: dims}); err != nil {
		return fmt.Errorf("tilestore: encode %v: %w", key, err)
	}
	return nil
}

// Get restores a previously-Put section (the legacy restore_pixel_data
// call).
func (s *Store) Get(key Key) ([]pixel.Pixel, pixel.Dims, error) {
	path := filepath.Join(s.dir, key.filename())
	f, err := os.Open(path)
	if err != nil {
		return nil, pixel.Dims{}, fmt.Errorf("tilestore: open %s: %w", path, err)
	}
	defer f.Close()
	var sec section
	if err := gob.NewDecoder(f).Decode(&sec); err != nil {
		return nil, pixel.Dims{}, fmt.Errorf("tilestore: decode %v: %w", key, err)
	}
	return sec.Pixels, sec.Dims, nil
}

// Delete removes a section's spill file once no longer needed (e.g.
// after the parent has collected its children's regions and the seam
// band is the only data still required).
func (s *Store) Delete(key Key) error {
	path := filepath.Join(s.dir, key.filename())
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("tilestore: remove %s: %w", path, err)
	}
	return nil
}

type section struct {
	Pixels []pixel.Pixel
	Dims   pixel.Dims
}

// Acquire restores key's pixel buffer and returns it along with a
// release func that persists any mutations back and marks the section
// free. Acquire panics if key is already checked out — a programmer
// error (two goroutines touching the same section concurrently in
// serial mode), never a data-dependent condition.
func (s *Store) Acquire(key Key) (pixels []pixel.Pixel, dims pixel.Dims, release func() error, err error) {
	s.mu.Lock()
	if s.inFlight[key] {
		s.mu.Unlock()
		panic(fmt.Sprintf("tilestore: section %v already acquired", key))
	}
	s.inFlight[key] = true
	s.mu.Unlock()

	pixels, dims, err = s.Get(key)
	if err != nil {
		s.mu.Lock()
		delete(s.inFlight, key)
		s.mu.Unlock()
		return nil, pixel.Dims{}, nil, err
	}

	release = func() error {
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, key)
			s.mu.Unlock()
		}()
		return s.Put(key, pixels, dims)
	}
	return pixels, dims, release, nil
}
