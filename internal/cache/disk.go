package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// DiskCache is the cold tier: one gzip file per key in a flat directory.
// Files carry no header or index; the key lives entirely in the file name,
// so the directory survives restarts and can be shared between processes.
type DiskCache struct {
	basePath         string
	compressionLevel int

	// Put/Get/Delete hold the read lock and may run concurrently, each
	// write lands through its own temp file. Clear takes the write lock.
	mu sync.RWMutex
}

// NewDiskCache creates the cache directory if needed.
func NewDiskCache(basePath string, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	// Check the level once so Put cannot fail on it later.
	if _, err := gzip.NewWriterLevel(io.Discard, compressionLevel); err != nil {
		return nil, fmt.Errorf("invalid gzip compression level %d: %w", compressionLevel, err)
	}

	return &DiskCache{
		basePath:         basePath,
		compressionLevel: compressionLevel,
	}, nil
}

// Dir returns the cache directory.
func (dc *DiskCache) Dir() string {
	return dc.basePath
}

// Path returns the file path for key.
func (dc *DiskCache) Path(key Key) string {
	return filepath.Join(dc.basePath, key.FileName())
}

// Get reads and decompresses the file for key. A missing file yields
// ErrCacheMiss. A file that fails to decompress is removed and reported as
// a CacheIOError wrapping ErrCacheCorrupted.
func (dc *DiskCache) Get(key Key) ([]byte, error) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	path := dc.Path(key)
	compressed, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrCacheMiss
		}
		return nil, &CacheIOError{Op: "read", Path: path, Err: err}
	}

	data, err := dc.decompress(compressed)
	if err != nil {
		cause := fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			cause = fmt.Errorf("%w (remove failed: %v)", cause, rmErr)
		}
		return nil, &CacheIOError{Op: "decompress", Path: path, Err: cause}
	}

	return data, nil
}

// Put compresses data and writes it for key, replacing any existing file.
// It returns the compressed size.
func (dc *DiskCache) Put(key Key, data []byte) (int, error) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	path := dc.Path(key)
	compressed, err := dc.compress(data)
	if err != nil {
		return 0, &CacheIOError{Op: "compress", Path: path, Err: err}
	}

	if err := dc.writeFile(path, compressed); err != nil {
		return 0, &CacheIOError{Op: "write", Path: path, Err: err}
	}

	return len(compressed), nil
}

// Delete removes the file for key. Missing files are not an error.
func (dc *DiskCache) Delete(key Key) error {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	path := dc.Path(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &CacheIOError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// Clear removes every cache file and leftover temp file. It returns the
// number of cache files removed.
func (dc *DiskCache) Clear() (int, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entries, err := os.ReadDir(dc.basePath)
	if err != nil {
		return 0, &CacheIOError{Op: "list", Path: dc.basePath, Err: err}
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		name := entry.Name()
		isCacheFile := strings.HasSuffix(name, FileExt)
		if entry.IsDir() || (!isCacheFile && !strings.HasSuffix(name, ".tmp")) {
			continue
		}
		path := filepath.Join(dc.basePath, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, &CacheIOError{Op: "delete", Path: path, Err: err})
			continue
		}
		if isCacheFile {
			removed++
		}
	}

	return removed, errors.Join(errs...)
}

// Stats enumerates the directory and returns the number of cache files and
// their total size on disk.
func (dc *DiskCache) Stats() (count int, size int64, err error) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	entries, err := os.ReadDir(dc.basePath)
	if err != nil {
		return 0, 0, &CacheIOError{Op: "list", Path: dc.basePath, Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		count++
		size += info.Size()
	}

	return count, size, nil
}

// Private helper methods

func (dc *DiskCache) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, dc.compressionLevel)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (dc *DiskCache) decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}

func (dc *DiskCache) writeFile(path string, data []byte) error {
	// Write to a unique temp file first, then rename over the target so
	// concurrent writers of the same key never interleave.
	file, err := os.CreateTemp(dc.basePath, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tempPath := file.Name()

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return err
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return closeErr
	}

	if err := os.Chmod(tempPath, 0o644); err != nil {
		os.Remove(tempPath)
		return err
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}
