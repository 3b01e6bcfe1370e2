// Package cache provides the on-disk result cache for remote stage and
// suggestion calls, plus in-flight deduplication of identical requests.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// StageCache stores stage and suggestion responses keyed by a digest of the
// document, stage name, paragraph index and input text.
type StageCache struct {
	Dir string
}

// Key builds a cache key scoped to one stage invocation. Identical text for
// the same document/stage/paragraph always maps to the same entry.
func Key(documentID, stage string, paragraphIndex int, text string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\n%s\n%d\n%s", documentID, stage, paragraphIndex, text)))
	return hex.EncodeToString(h[:])
}

func (c *StageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *StageCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns cached bytes if present. A missing entry is not an error.
func (c *StageCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := c.ensureDir(); err != nil {
		return nil, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, false, nil
	}
	// Touch mtime on access so age-based purging behaves like LRU.
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return b, true, nil
}

// Save writes bytes to the cache.
func (c *StageCache) Save(_ context.Context, key string, data []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	return os.WriteFile(c.pathFor(key), data, 0o644)
}

// ClearDir removes the cache directory and recreates it empty.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeByAge removes cache entries whose modification time is older than
// maxAge. Returns the number of removed entries.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if now.Sub(info.ModTime().UTC()) <= maxAge {
			return nil
		}
		removed++
		_ = os.Remove(path)
		return nil
	})
	return removed, err
}
