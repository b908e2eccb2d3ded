package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
)

// ErrFetch is returned when a document can neither be read from the cache
// nor downloaded.
var ErrFetch = errors.New("fetch failed")

// Fetcher downloads documents and keeps a copy of each on disk. A cached
// copy is served on later calls and is never refreshed; delete the cache
// directory to force a new download.
type Fetcher struct {
	HTTP     *resty.Client
	CacheDir string
	// Logger is used for cache hit/miss messages. nil means slog.Default().
	Logger *slog.Logger
}

// NewFetcher creates a Fetcher caching into dir.
func NewFetcher(client *resty.Client, dir string) *Fetcher {
	return &Fetcher{HTTP: client, CacheDir: dir}
}

// Fetch returns the body of url, from the cache when present.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := f.cachePath(url)
	body, err := os.ReadFile(path)
	if err == nil {
		logger.Debug("document served from cache", "url", url, "path", path)
		return body, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read cache %s: %v", ErrFetch, path, err)
	}

	res, err := f.HTTP.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s returned %s", ErrFetch, url, res.Status())
	}
	body = res.Body()

	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create cache dir: %v", ErrFetch, err)
	}
	if err := writeCache(f.CacheDir, path, body); err != nil {
		return nil, fmt.Errorf("%w: write cache %s: %v", ErrFetch, path, err)
	}
	logger.Debug("document downloaded", "url", url, "bytes", len(body), "path", path)
	return body, nil
}

// writeCache stores body at path through a temporary file in dir, so a
// cache entry is either absent or complete.
func writeCache(dir, path string, body []byte) error {
	tmp, err := os.CreateTemp(dir, ".fetch-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *Fetcher) cachePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(f.CacheDir, hex.EncodeToString(sum[:]))
}
