package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirFetcher serves feeds recorded under a local directory, laid out by URL
// path relative to the feed base URL.
type DirFetcher struct {
	Dir     string
	BaseURL string
}

// NewDirFetcher returns a fetcher reading feeds for baseURL from dir.
func NewDirFetcher(dir, baseURL string) *DirFetcher {
	return &DirFetcher{Dir: dir, BaseURL: baseURL}
}

// Fetch reads the recorded document for url.
func (f *DirFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	path, err := RecordPath(f.Dir, f.BaseURL, url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return UnwrapJSONP(data), nil
}

// RecordPath maps a feed URL to its file under dir. URLs outside baseURL
// are rejected.
func RecordPath(dir, baseURL, url string) (string, error) {
	rel, ok := strings.CutPrefix(url, baseURL)
	if !ok || rel == "" {
		return "", fmt.Errorf("url %s is not under base URL %s", url, baseURL)
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("url %s escapes the record directory", url)
	}
	return filepath.Join(dir, clean), nil
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory, so readers never see a partial document.
func WriteFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".feed-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// Clean up temp file on any error
	defer func() {
		if err != nil {
			err = errors.Join(err, removeIfExists(tmpPath))
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
