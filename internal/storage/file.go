package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore keeps objects as files below Root.  Keys use forward slashes
// and map one-to-one onto relative paths.  BaseURL prefixes the "presigned"
// URLs it hands out; the caller is expected to serve Root there.
type FileStore struct {
	Root    string
	BaseURL string

	mu sync.Mutex // serialises conditional writes
}

// NewFileStore creates root if needed.
func NewFileStore(root, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", root, err)
	}
	return &FileStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (f *FileStore) Get(_ context.Context, key string) (Object, error) {
	p, err := f.path(key)
	if err != nil {
		return Object{}, err
	}
	body, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Object{}, fmt.Errorf("file get %s: %w", key, ErrNotExist)
	}
	if err != nil {
		return Object{}, fmt.Errorf("file get %s: %w", key, err)
	}
	return Object{Body: body, ETag: etagOf(body)}, nil
}

func (f *FileStore) Put(_ context.Context, key string, body []byte, opts PutOptions) (string, error) {
	p, err := f.path(key)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if opts.IfMatch != "" {
		cur, err := os.ReadFile(p)
		if err != nil || etagOf(cur) != opts.IfMatch {
			return "", fmt.Errorf("file put %s: %w", key, ErrPreconditionFailed)
		}
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("file put %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return "", fmt.Errorf("file put %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("file put %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("file put %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", fmt.Errorf("file put %s: %w", key, err)
	}
	return etagOf(body), nil
}

func (f *FileStore) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".put-") {
			return nil
		}
		rel, err := filepath.Rel(f.Root, p)
		if err != nil {
			return err
		}
		if key := filepath.ToSlash(rel); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("file list %s: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// PresignGet returns BaseURL/key; local files carry no signature.
func (f *FileStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if _, err := f.path(key); err != nil {
		return "", err
	}
	return f.BaseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}

// path maps key below Root and refuses keys that climb out of it.
func (f *FileStore) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(f.Root, filepath.FromSlash(clean[1:])), nil
}

func etagOf(b []byte) string {
	sum := sha256.Sum256(b)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}
