package storage

import (
	"context"
	"errors"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/content"
	"github.com/yanizio/sitehost/internal/metrics"
	"github.com/yanizio/sitehost/internal/tenant"
)

// Gateway-level results.  Storage detail never crosses this boundary; it is
// logged and replaced by one of these.
var (
	ErrNotFound   = errors.New("content not found")
	ErrSaveFailed = errors.New("failed to save content")
	ErrConflict   = errors.New("content was modified concurrently")
	ErrListFailed = errors.New("failed to list assets")

	ErrInvalidContent = errors.New("invalid content document")
)

const (
	contentFile = "content.json"
	assetDir    = "assets/"
)

// ContentKey is the object key holding a tenant's document.
func ContentKey(k tenant.Key) string { return string(k) + "/" + contentFile }

// AssetPrefix is the object key prefix holding a tenant's uploads.
func AssetPrefix(k tenant.Key) string { return string(k) + "/" + assetDir }

// Gateway reads and writes tenant content through an ObjectStore.
type Gateway struct {
	objects   ObjectStore
	presigner Presigner

	// local content mode: every tenant maps to one file
	local     ObjectStore
	localName string
}

// Option configures a Gateway.
type Option func(*Gateway) error

// WithLocalFile switches content reads and writes to one file on disk,
// regardless of tenant.  Asset listing still goes through the object store.
func WithLocalFile(file string) Option {
	return func(g *Gateway) error {
		fs, err := NewFileStore(filepath.Dir(file), "")
		if err != nil {
			return err
		}
		g.local = fs
		g.localName = filepath.Base(file)
		return nil
	}
}

// NewGateway wraps objects.  When objects also implements Presigner it is
// used for AssetURL.
func NewGateway(objects ObjectStore, opts ...Option) (*Gateway, error) {
	g := &Gateway{objects: objects}
	if p, ok := objects.(Presigner); ok {
		g.presigner = p
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Gateway) contentTarget(k tenant.Key) (ObjectStore, string) {
	if g.local != nil {
		return g.local, g.localName
	}
	return g.objects, ContentKey(k)
}

// Get loads and decodes the tenant document.  Any failure, including a
// missing object or malformed JSON, yields ErrNotFound.
func (g *Gateway) Get(ctx context.Context, k tenant.Key) (*content.Document, error) {
	obj, err := g.read(ctx, k)
	if err != nil {
		return nil, err
	}
	doc, err := content.Decode(obj.Body)
	if err != nil {
		zap.L().Warn("content parse failed", zap.String("tenant", k.String()), zap.Error(err))
		return nil, ErrNotFound
	}
	doc.Version = obj.ETag
	return doc, nil
}

// GetRaw returns the stored document in storage form and its version tag.
// Unlike Get it keeps every field, including those Document does not
// model.  Failures match Get.
func (g *Gateway) GetRaw(ctx context.Context, k tenant.Key) ([]byte, string, error) {
	obj, err := g.read(ctx, k)
	if err != nil {
		return nil, "", err
	}
	body, err := content.Normalize(obj.Body)
	if err != nil {
		zap.L().Warn("content parse failed", zap.String("tenant", k.String()), zap.Error(err))
		return nil, "", ErrNotFound
	}
	return body, obj.ETag, nil
}

func (g *Gateway) read(ctx context.Context, k tenant.Key) (Object, error) {
	if k == "" {
		return Object{}, ErrNotFound
	}
	store, key := g.contentTarget(k)

	obj, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotExist) {
			zap.L().Debug("content missing", zap.String("tenant", k.String()), zap.String("key", key))
		} else {
			zap.L().Warn("content read failed", zap.String("tenant", k.String()), zap.Error(err))
		}
		return Object{}, ErrNotFound
	}
	return obj, nil
}

// Put serialises doc as indented JSON and writes it.  opts.IfMatch makes the
// write conditional; without it the last writer wins.  It returns the new
// version tag.
func (g *Gateway) Put(ctx context.Context, k tenant.Key, doc *content.Document, opts PutOptions) (string, error) {
	if doc == nil {
		metrics.ContentSaveTotal.WithLabelValues("error").Inc()
		return "", ErrSaveFailed
	}
	body, err := content.Encode(doc)
	if err != nil {
		zap.L().Error("content encode failed", zap.String("tenant", k.String()), zap.Error(err))
		metrics.ContentSaveTotal.WithLabelValues("error").Inc()
		return "", ErrSaveFailed
	}
	return g.write(ctx, k, body, opts)
}

// PutRaw writes a document received as JSON.  raw is stored in storage
// form with every field it carries; one that does not decode as a document
// yields ErrInvalidContent and nothing is written.
func (g *Gateway) PutRaw(ctx context.Context, k tenant.Key, raw []byte, opts PutOptions) (string, error) {
	body, err := content.Normalize(raw)
	if err != nil {
		metrics.ContentSaveTotal.WithLabelValues("invalid").Inc()
		return "", ErrInvalidContent
	}
	return g.write(ctx, k, body, opts)
}

func (g *Gateway) write(ctx context.Context, k tenant.Key, body []byte, opts PutOptions) (string, error) {
	if k == "" {
		metrics.ContentSaveTotal.WithLabelValues("error").Inc()
		return "", ErrSaveFailed
	}
	store, key := g.contentTarget(k)
	opts.ContentType = "application/json"

	etag, err := store.Put(ctx, key, body, opts)
	switch {
	case err == nil:
		metrics.ContentSaveTotal.WithLabelValues("ok").Inc()
		zap.L().Info("content saved", zap.String("tenant", k.String()), zap.Int("bytes", len(body)))
		return etag, nil
	case errors.Is(err, ErrPreconditionFailed):
		metrics.ContentSaveTotal.WithLabelValues("conflict").Inc()
		zap.L().Info("content save conflict", zap.String("tenant", k.String()), zap.String("if_match", opts.IfMatch))
		return "", ErrConflict
	default:
		metrics.ContentSaveTotal.WithLabelValues("error").Inc()
		zap.L().Error("content save failed", zap.String("tenant", k.String()), zap.Error(err))
		return "", ErrSaveFailed
	}
}

// ListAssets returns the object keys of the tenant's uploaded assets.
func (g *Gateway) ListAssets(ctx context.Context, k tenant.Key) ([]string, error) {
	if k == "" {
		return nil, nil
	}
	keys, err := g.objects.List(ctx, AssetPrefix(k))
	if err != nil {
		zap.L().Warn("asset list failed", zap.String("tenant", k.String()), zap.Error(err))
		return nil, ErrListFailed
	}
	return keys, nil
}

// AssetURL returns a short-lived URL for one of the tenant's assets.
func (g *Gateway) AssetURL(ctx context.Context, k tenant.Key, filename string, ttl time.Duration) (string, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if k == "" || g.presigner == nil || name == "." || name == "/" || name == ".." {
		return "", ErrNotFound
	}
	url, err := g.presigner.PresignGet(ctx, AssetPrefix(k)+name, ttl)
	if err != nil {
		zap.L().Warn("asset presign failed", zap.String("tenant", k.String()), zap.Error(err))
		return "", ErrNotFound
	}
	return url, nil
}
