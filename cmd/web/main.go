// cmd/web/main.go
//
// Site host – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start the rotating logger (tees to console when running in a TTY).
//
//  2. Dial Vault when the configuration references it, then load config.
//
//  3. Build the object store (S3 or a local directory) and the content
//     gateway, with the read cache in front of it.
//
//  4. Open the optional control-plane DB and Redis relay.
//
//  5. Assemble the root router:
//
//     • request id, recovery, access log, security headers
//     • HTTPS redirect (when enabled) and request enrichment
//     • tenant rewrite            – host → /sites/<key><path>
//     • shared endpoints          – /healthz, /metrics, /static/, /api/assets
//     • admin API                 – /admin/api
//     • tenant tree               – pages.Mount
//
//  6. Serve until SIGINT or SIGTERM, then drain.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yanizio/sitehost/internal/admin"
	"github.com/yanizio/sitehost/internal/asset"
	"github.com/yanizio/sitehost/internal/config"
	"github.com/yanizio/sitehost/internal/database"
	"github.com/yanizio/sitehost/internal/form"
	"github.com/yanizio/sitehost/internal/logger"
	"github.com/yanizio/sitehost/internal/middleware"
	"github.com/yanizio/sitehost/internal/pages"
	"github.com/yanizio/sitehost/internal/prefs"
	"github.com/yanizio/sitehost/internal/preview"
	"github.com/yanizio/sitehost/internal/requestinfo"
	"github.com/yanizio/sitehost/internal/routing"
	"github.com/yanizio/sitehost/internal/server"
	"github.com/yanizio/sitehost/internal/site"
	"github.com/yanizio/sitehost/internal/storage"
	"github.com/yanizio/sitehost/internal/tenant"
	"github.com/yanizio/sitehost/internal/theme"
	"github.com/yanizio/sitehost/internal/vault"
)

// localObjects is where the local storage backend serves tenant assets.
const localObjects = "/_internal/objects/"

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("sitehost: %v", err)
	}
}

func run(ctx context.Context) error {
	//
	// ── 1.  Config and logger ───────────────────────────────────────────
	//
	var secrets config.SecretSource
	if config.UsesVault() {
		cli, err := vault.New(ctx)
		if err != nil {
			return fmt.Errorf("vault: %w", err)
		}
		secrets = cli
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY(), cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 2.  Storage, gateway, and read cache ────────────────────────────
	//
	objects, err := openObjects(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	var gwOpts []storage.Option
	if cfg.Content.LocalMode {
		gwOpts = append(gwOpts, storage.WithLocalFile(cfg.Content.LocalFile))
		logOut.Warnw("local content mode, every tenant reads one file", "file", cfg.Content.LocalFile)
	}
	gateway, err := storage.NewGateway(objects, gwOpts...)
	if err != nil {
		return fmt.Errorf("content gateway: %w", err)
	}
	docs := tenant.NewCache(gateway.Get, cfg.Cache.TTL, cfg.Cache.MaxEntries)
	defer docs.Close()

	//
	// ── 3.  Optional control plane and preview relay ────────────────────
	//
	var registry *site.Registry
	if cfg.Database.GlobalDSN != "" {
		db, err := database.Open(ctx, cfg.Database.GlobalDSN)
		if err != nil {
			return fmt.Errorf("connect global DB: %w", err)
		}
		defer db.Close()
		registry = site.NewRegistry(db)
		logOut.Info("global DB online")
	}
	directory := site.NewDirectory(cfg.Tenant.Known, registry)

	var broker preview.Broker
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		broker = preview.NewRedisBroker(rdb)
		logOut.Infow("preview relay via redis", "addr", cfg.Redis.Addr)
	}
	hub := preview.NewHub(broker)

	var geo *requestinfo.GeoDB
	if cfg.Geo.DBPath != "" {
		if geo, err = requestinfo.OpenGeo(cfg.Geo.DBPath); err != nil {
			logOut.Warnw("geo database unavailable", "path", cfg.Geo.DBPath, "err", err)
		} else {
			defer geo.Close()
		}
	}

	//
	// ── 4.  Presentation ────────────────────────────────────────────────
	//
	assets, err := asset.NewResolver()
	if err != nil {
		return fmt.Errorf("asset manifest: %w", err)
	}
	themes, err := theme.NewManager(assets)
	if err != nil {
		return fmt.Errorf("themes: %w", err)
	}
	forms := form.NewHandler(form.NewSigner(cfg.Form.Secret), form.NewWebhook())
	web := pages.New(themes, prefs.NewCookiePort(cfg.HTTP.ForceHTTPS), hub, forms)

	//
	// ── 5.  Router ──────────────────────────────────────────────────────
	//
	resolver := tenant.NewResolver(cfg.Tenant.RootDomain, cfg.Tenant.LocalSuffix, cfg.Tenant.PreviewSuffix)

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, middleware.RequestLog, middleware.Security(cfg.Admin.Origin))
	if cfg.HTTP.ForceHTTPS {
		r.Use(middleware.ForceHTTPS)
	}
	r.Use(requestinfo.Enrich(geo), routing.Rewrite(resolver, routing.NewExcluder(nil, nil)))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Handle(asset.StaticPrefix+"*", asset.Static())
	r.Get("/api/assets/{tenant}/{filename}", asset.Redirect(gateway))
	if cfg.Storage.Backend == "local" {
		r.Handle(localObjects+"*", localAssets(cfg.Storage.LocalDir))
	}

	admin.New(admin.Options{
		Token:     cfg.Admin.Token,
		Origin:    cfg.Admin.Origin,
		Store:     gateway,
		Directory: directory,
		Cache:     docs,
		Hub:       hub,
	}).Routes(r)

	web.Mount(r, docs.Get)

	//
	// ── 6.  Serve ───────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, r)
	logOut.Infow("site host ready", "themes", themes.Names(), "tenants", len(cfg.Tenant.Known))
	if err := server.Run(ctx, srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Error("http server", zap.Error(err))
		return err
	}
	logOut.Info("shutdown complete")
	return nil
}

// openObjects builds the configured object store.
func openObjects(ctx context.Context, c config.Storage) (interface {
	storage.ObjectStore
	storage.Presigner
}, error) {
	if c.Backend == "local" {
		fs, err := storage.NewFileStore(c.LocalDir, strings.TrimSuffix(localObjects, "/"))
		if err != nil {
			return nil, fmt.Errorf("local storage: %w", err)
		}
		return fs, nil
	}
	s3, err := storage.NewS3(ctx, storage.S3Config{
		Bucket:    c.Bucket,
		Region:    c.Region,
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		PathStyle: c.PathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 storage: %w", err)
	}
	return s3, nil
}

// localAssets serves tenant uploads from the local backend.  Only keys
// below a tenant's assets/ prefix are reachable.
func localAssets(dir string) http.Handler {
	files := http.StripPrefix(localObjects, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(strings.TrimPrefix(r.URL.Path, localObjects), "/assets/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
