// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `SITEHOST_`, where `__` maps to “.”
     (e.g., `SITEHOST_TENANT__ROOT_DOMAIN → tenant.root_domain`).

After merging, every string of the form `vault:<mount/path>#<key>` is
swapped for the secret it names, the tree is unmarshalled into typed
structs, defaults are filled, the result is validated, and it is cached in
an `atomic.Pointer` for lock-free reads.

Instrumentation
---------------
  • DEBUG spans – root discovery, YAML read, vault substitutions.
  • ERROR spans – YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span  – final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`; this
    lets `go run ./cmd/web` work from any sub-directory.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	envPrefix   = "SITEHOST_"
	vaultPrefix = "vault:"
	secretTTL   = 10 * time.Minute
)

var current atomic.Pointer[Config]

// SecretSource resolves `vault:` references.  *vault.Client satisfies it.
type SecretSource interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves SITEHOST_ROOT or climbs directories until
// conf/global.yaml is found.  Falls back to executable heuristic for
// production layout.
func rootDir() string {
	if r := os.Getenv(envPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves vault references through
// secrets, validates, and caches Config.  secrets may be nil when no value
// uses the `vault:` form.
func Load(ctx context.Context, secrets SecretSource) (*Config, error) {
	return LoadFrom(ctx, rootDir(), secrets)
}

// LoadFrom is Load with an explicit root directory.
func LoadFrom(ctx context.Context, root string, secrets SecretSource) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	// Env overrides: SITEHOST_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, secrets); err != nil {
		zap.S().Errorw("config vault resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	applyDefaults(&cfg)
	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"root_domain", cfg.Tenant.RootDomain,
		"storage", cfg.Storage.Backend,
		"local_content", cfg.Content.LocalMode,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

// resolveSecrets replaces every `vault:<path>#<key>` string in k.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, secrets SecretSource) error {
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, vaultPrefix) {
			continue
		}
		if secrets == nil {
			return fmt.Errorf("%s references vault but no vault client is configured", key)
		}
		path, field, found := strings.Cut(strings.TrimPrefix(s, vaultPrefix), "#")
		if !found {
			return fmt.Errorf("%s: vault reference %q lacks #key", key, s)
		}
		sec, err := secrets.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := k.Set(key, sec); err != nil {
			return err
		}
		zap.S().Debugw("config vault value resolved", "key", key, "path", path)
	}
	return nil
}

// UsesVault reports whether the YAML or env layers reference vault.  main
// uses it to decide whether to dial Vault before Load.
func UsesVault() bool {
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, envPrefix) && strings.Contains(kv, "="+vaultPrefix) {
			return true
		}
	}
	raw, err := os.ReadFile(filepath.Join(rootDir(), "conf", "global.yaml"))
	return err == nil && strings.Contains(string(raw), vaultPrefix)
}

func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.Tenant.LocalSuffix == "" {
		c.Tenant.LocalSuffix = ".localhost"
	}
	if c.Tenant.PreviewSuffix == "" {
		c.Tenant.PreviewSuffix = ".vercel.app"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "s3"
	}
	if c.Storage.Region == "" {
		c.Storage.Region = "us-east-1"
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 500
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Tenant.RootDomain = strings.ToLower(strings.TrimSpace(c.Tenant.RootDomain))
}
