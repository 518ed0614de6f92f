// internal/config/model.go
//
// Typed configuration model for the site host.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `SITEHOST_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Tenant section
//

// Tenant drives host → tenant key resolution.  RootDomain may be empty, in
// which case local and preview host rewriting is disabled.
type Tenant struct {
	RootDomain    string   `koanf:"root_domain"    validate:"omitempty,fqdn"`
	PreviewSuffix string   `koanf:"preview_suffix"`
	LocalSuffix   string   `koanf:"local_suffix"`
	Known         []string `koanf:"known"          validate:"dive,required"`
}

//
// Content section
//

// Content toggles the development-only single-file mode.
type Content struct {
	LocalMode bool   `koanf:"local_mode"`
	LocalFile string `koanf:"local_file" validate:"required_if=LocalMode true"`
}

//
// Storage section
//

// Storage selects the object-store backend.  "s3" talks to any S3-compatible
// endpoint; "local" keeps objects under LocalDir and exists for development
// and tests.
type Storage struct {
	Backend   string `koanf:"backend"    validate:"oneof=s3 local"`
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"   validate:"omitempty,url"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	PathStyle bool   `koanf:"path_style"`
	LocalDir  string `koanf:"local_dir"`
}

//
// Cache section
//

// Cache configures the per-process content read cache.  TTL 0 keeps request
// coalescing but never retains a document past the fetch.
type Cache struct {
	TTL        time.Duration `koanf:"ttl"         validate:"gte=0"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"`
}

//
// Redis section
//

// Redis is optional; when Addr is set the preview hub relays through
// Redis pub/sub so every web instance sees every message.
type Redis struct {
	Addr     string `koanf:"addr"     validate:"omitempty,hostname_port"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"       validate:"gte=0"`
}

//
// Database section
//

// Database is optional.  When GlobalDSN is set the control-plane `site`
// table contributes active hosts to the known-tenant list.
type Database struct {
	GlobalDSN string `koanf:"global_dsn"`
}

//
// Admin section
//

// Admin protects the content API.  An empty Token disables the admin
// routes entirely.  Origin is the admin UI origin allowed to frame pages
// for live preview.
type Admin struct {
	Token  string `koanf:"token"`
	Origin string `koanf:"origin" validate:"omitempty,url"`
}

// Form keys the stateless tokens of public forms.  Share one secret across
// instances so a page rendered by one verifies on another.
type Form struct {
	Secret string `koanf:"secret"`
}

// Geo points at an optional GeoLite2-City database.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

// Log tunes the zap level.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // SITEHOST_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Tenant   Tenant   `koanf:"tenant"`
	Content  Content  `koanf:"content"`
	Storage  Storage  `koanf:"storage"`
	Cache    Cache    `koanf:"cache"`
	Redis    Redis    `koanf:"redis"`
	Database Database `koanf:"database"`
	Admin    Admin    `koanf:"admin"`
	Form     Form     `koanf:"form"`
	Geo      Geo      `koanf:"geo"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}
