package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := f[path+"#"+key]
	if !ok {
		return "", errors.New("no such secret")
	}
	return v, nil
}

func writeConf(t *testing.T, body string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestLoadFrom_DefaultsAndEnvOverlay(t *testing.T) {
	root := writeConf(t, `
tenant:
  root_domain: Apex-Platform.io
storage:
  backend: local
  local_dir: /tmp/objects
`)
	t.Setenv("SITEHOST_HTTP__LISTEN_ADDR", ":9090")

	cfg, err := LoadFrom(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":9090" {
		t.Errorf("listen_addr = %q, want :9090", cfg.HTTP.ListenAddr)
	}
	if cfg.Tenant.RootDomain != "apex-platform.io" {
		t.Errorf("root_domain = %q", cfg.Tenant.RootDomain)
	}
	if cfg.Tenant.LocalSuffix != ".localhost" {
		t.Errorf("local_suffix default = %q", cfg.Tenant.LocalSuffix)
	}
	if cfg.Paths.Root != root {
		t.Errorf("root = %q, want %q", cfg.Paths.Root, root)
	}
	if Get() != cfg {
		t.Error("Get did not return the freshly loaded config")
	}
}

func TestLoadFrom_VaultReference(t *testing.T) {
	root := writeConf(t, `
storage:
  backend: s3
  bucket: dojo-content
  secret_key: "vault:secret/sitehost#s3_secret"
admin:
  token: "vault:secret/sitehost#admin_token"
`)
	secrets := fakeSecrets{
		"secret/sitehost#s3_secret":   "s3-value",
		"secret/sitehost#admin_token": "admin-value",
	}

	cfg, err := LoadFrom(context.Background(), root, secrets)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Storage.SecretKey != "s3-value" || cfg.Admin.Token != "admin-value" {
		t.Fatalf("vault values not substituted: %+v %+v", cfg.Storage, cfg.Admin)
	}
}

func TestLoadFrom_VaultWithoutClient(t *testing.T) {
	root := writeConf(t, `
storage:
  backend: s3
  bucket: b
admin:
  token: "vault:secret/sitehost#admin_token"
`)
	if _, err := LoadFrom(context.Background(), root, nil); err == nil {
		t.Fatal("expected error for vault reference without client")
	}
}

func TestLoadFrom_S3NeedsBucket(t *testing.T) {
	root := writeConf(t, `
storage:
  backend: s3
`)
	if _, err := LoadFrom(context.Background(), root, nil); err == nil {
		t.Fatal("expected validation error for missing bucket")
	}
}

func TestLoadFrom_LocalModeNeedsFile(t *testing.T) {
	root := writeConf(t, `
content:
  local_mode: true
storage:
  backend: local
  local_dir: /tmp/x
`)
	if _, err := LoadFrom(context.Background(), root, nil); err == nil {
		t.Fatal("expected validation error for local_mode without local_file")
	}
}
