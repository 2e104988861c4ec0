package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestEnsureCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg, created, err := Ensure(path)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("expected new config to be created")
	}
	if !reflect.DeepEqual(cfg.Catalog.Files, Default().Catalog.Files) {
		t.Fatalf("catalog = %v", cfg.Catalog.Files)
	}

	again, created, err := Ensure(path)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("second Ensure should load, not create")
	}
	if !reflect.DeepEqual(again, cfg) {
		t.Fatalf("reloaded config differs: %+v vs %+v", again, cfg)
	}
}

func TestLoadKeepsCatalogOrderAndStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	body := "\xEF\xBB\xBF" + `{"catalog":{"files":["z.json","a.json","z.json"]}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"z.json", "a.json", "z.json"}
	if !reflect.DeepEqual(cfg.Catalog.Files, want) {
		t.Fatalf("catalog = %v, want %v", cfg.Catalog.Files, want)
	}
	// Untouched sections keep their defaults.
	if cfg.Viewer.HTTPAddr != Default().Viewer.HTTPAddr {
		t.Fatalf("http_addr = %q", cfg.Viewer.HTTPAddr)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"empty catalog", func(c *Config) { c.Catalog.Files = nil }, "catalog.files"},
		{"escaping file", func(c *Config) { c.Catalog.Files = []string{"../x.json"} }, "catalog.files[0]"},
		{"no data dir", func(c *Config) { c.Paths.DataDir = " " }, "paths.data_dir"},
		{"bad server url", func(c *Config) { c.Client.ServerURL = "ftp://x" }, "client.server_url"},
		{"negative timeout", func(c *Config) { c.Client.TimeoutSeconds = -1 }, "client.timeout_seconds"},
		{"zero body cap", func(c *Config) { c.Viewer.MaxBodyBytes = 0 }, "viewer.max_body_bytes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}
