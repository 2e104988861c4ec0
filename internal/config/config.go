// internal/config/config.go

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/petervdpas/jsondesk/internal/util"
)

// FileName is the config file looked up inside the served directory.
const FileName = "jsondesk.json"

type Config struct {
	Paths   Paths   `json:"paths"`
	Viewer  Viewer  `json:"viewer"`
	Catalog Catalog `json:"catalog"`
	Client  Client  `json:"client"`
	History History `json:"history"`
}

type Paths struct {
	// Directory holding the editable JSON files, relative to the served dir.
	DataDir string `json:"data_dir"`
	// Directory for the save log database, relative to the served dir.
	StateDir string `json:"state_dir"`
}

type Viewer struct {
	HTTPAddr     string   `json:"http_addr"`
	Debug        bool     `json:"debug"`
	CORSOrigins  []string `json:"cors_origins"`
	MaxBodyBytes int64    `json:"max_body_bytes"`
	// Watch the data dir and push external edits to websocket listeners.
	WatchFiles bool `json:"watch_files"`
	LogLines   int  `json:"log_lines"`
}

// Catalog is the fixed, ordered list of files offered to the operator.
// Order is kept as written; duplicates are not removed.
type Catalog struct {
	Files []string `json:"files"`
}

type Client struct {
	ServerURL string `json:"server_url"`
	// 0 means no timeout: a hung endpoint simply never completes.
	TimeoutSeconds int `json:"timeout_seconds"`
}

type History struct {
	Enabled bool `json:"enabled"`
	// Max rows returned by /api/saves when no limit is given.
	DefaultLimit int `json:"default_limit"`
}

func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  "data",
			StateDir: ".jsondesk",
		},
		Viewer: Viewer{
			HTTPAddr:     "127.0.0.1:8000",
			CORSOrigins:  []string{"*"},
			MaxBodyBytes: 8 << 20,
			WatchFiles:   true,
			LogLines:     800,
		},
		Catalog: Catalog{
			Files: []string{"leagues.json", "teams.json", "bra_a.json", "club_wc.json"},
		},
		Client: Client{
			ServerURL: "http://127.0.0.1:8000",
		},
		History: History{
			Enabled:      true,
			DefaultLimit: 50,
		},
	}
}

func (c *Config) Validate() error {
	// Paths
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir is required")
	}
	if c.History.Enabled && strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir is required when history is enabled")
	}

	// Viewer
	if strings.TrimSpace(c.Viewer.HTTPAddr) == "" {
		return errors.New("viewer.http_addr is required")
	}
	if c.Viewer.MaxBodyBytes <= 0 {
		return errors.New("viewer.max_body_bytes must be > 0")
	}
	if c.Viewer.LogLines < 0 {
		return errors.New("viewer.log_lines must be >= 0")
	}

	// Catalog
	if len(c.Catalog.Files) == 0 {
		return errors.New("catalog.files must not be empty")
	}
	for i, f := range c.Catalog.Files {
		if _, err := util.CleanFileName(f); err != nil {
			return fmt.Errorf("catalog.files[%d]: %q: %w", i, f, err)
		}
	}

	// Client
	if c.Client.TimeoutSeconds < 0 {
		return errors.New("client.timeout_seconds must be >= 0")
	}
	if s := strings.TrimSpace(c.Client.ServerURL); s != "" {
		if err := validateServerURL(s); err != nil {
			return fmt.Errorf("client.server_url: %w", err)
		}
	}

	// History
	if c.History.DefaultLimit < 0 {
		return errors.New("history.default_limit must be >= 0")
	}

	return nil
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	b = stripBOM(b)

	// Start from defaults so missing JSON fields remain initialized.
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// stripBOM removes a UTF-8 byte order mark if present.
func stripBOM(b []byte) []byte {
	if len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		return b[3:]
	}
	return b
}

func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return util.WriteJSONFile(path, cfg)
}

// Ensure loads config if it exists; otherwise creates a default config file.
// Returns (cfg, createdNew, err).
func Ensure(path string) (Config, bool, error) {
	if _, err := os.Stat(path); err == nil {
		cfg, err := Load(path)
		return cfg, false, err
	} else if !os.IsNotExist(err) {
		return Config{}, false, err
	}

	cfg := Default()
	if err := Save(path, cfg); err != nil {
		return Config{}, false, fmt.Errorf("create default config: %w", err)
	}
	return cfg, true, nil
}
