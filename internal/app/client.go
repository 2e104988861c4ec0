package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/petervdpas/jsondesk/internal/catalog"
	"github.com/petervdpas/jsondesk/internal/client"
	"github.com/petervdpas/jsondesk/internal/config"
	"github.com/petervdpas/jsondesk/internal/editor"
)

// NewClient builds the HTTP client for the configured server. A non-empty
// serverURL overrides client.server_url.
func NewClient(cfg config.Config, serverURL string) (*client.Client, error) {
	base := strings.TrimSpace(serverURL)
	if base == "" {
		base = cfg.Client.ServerURL
	}
	if base == "" {
		return nil, fmt.Errorf("no server url: set client.server_url or pass -server")
	}

	hc := &http.Client{}
	if cfg.Client.TimeoutSeconds > 0 {
		hc.Timeout = time.Duration(cfg.Client.TimeoutSeconds) * time.Second
	}
	return client.New(base, client.WithHTTPClient(hc))
}

// NewSession builds an editor session over the configured catalog.
func NewSession(cfg config.Config, c editor.FileClient, notify editor.Notifier) (*editor.Session, error) {
	cat, err := catalog.New(cfg.Catalog.Files)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return editor.New(cat, c, notify), nil
}
