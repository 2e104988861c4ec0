package app

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/petervdpas/jsondesk/internal/config"
)

func TestPromptInteractiveAcceptsDefaults(t *testing.T) {
	cfg := config.Default()
	got := PromptInteractive(strings.NewReader(strings.Repeat("\n", 7)), io.Discard, "/d", "/d/jsondesk.json", cfg)
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("got %+v", got)
	}
}

func TestPromptInteractiveEdits(t *testing.T) {
	in := strings.Join([]string{
		"files",
		":9000",
		"a.json, b.json ,a.json",
		"n",
		"no",
		"",
		"x", "15",
	}, "\n") + "\n"

	got := PromptInteractive(strings.NewReader(in), io.Discard, "/d", "/d/jsondesk.json", config.Default())

	if got.Paths.DataDir != "files" || got.Viewer.HTTPAddr != ":9000" {
		t.Fatalf("paths/viewer = %+v %+v", got.Paths, got.Viewer)
	}
	if !reflect.DeepEqual(got.Catalog.Files, []string{"a.json", "b.json", "a.json"}) {
		t.Fatalf("catalog = %v", got.Catalog.Files)
	}
	if got.Viewer.WatchFiles || got.History.Enabled {
		t.Fatal("booleans not applied")
	}
	if got.Client.TimeoutSeconds != 15 {
		t.Fatalf("timeout = %d", got.Client.TimeoutSeconds)
	}
}

func TestPromptInteractiveInvalidFallsBack(t *testing.T) {
	in := "\n\n../escape.json\n\n\n\n\n"
	got := PromptInteractive(strings.NewReader(in), io.Discard, "/d", "/d/jsondesk.json", config.Default())
	if !reflect.DeepEqual(got, config.Default()) {
		t.Fatalf("expected defaults, got %+v", got)
	}
}
