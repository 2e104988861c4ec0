package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/petervdpas/jsondesk/internal/catalog"
	"github.com/petervdpas/jsondesk/internal/content"
	"github.com/petervdpas/jsondesk/internal/docs"
	"github.com/petervdpas/jsondesk/internal/matches"
	"github.com/petervdpas/jsondesk/internal/realtime"
	"github.com/petervdpas/jsondesk/internal/storage"
	"github.com/petervdpas/jsondesk/internal/ui/render"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) Publish(ev realtime.Event) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

func (p *recordingPublisher) all() []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.Event(nil), p.events...)
}

type fixture struct {
	srv     *httptest.Server
	dataDir string
	db      *storage.DB
	pub     *recordingPublisher
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	if err := render.InitTemplates(); err != nil {
		t.Fatal(err)
	}

	base := t.TempDir()
	store, err := content.NewStore(base, "data")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(store.RootAbs(), name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cat, err := catalog.New([]string{"teams.json", "leagues.json", "bra_a.json"})
	if err != nil {
		t.Fatal(err)
	}
	db, err := storage.Open(filepath.Join(base, ".jsondesk"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	site, err := docs.NewSite()
	if err != nil {
		t.Fatal(err)
	}

	pub := &recordingPublisher{}
	mux := http.NewServeMux()
	Register(mux, Deps{
		Content:      store,
		Catalog:      cat,
		DB:           db,
		Matches:      matches.NewBuilder(store),
		Docs:         site,
		Changes:      pub,
		MaxBodyBytes: 64,
		HistoryLimit: 10,
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &fixture{srv: srv, dataDir: store.RootAbs(), db: db, pub: pub}
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func (f *fixture) post(t *testing.T, path, body string, hdr map[string]string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestDataReturnsBytesVerbatim(t *testing.T) {
	const body = "{ \"FLA\" :\t{}\n}\n"
	f := newFixture(t, map[string]string{"teams.json": body})

	resp, got := f.get(t, "/data/teams.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got != body {
		t.Fatalf("body = %q", got)
	}
	if resp.Header.Get("ETag") == "" {
		t.Fatal("missing ETag")
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		t.Fatalf("content-type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestDataMissingAndBadNames(t *testing.T) {
	f := newFixture(t, nil)

	if resp, _ := f.get(t, "/data/nope.json"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing: status = %d", resp.StatusCode)
	}
	if resp, _ := f.get(t, "/data/"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty: status = %d", resp.StatusCode)
	}
}

func TestSaveWritesBodyVerbatim(t *testing.T) {
	f := newFixture(t, map[string]string{"teams.json": "{}"})
	const body = `{"FLA": {"name": "Fla` // invalid JSON on purpose

	resp, _ := f.post(t, "/admin/save/teams.json", body, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	b, err := os.ReadFile(filepath.Join(f.dataDir, "teams.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != body {
		t.Fatalf("disk = %q", b)
	}

	evs := f.pub.all()
	if len(evs) != 1 || evs[0].File != "teams.json" || evs[0].Source != realtime.SourceSave || evs[0].ETag == "" {
		t.Fatalf("events = %+v", evs)
	}

	_, list := f.get(t, "/api/saves?file=teams.json")
	var recs []storage.SaveRecord
	if err := json.Unmarshal([]byte(list), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Size != int64(len(body)) || recs[0].ETag != evs[0].ETag {
		t.Fatalf("save log = %+v", recs)
	}

	// The new content reads back unchanged.
	if _, got := f.get(t, "/data/teams.json"); got != body {
		t.Fatalf("read back = %q", got)
	}
}

func TestSaveCreatesMissingCatalogFile(t *testing.T) {
	f := newFixture(t, nil)
	if resp, msg := f.post(t, "/admin/save/bra_a.json", "[]", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, msg)
	}
}

func TestSaveRejections(t *testing.T) {
	f := newFixture(t, map[string]string{"teams.json": "{}"})

	cases := []struct {
		name   string
		path   string
		body   string
		hdr    map[string]string
		status int
		msg    string
	}{
		{"not in catalog", "/admin/save/other.json", "{}", nil, http.StatusNotFound, "not an editable file"},
		{"typo gets a hint", "/admin/save/team.json", "{}", nil, http.StatusNotFound, "did you mean teams.json?"},
		{"escaping path", "/admin/save/../jsondesk.json", "{}", nil, http.StatusNotFound, ""},
		{"too large", "/admin/save/teams.json", strings.Repeat("x", 65), nil, http.StatusRequestEntityTooLarge, "too large"},
		{"stale etag", "/admin/save/teams.json", "{}", map[string]string{"If-Match": `"sha256:0000"`}, http.StatusConflict, "conflict"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, msg := f.post(t, tc.path, tc.body, tc.hdr)
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d (%s), want %d", resp.StatusCode, msg, tc.status)
			}
			if tc.msg != "" && !strings.Contains(msg, tc.msg) {
				t.Fatalf("body = %q, want %q", msg, tc.msg)
			}
		})
	}

	b, _ := os.ReadFile(filepath.Join(f.dataDir, "teams.json"))
	if string(b) != "{}" {
		t.Fatalf("rejected saves changed the file: %q", b)
	}
	if len(f.pub.all()) != 0 {
		t.Fatal("rejected saves must not publish")
	}
}

func TestSaveWithMatchingETag(t *testing.T) {
	f := newFixture(t, map[string]string{"teams.json": "{}"})
	resp, _ := f.get(t, "/data/teams.json")
	etag := resp.Header.Get("ETag")

	if resp, msg := f.post(t, "/admin/save/teams.json", `{"a":1}`, map[string]string{"If-Match": etag}); resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, msg)
	}
}

func TestSaveRequiresPost(t *testing.T) {
	f := newFixture(t, nil)
	resp, _ := f.get(t, "/admin/save/teams.json")
	if resp.StatusCode != http.StatusMethodNotAllowed || resp.Header.Get("Allow") != http.MethodPost {
		t.Fatalf("status = %d allow = %q", resp.StatusCode, resp.Header.Get("Allow"))
	}
}

func TestCatalogKeepsOrder(t *testing.T) {
	f := newFixture(t, map[string]string{"leagues.json": "{}"})

	_, body := f.get(t, "/api/catalog")
	var entries []catalogEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.File)
	}
	if strings.Join(names, ",") != "teams.json,leagues.json,bra_a.json" {
		t.Fatalf("order = %v", names)
	}
	if entries[0].Exists || !entries[1].Exists || entries[1].ETag == "" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestFilesFlagsEntriesOutsideCatalog(t *testing.T) {
	f := newFixture(t, map[string]string{
		"teams.json":   "{}",
		"scratch.json": "[]",
	})
	if err := os.Mkdir(filepath.Join(f.dataDir, "old"), 0o755); err != nil {
		t.Fatal(err)
	}

	resp, body := f.get(t, "/api/files")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var files []dataFile
	if err := json.Unmarshal([]byte(body), &files); err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %+v", files)
	}
	if files[0].File != "scratch.json" || files[0].InCatalog {
		t.Fatalf("files[0] = %+v", files[0])
	}
	if files[1].File != "teams.json" || !files[1].InCatalog || files[1].ETag == "" {
		t.Fatalf("files[1] = %+v", files[1])
	}
}

func TestEditorPageEmbedsCatalog(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	for _, want := range []string{`id="file-select"`, `id="editor"`, `"teams.json"`, `"bra_a.json"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %s", want)
		}
	}
	if i, j := strings.Index(body, `"teams.json"`), strings.Index(body, `"leagues.json"`); i > j {
		t.Error("catalog order not kept")
	}

	if resp, _ := f.get(t, "/nothing-here"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", resp.StatusCode)
	}
}

func TestMatchesRoutes(t *testing.T) {
	f := newFixture(t, map[string]string{
		"leagues.json": `{"bra_a": {}}`,
		"teams.json":   `{"FLA": {"name": "Flamengo"}}`,
		"bra_a.json":   `[{"league":"bra_a","kickoff":"2025-01-01T00:00:00Z","home_team":"FLA","away_team":"PAL"}]`,
	})

	resp, body := f.get(t, "/matches")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var list []matches.Match
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].HomeTeam.Name != "Flamengo" || list[0].AwayTeam.Name != "PAL" {
		t.Fatalf("list = %+v", list)
	}

	resp, _ = f.get(t, "/matches/"+list[0].MatchID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("find status = %d", resp.StatusCode)
	}

	resp, body = f.get(t, "/matches/nope")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(body, "Match not found") {
		t.Fatalf("missing: %d %s", resp.StatusCode, body)
	}
}

func TestHelpPages(t *testing.T) {
	f := newFixture(t, nil)
	if resp, body := f.get(t, "/help"); resp.StatusCode != http.StatusOK || !strings.Contains(body, "<h1") {
		t.Fatalf("help: %d", resp.StatusCode)
	}
	if resp, _ := f.get(t, "/help/nope"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown help page status = %d", resp.StatusCode)
	}
}
