package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSeedDataDirKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "teams.json"), []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	created, err := SeedDataDir(dir, []string{"leagues.json", "teams.json", "sub/x.json"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(created, []string{"leagues.json", "sub/x.json"}) {
		t.Fatalf("created = %v", created)
	}

	b, _ := os.ReadFile(filepath.Join(dir, "teams.json"))
	if string(b) != "mine" {
		t.Fatalf("existing file overwritten: %q", b)
	}
	b, _ = os.ReadFile(filepath.Join(dir, "sub", "x.json"))
	if string(b) != "[]\n" {
		t.Fatalf("sub/x.json = %q", b)
	}
}

func TestNormalizeListenAddr(t *testing.T) {
	cases := []struct{ in, listen, url string }{
		{":8000", "127.0.0.1:8000", "http://127.0.0.1:8000"},
		{"0.0.0.0:8000", "0.0.0.0:8000", "http://127.0.0.1:8000"},
		{"localhost:9", "localhost:9", "http://localhost:9"},
	}
	for _, tc := range cases {
		l, u := NormalizeListenAddr(tc.in)
		if l != tc.listen || u != tc.url {
			t.Errorf("%q: got %q %q", tc.in, l, u)
		}
	}
}
