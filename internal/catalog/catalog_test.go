package catalog

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewKeepsOrderAndDuplicates(t *testing.T) {
	in := []string{"teams.json", "leagues.json", "teams.json"}
	c, err := New(in)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(c.Files(), in) {
		t.Fatalf("files = %v", c.Files())
	}
	if c.Len() != 3 || c.First() != "teams.json" {
		t.Fatalf("len=%d first=%q", c.Len(), c.First())
	}
	if !c.Contains("leagues.json") || c.Contains("bra_a.json") {
		t.Fatal("Contains mismatch")
	}
}

func TestFilesReturnsCopy(t *testing.T) {
	c, _ := New([]string{"a.json"})
	f := c.Files()
	f[0] = "mutated"
	if c.First() != "a.json" {
		t.Fatal("catalog mutated through Files()")
	}
}

func TestNewRejects(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
	if _, err := New([]string{"ok.json", "../bad.json"}); err == nil {
		t.Fatal("expected error for escaping name")
	}
	var zero Catalog
	if zero.First() != "" {
		t.Fatal("zero catalog First should be empty")
	}
}

func TestSuggest(t *testing.T) {
	c, _ := New([]string{"teams.json", "leagues.json", "teams.json", "bra_a.json"})

	cases := map[string][]string{
		"teams.json":  {"teams.json"},
		"team.json":   {"teams.json"},
		"Teams.JSON":  {"teams.json"},
		"bra_b.json":  {"bra_a.json"},
		"matches.csv": {},
	}
	for in, want := range cases {
		got := c.Suggest(in)
		if len(got) != len(want) {
			t.Errorf("Suggest(%q) = %v, want %v", in, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Suggest(%q) = %v, want %v", in, got, want)
			}
		}
	}
}
