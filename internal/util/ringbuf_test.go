package util

import (
	"reflect"
	"testing"
)

func TestRingBufferOverwritesOldest(t *testing.T) {
	r := NewRingBuffer[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}
	if got := r.Snapshot(); !reflect.DeepEqual(got, []int{3, 4, 5}) {
		t.Fatalf("snapshot = %v", got)
	}
	if got := r.Tail(2); !reflect.DeepEqual(got, []int{4, 5}) {
		t.Fatalf("tail = %v", got)
	}
	if r.Len() != 3 {
		t.Fatalf("len = %d", r.Len())
	}
}

func TestCleanFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "teams.json", want: "teams.json"},
		{in: "/leagues.json", want: "leagues.json"},
		{in: `sub\bra_a.json`, want: "sub/bra_a.json"},
		{in: "", wantErr: true},
		{in: "../etc/passwd", wantErr: true},
		{in: "a//b.json", wantErr: true},
	}
	for _, c := range cases {
		got, err := CleanFileName(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("CleanFileName(%q) = %q, want error", c.in, got)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("CleanFileName(%q) = %q, %v; want %q", c.in, got, err, c.want)
		}
	}
}
