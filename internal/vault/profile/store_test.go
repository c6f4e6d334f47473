package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateID(t *testing.T) {
	for _, id := range []string{"p1", "default", "a-b_c", "550e8400-e29b-41d4-a716-446655440000"} {
		if err := ValidateID(id); err != nil {
			t.Fatalf("id %q rejected: %v", id, err)
		}
	}
	for _, id := range []string{"", "  ", ".", "..", "a/b", `a\b`, "../up", "/abs"} {
		err := ValidateID(id)
		if err == nil {
			t.Fatalf("id %q accepted", id)
		}
		if !errors.Is(err, ErrInvalidID) {
			t.Fatalf("id %q: got %v want wrapped ErrInvalidID", id, err)
		}
	}
}

func TestCreateIdempotent(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	if err := s.Create("p1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Create("p1"); err != nil {
		t.Fatalf("second create: %v", err)
	}
	if !s.Exists("p1") {
		t.Fatalf("profile missing after create")
	}
}

func TestDeleteBestEffort(t *testing.T) {
	s := NewStore(t.TempDir(), nil)
	if err := s.Create("p1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	p, _ := s.Path("p1")
	if err := os.WriteFile(filepath.Join(p, "doc.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s.Delete("p1")
	if s.Exists("p1") {
		t.Fatalf("profile still present after delete")
	}

	// Never panics or errors on absent profiles or bad ids.
	s.Delete("p1")
	s.Delete("../escape")
}

func TestListSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root, nil)
	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := s.Create(id); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	// Stray files in the root are not profiles.
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("list: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("list: got %v want %v", got, want)
		}
	}
}

func TestListMissingRoot(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "never-created"), nil)
	got, err := s.List()
	if err != nil {
		t.Fatalf("list on missing root: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("list on missing root: got %v", got)
	}
}
