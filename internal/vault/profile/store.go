package profile

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store owns the saves root directory layout: one subdirectory per profile
// id. Other components never see paths, only profile ids.
type Store struct {
	root string
	log  *log.Logger
}

func NewStore(root string, logger *log.Logger) *Store {
	return &Store{root: root, log: logger}
}

func (s *Store) Root() string { return s.root }

// ErrInvalidID marks a rejected profile id. Callers translating errors to
// wire codes can tell bad input from internal faults.
var ErrInvalidID = fmt.Errorf("invalid profile id")

// ValidateID rejects ids that could escape the profile's own directory.
// A profile operation must never be able to touch another profile's path.
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidID)
	}
	if id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q must not contain path separators", ErrInvalidID, id)
	}
	return nil
}

// Path resolves the directory for a profile id.
func (s *Store) Path(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return filepath.Join(s.root, id), nil
}

// EnsureDir creates the directory tree if absent. Idempotent.
func (s *Store) EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Create makes the profile directory, creating the saves root as needed.
func (s *Store) Create(id string) error {
	p, err := s.Path(id)
	if err != nil {
		return err
	}
	return s.EnsureDir(p)
}

// Exists reports whether the profile directory is present.
func (s *Store) Exists(id string) bool {
	p, err := s.Path(id)
	if err != nil {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && st.IsDir()
}

// Delete removes the profile directory tree. Deletion is best-effort: a
// missing profile or an I/O failure is logged as a warning, never propagated.
func (s *Store) Delete(id string) {
	p, err := s.Path(id)
	if err != nil {
		if s.log != nil {
			s.log.Printf("delete profile: %v", err)
		}
		return
	}
	if _, err := os.Stat(p); err != nil {
		if s.log != nil {
			s.log.Printf("delete profile %s: nothing to delete", id)
		}
		return
	}
	if err := os.RemoveAll(p); err != nil && s.log != nil {
		s.log.Printf("delete profile %s: %v", id, err)
	}
}

// List returns the ids of every profile directory under the root, sorted.
// A missing root means no profiles, not an error.
func (s *Store) List() ([]string, error) {
	ents, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() && ValidateID(e.Name()) == nil {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}
