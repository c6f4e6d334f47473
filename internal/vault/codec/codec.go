package codec

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"worldvault/internal/vault/profile"
)

// EnvelopeSchema is the current envelope schema version.
const EnvelopeSchema = 1

// Envelope wraps every persisted document. The Type tag names the concrete
// document shape so decoders never have to guess from structure alone.
type Envelope struct {
	Schema  int             `json:"schema"`
	Type    string          `json:"type"`
	SavedAt time.Time       `json:"saved_at"`
	Payload json.RawMessage `json:"payload"`
}

// LastSavedStamper lets a document receive the save timestamp from the
// service clock instead of the caller's, so the in-memory and on-disk
// times never drift.
type LastSavedStamper interface {
	StampLastSaved(time.Time)
}

// Service persists typed documents under profile directories. It knows
// nothing about what the documents mean.
type Service struct {
	profiles *profile.Store
	now      func() time.Time
}

func NewService(profiles *profile.Store) *Service {
	return &Service{profiles: profiles, now: time.Now}
}

// validTypeName rejects type names that could address a file outside the
// profile's own directory. Documents are stored flat, one file per type.
func validTypeName(typeName string) error {
	if strings.TrimSpace(typeName) == "" {
		return fmt.Errorf("type name must not be empty")
	}
	if typeName == "." || typeName == ".." {
		return fmt.Errorf("invalid type name: %q", typeName)
	}
	if strings.ContainsAny(typeName, `/\`) {
		return fmt.Errorf("type name must not contain path separators: %q", typeName)
	}
	return nil
}

func (s *Service) path(profileID, typeName string) (string, error) {
	if err := validTypeName(typeName); err != nil {
		return "", err
	}
	dir, err := s.profiles.Path(profileID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, typeName+".json"), nil
}

// Save serializes v into a type-tagged envelope and atomically replaces any
// existing document of the same name. If v implements LastSavedStamper it is
// stamped with the save time before encoding.
func (s *Service) Save(profileID, typeName string, v any) error {
	p, err := s.path(profileID, typeName)
	if err != nil {
		return err
	}
	if err := s.profiles.EnsureDir(filepath.Dir(p)); err != nil {
		return err
	}

	savedAt := s.now().UTC()
	if st, ok := v.(LastSavedStamper); ok {
		st.StampLastSaved(savedAt)
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return &EncodeError{Type: typeName, Err: err}
	}
	b, err := json.MarshalIndent(Envelope{
		Schema:  EnvelopeSchema,
		Type:    typeName,
		SavedAt: savedAt,
		Payload: payload,
	}, "", "  ")
	if err != nil {
		return &EncodeError{Type: typeName, Err: err}
	}

	// Write-then-rename so readers never observe a torn document.
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Load reads the document for (profileID, typeName) into out. A missing
// document yields ErrNotFound; content that cannot be decoded as the
// requested type yields a DecodeError.
func (s *Service) Load(profileID, typeName string, out any) error {
	p, err := s.path(profileID, typeName)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s/%s: %w", profileID, typeName, ErrNotFound)
		}
		return err
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return &DecodeError{Type: typeName, Err: err}
	}
	if env.Type != typeName {
		return &DecodeError{Type: typeName, Err: fmt.Errorf("stored type tag %q", env.Type)}
	}
	if env.Schema != EnvelopeSchema {
		return &DecodeError{Type: typeName, Err: fmt.Errorf("unsupported envelope schema %d", env.Schema)}
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return &DecodeError{Type: typeName, Err: err}
	}
	return nil
}

// LoadEnvelope reads the raw envelope without decoding the payload.
func (s *Service) LoadEnvelope(profileID, typeName string) (Envelope, error) {
	var env Envelope
	p, err := s.path(profileID, typeName)
	if err != nil {
		return env, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return env, fmt.Errorf("%s/%s: %w", profileID, typeName, ErrNotFound)
		}
		return env, err
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return env, &DecodeError{Type: typeName, Err: err}
	}
	return env, nil
}

// Delete removes the document if present. Deleting a document that does not
// exist reports false without error.
func (s *Service) Delete(profileID, typeName string) (bool, error) {
	p, err := s.path(profileID, typeName)
	if err != nil {
		return false, err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Exists reports whether a document is present. Pure query.
func (s *Service) Exists(profileID, typeName string) bool {
	p, err := s.path(profileID, typeName)
	if err != nil {
		return false
	}
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}
