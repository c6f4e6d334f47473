package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"worldvault/internal/vault/profile"
)

// Meta describes one archived profile snapshot.
type Meta struct {
	Profile   string   `json:"profile"`
	CreatedAt string   `json:"created_at"`
	Documents []string `json:"documents"`
}

const metaName = "meta.json"

// ArchiveProfile copies every document of a profile into
// `<archivesDir>/<profile>/<stamp>/` as zstd-compressed files plus a
// meta.json, and returns the archive directory.
func ArchiveProfile(store *profile.Store, archivesDir, profileID string) (string, error) {
	src, err := store.Path(profileID)
	if err != nil {
		return "", err
	}
	ents, err := os.ReadDir(src)
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", profileID, err)
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	dir := filepath.Join(archivesDir, profileID, stamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	meta := Meta{
		Profile:   profileID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	for _, e := range ents {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := compressFile(filepath.Join(src, e.Name()), filepath.Join(dir, e.Name()+".zst")); err != nil {
			return "", err
		}
		meta.Documents = append(meta.Documents, e.Name())
	}
	sort.Strings(meta.Documents)

	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, metaName), b, 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

// RestoreProfile decompresses an archive directory back into the profile's
// directory, overwriting current documents.
func RestoreProfile(store *profile.Store, archiveDir, profileID string) error {
	b, err := os.ReadFile(filepath.Join(archiveDir, metaName))
	if err != nil {
		return fmt.Errorf("restore %s: %w", profileID, err)
	}
	var meta Meta
	if err := json.Unmarshal(b, &meta); err != nil {
		return fmt.Errorf("restore %s: %w", profileID, err)
	}

	dst, err := store.Path(profileID)
	if err != nil {
		return err
	}
	if err := store.EnsureDir(dst); err != nil {
		return err
	}
	for _, name := range meta.Documents {
		if err := decompressFile(filepath.Join(archiveDir, name+".zst"), filepath.Join(dst, name)); err != nil {
			return err
		}
	}
	return nil
}

// ReadMeta loads an archive's meta.json.
func ReadMeta(archiveDir string) (Meta, error) {
	var meta Meta
	b, err := os.ReadFile(filepath.Join(archiveDir, metaName))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		return meta, err
	}
	return meta, nil
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	enc, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := io.Copy(enc, in); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return out.Close()
}

func decompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return err
	}
	defer dec.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, dec.IOReadCloser()); err != nil {
		return err
	}
	return out.Close()
}
