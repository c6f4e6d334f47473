package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"worldvault/internal/config"
	"worldvault/internal/vault/codec"
	"worldvault/internal/world/chunk"
	"worldvault/internal/world/grid"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg = config.UnderDataDir(cfg, t.TempDir())
	cfg.DisableDB = true
	return cfg
}

func openSession(t *testing.T, cfg config.Config) *Session {
	t.Helper()
	s, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveLoadDeleteLifecycle(t *testing.T) {
	s := openSession(t, testConfig(t))
	ctx := context.Background()
	seed := int64(42)

	id, err := s.CreateProfile(ctx, "p1", &seed)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "p1" {
		t.Fatalf("create returned id %q", id)
	}
	if s.World().Seed != 42 {
		t.Fatalf("world seed: %d", s.World().Seed)
	}

	// Mutate the world so the load has something to prove.
	if err := s.World().Grid.Place(grid.Cell{X: 1, Y: 1, Z: 0}, grid.FootprintSize{X: 2, Y: 1}, 3, 0); err != nil {
		t.Fatalf("place: %v", err)
	}
	c := s.World().Chunks.GetOrCreate(chunk.Coord{X: 0, Y: 0})
	c.SetTile(2, 2, c.Tile(2, 2)+1)
	s.World().Chunks.MarkModifiedIfDirty(c)

	if err := s.SaveAll(ctx, "p1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A fresh world replaces the saved one, then load brings it back.
	s.ResetWorld("other", nil)
	if err := s.LoadAll(ctx, "p1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	w := s.World()
	if w.Seed != 42 || w.FirstGeneration {
		t.Fatalf("loaded world: seed=%d first=%v", w.Seed, w.FirstGeneration)
	}
	if _, ok := w.Grid.PlacementAt(grid.Cell{X: 2, Y: 1, Z: 0}); !ok {
		t.Fatalf("placement footprint lost across save/load")
	}
	if !w.Chunks.IsModified(chunk.Coord{X: 0, Y: 0}) {
		t.Fatalf("modified chunk lost across save/load")
	}

	// Delete the profile; loading it afterwards is a not-found, not a crash.
	if err := s.DeleteProfile(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Profiles.Exists("p1") {
		t.Fatalf("profile dir survived delete")
	}
	if err := s.LoadAll(ctx, "p1"); !errors.Is(err, codec.ErrNotFound) {
		t.Fatalf("load after delete: got %v want ErrNotFound", err)
	}
}

func TestLoadOrCreate(t *testing.T) {
	s := openSession(t, testConfig(t))
	ctx := context.Background()

	if err := s.LoadOrCreate(ctx, "fresh"); err != nil {
		t.Fatalf("loadOrCreate on fresh profile: %v", err)
	}
	if !s.Profiles.Exists("fresh") {
		t.Fatalf("profile not created")
	}
	created := s.World().Seed

	if err := s.SaveAll(ctx, "fresh"); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.ResetWorld("", nil)
	if err := s.LoadOrCreate(ctx, "fresh"); err != nil {
		t.Fatalf("loadOrCreate on existing profile: %v", err)
	}
	if s.World().Seed != created {
		t.Fatalf("existing profile was recreated: seed %d -> %d", created, s.World().Seed)
	}
}

func TestCreateGeneratesProfileID(t *testing.T) {
	s := openSession(t, testConfig(t))
	id, err := s.CreateProfile(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("empty generated id")
	}
	if !s.Profiles.Exists(id) {
		t.Fatalf("generated profile %q missing on disk", id)
	}
}

func TestListProfilesReportsLastSaved(t *testing.T) {
	s := openSession(t, testConfig(t))
	ctx := context.Background()

	if _, err := s.CreateProfile(ctx, "a", nil); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := s.CreateProfile(ctx, "b", nil); err != nil {
		t.Fatalf("create b: %v", err)
	}
	if err := s.SaveAll(ctx, "b"); err != nil {
		t.Fatalf("save b: %v", err)
	}

	list, err := s.ListProfiles()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("list: %+v", list)
	}
	if list[1].LastSaved.IsZero() {
		t.Fatalf("saved profile reports zero last-saved time")
	}
}

func TestArchiveAfterSave(t *testing.T) {
	cfg := testConfig(t)
	s := openSession(t, cfg)
	ctx := context.Background()

	if _, err := s.CreateProfile(ctx, "p1", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SaveAll(ctx, "p1"); err != nil {
		t.Fatalf("save: %v", err)
	}

	dir, err := s.ArchiveProfile("p1")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if filepath.Dir(filepath.Dir(dir)) != cfg.ArchivesDir {
		t.Fatalf("archive dir %q not under %q", dir, cfg.ArchivesDir)
	}
}

func TestSessionWithIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.DisableDB = false
	s := openSession(t, cfg)
	ctx := context.Background()

	if _, err := s.CreateProfile(ctx, "p1", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.SaveAll(ctx, "p1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Index.Flush()

	at, err := s.Index.LastSuccessfulSave("p1")
	if err != nil {
		t.Fatalf("lastSuccessfulSave: %v", err)
	}
	if at.IsZero() {
		t.Fatalf("save not indexed")
	}
	ops, err := s.Index.RecentOps("p1", 10)
	if err != nil {
		t.Fatalf("recentOps: %v", err)
	}
	if len(ops) < 2 {
		t.Fatalf("expected create and save ops, got %v", ops)
	}
}
