package session

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"worldvault/internal/config"
	"worldvault/internal/vault/archive"
	"worldvault/internal/vault/codec"
	"worldvault/internal/vault/indexdb"
	"worldvault/internal/vault/mirror"
	"worldvault/internal/vault/profile"
	"worldvault/internal/vault/registry"
	"worldvault/internal/world"
	"worldvault/internal/world/chunk"
)

// Session wires the store, codec, index, registry and world together for one
// running vault. Constructed once at startup, torn down with Close; nothing
// here is a process-wide singleton.
type Session struct {
	cfg config.Config
	log *log.Logger

	Profiles *profile.Store
	Docs     *codec.Service
	Index    *indexdb.SQLiteIndex
	Registry *registry.Registry
	Mirror   *mirror.Mirror

	worldHandler *world.Handler
}

// ProfileSummary is what listing surfaces report per profile.
type ProfileSummary struct {
	ID        string
	LastSaved time.Time
}

func Open(cfg config.Config, logger *log.Logger) (*Session, error) {
	s := &Session{cfg: cfg, log: logger}
	s.Profiles = profile.NewStore(cfg.SavesRoot, logger)
	s.Docs = codec.NewService(s.Profiles)
	s.Registry = registry.New(s.Profiles)

	if !cfg.DisableDB {
		idx, err := indexdb.Open(cfg.IndexDB)
		if err != nil {
			return nil, err
		}
		s.Index = idx
	}

	if cfg.Mirror.Enabled {
		mc := cfg.Mirror
		client, err := mirror.NewClient(mc.Endpoint, mc.Bucket, mc.AccessKeyID, mc.SecretAccessKey)
		if err != nil {
			if s.Index != nil {
				_ = s.Index.Close()
			}
			return nil, err
		}
		s.Mirror = mirror.New(client, cfg.ArchivesDir, mc.Prefix, mc.Workers, mc.QueueCapacity, logger)
	}

	s.worldHandler = world.NewHandler(s.Docs, world.New(cfg.WorldName, s.genParams()))
	s.Registry.Register(s.worldHandler)
	return s, nil
}

func (s *Session) Close() error {
	s.Registry.Deregister(s.worldHandler)
	s.Mirror.Close()
	if s.Index != nil {
		return s.Index.Close()
	}
	return nil
}

func (s *Session) genParams() chunk.GenParams {
	return chunk.GenParams{
		Width:      s.cfg.Chunk.Width,
		Height:     s.cfg.Chunk.Height,
		RegionSize: s.cfg.Chunk.RegionSize,
	}
}

// World is the live world aggregate of the active session.
func (s *Session) World() *world.World { return s.worldHandler.World() }

// ResetWorld replaces the live world with a fresh one, randomly seeded
// unless an explicit seed is given.
func (s *Session) ResetWorld(name string, seed *int64) {
	if name == "" {
		name = s.cfg.WorldName
	}
	if seed != nil {
		s.worldHandler.SetWorld(world.NewWithSeed(name, *seed, s.genParams()))
		return
	}
	s.worldHandler.SetWorld(world.New(name, s.genParams()))
}

// CreateProfile provisions a profile directory and the initial documents of
// every handler. An empty id gets a generated one. Returns the profile id.
func (s *Session) CreateProfile(ctx context.Context, id string, seed *int64) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	s.ResetWorld("", seed)
	err := s.Registry.CreateAll(ctx, id)
	s.record(id, "create", err)
	if err != nil {
		return "", err
	}
	if s.Index != nil {
		s.Index.RecordProfile(id, s.World().Seed)
	}
	return id, nil
}

// SaveAll persists every handler's document for the profile.
func (s *Session) SaveAll(ctx context.Context, id string) error {
	err := s.Registry.SaveAll(ctx, id)
	s.record(id, "save", err)
	return err
}

// LoadAll restores every handler's document for the profile.
func (s *Session) LoadAll(ctx context.Context, id string) error {
	err := s.Registry.LoadAll(ctx, id)
	s.record(id, "load", err)
	return err
}

// LoadOrCreate loads the profile, falling back to creating it when no
// documents exist yet. Absence is the normal first-run signal, not a fault.
func (s *Session) LoadOrCreate(ctx context.Context, id string) error {
	err := s.LoadAll(ctx, id)
	if errors.Is(err, codec.ErrNotFound) {
		_, err = s.CreateProfile(ctx, id, nil)
	}
	return err
}

// DeleteAll removes every handler's document for the profile.
func (s *Session) DeleteAll(ctx context.Context, id string) error {
	err := s.Registry.DeleteAll(ctx, id)
	s.record(id, "delete", err)
	return err
}

// DeleteProfile removes the profile's documents and then its directory.
// Directory removal is best-effort per the store's contract.
func (s *Session) DeleteProfile(ctx context.Context, id string) error {
	if err := s.DeleteAll(ctx, id); err != nil {
		return err
	}
	s.Profiles.Delete(id)
	return nil
}

// ArchiveProfile snapshots the profile's documents into the archives dir
// and, when mirroring is enabled, queues the snapshot for off-site upload.
func (s *Session) ArchiveProfile(id string) (string, error) {
	dir, err := archive.ArchiveProfile(s.Profiles, s.cfg.ArchivesDir, id)
	s.record(id, "archive", err)
	if err == nil {
		s.Mirror.EnqueueDir(dir)
	}
	return dir, err
}

// ListProfiles enumerates profiles with their last save time, taken from
// the stored world document envelope.
func (s *Session) ListProfiles() ([]ProfileSummary, error) {
	ids, err := s.Profiles.List()
	if err != nil {
		return nil, err
	}
	out := make([]ProfileSummary, 0, len(ids))
	for _, id := range ids {
		p := ProfileSummary{ID: id}
		if env, err := s.Docs.LoadEnvelope(id, world.DocType); err == nil {
			p.LastSaved = env.SavedAt
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Session) record(id, op string, err error) {
	if s.Index == nil {
		return
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	s.Index.RecordOp(id, op, world.DocType, err == nil, detail)
}
