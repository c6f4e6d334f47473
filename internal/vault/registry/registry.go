package registry

import (
	"context"
	"fmt"

	"worldvault/internal/vault/profile"
)

// Handler is the per-subsystem persistence contract. Each handler owns one
// document keyed by its TypeName and is invoked sequentially by the
// registry, so implementations need no internal locking for these calls.
type Handler interface {
	TypeName() string
	CreateData(ctx context.Context, profileID string) error
	SaveData(ctx context.Context, profileID string) error
	LoadData(ctx context.Context, profileID string) error
	DeleteData(ctx context.Context, profileID string) error
}

// Registry orchestrates the create/save/load/delete lifecycle across every
// registered handler. Participants register at construction and deregister
// at teardown; there is no runtime discovery scan.
type Registry struct {
	profiles *profile.Store
	handlers []Handler
	active   string
}

func New(profiles *profile.Store) *Registry {
	return &Registry{profiles: profiles}
}

// Register appends a handler. Registration order is the dispatch order and
// is stable across calls.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Deregister removes a previously registered handler.
func (r *Registry) Deregister(h Handler) {
	for i, cur := range r.handlers {
		if cur == h {
			r.handlers = append(r.handlers[:i], r.handlers[i+1:]...)
			return
		}
	}
}

// Handlers returns the registered handlers in dispatch order.
func (r *Registry) Handlers() []Handler {
	out := make([]Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// SelectProfile validates and records the active profile id.
func (r *Registry) SelectProfile(id string) error {
	if err := profile.ValidateID(id); err != nil {
		return err
	}
	r.active = id
	return nil
}

func (r *Registry) ActiveProfile() string { return r.active }

type op int

const (
	opCreate op = iota
	opSave
	opLoad
	opDelete
)

func (o op) String() string {
	switch o {
	case opCreate:
		return "create"
	case opSave:
		return "save"
	case opLoad:
		return "load"
	default:
		return "delete"
	}
}

// CreateAll makes the profile directory and runs CreateData on every handler.
func (r *Registry) CreateAll(ctx context.Context, profileID string) error {
	if err := r.SelectProfile(profileID); err != nil {
		return err
	}
	if err := r.profiles.Create(profileID); err != nil {
		return err
	}
	return r.dispatch(ctx, profileID, opCreate)
}

// SaveAll persists every handler's document for the profile.
func (r *Registry) SaveAll(ctx context.Context, profileID string) error {
	if err := r.SelectProfile(profileID); err != nil {
		return err
	}
	if err := r.profiles.Create(profileID); err != nil {
		return err
	}
	return r.dispatch(ctx, profileID, opSave)
}

// LoadAll restores every handler's document for the profile.
func (r *Registry) LoadAll(ctx context.Context, profileID string) error {
	if err := r.SelectProfile(profileID); err != nil {
		return err
	}
	return r.dispatch(ctx, profileID, opLoad)
}

// DeleteAll removes every handler's document for the profile. The profile
// directory itself is the store's concern, not the registry's.
func (r *Registry) DeleteAll(ctx context.Context, profileID string) error {
	if err := r.SelectProfile(profileID); err != nil {
		return err
	}
	return r.dispatch(ctx, profileID, opDelete)
}

// dispatch runs one lifecycle operation handler by handler. Each call is
// awaited to completion before the next begins; the first failure stops
// dispatch and is returned wrapped with the handler's type name. Handlers
// that already completed are not rolled back.
func (r *Registry) dispatch(ctx context.Context, profileID string, o op) error {
	for _, h := range r.handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch o {
		case opCreate:
			err = h.CreateData(ctx, profileID)
		case opSave:
			err = h.SaveData(ctx, profileID)
		case opLoad:
			err = h.LoadData(ctx, profileID)
		case opDelete:
			err = h.DeleteData(ctx, profileID)
		}
		if err != nil {
			return fmt.Errorf("%s %s: %w", o, h.TypeName(), err)
		}
	}
	return nil
}
