package world

import (
	"context"

	"worldvault/internal/vault/codec"
)

// Handler plugs the world aggregate into the data handler lifecycle. It owns
// the live world for the active session; LoadData swaps it for the persisted
// one.
type Handler struct {
	docs  *codec.Service
	world *World
}

func NewHandler(docs *codec.Service, w *World) *Handler {
	return &Handler{docs: docs, world: w}
}

func (h *Handler) World() *World     { return h.world }
func (h *Handler) SetWorld(w *World) { h.world = w }

func (h *Handler) TypeName() string { return DocType }

// CreateData persists the freshly generated world as the profile's initial
// document.
func (h *Handler) CreateData(ctx context.Context, profileID string) error {
	return h.persist(ctx, profileID)
}

// SaveData persists the current world state, overwriting the previous
// document whole.
func (h *Handler) SaveData(ctx context.Context, profileID string) error {
	return h.persist(ctx, profileID)
}

func (h *Handler) persist(ctx context.Context, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := Export(h.world)
	if err := h.docs.Save(profileID, DocType, doc); err != nil {
		return err
	}
	// The service stamped the document; mirror it so memory and disk agree.
	h.world.LastSavedAt = doc.LastSavedAt
	return nil
}

// LoadData replaces the live world with the persisted one.
func (h *Handler) LoadData(ctx context.Context, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var doc DocumentV1
	if err := h.docs.Load(profileID, DocType, &doc); err != nil {
		return err
	}
	w, err := Import(&doc)
	if err != nil {
		return err
	}
	h.world = w
	return nil
}

// DeleteData removes the profile's world document if present.
func (h *Handler) DeleteData(ctx context.Context, profileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := h.docs.Delete(profileID, DocType)
	return err
}
