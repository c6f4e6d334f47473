package world

import (
	"fmt"
	"sort"
	"time"

	"worldvault/internal/world/chunk"
	"worldvault/internal/world/encoding"
	"worldvault/internal/world/grid"
)

// DocType is the document name the world aggregate persists under.
const DocType = "WorldDocumentV1"

// DocumentV1 is the persisted shape of a world. Placements are flattened to
// value records (origin + footprint), never cell->record pointers, so the
// encoded graph is acyclic by construction.
type DocumentV1 struct {
	Name            string    `json:"name"`
	Seed            int64     `json:"seed"`
	FirstGeneration bool      `json:"first_generation"`
	CreatedAt       time.Time `json:"created_at"`
	LastSavedAt     time.Time `json:"last_saved_at"`

	Gen        GenParamsV1   `json:"gen"`
	Placements []PlacementV1 `json:"placements"`
	Chunks     []ChunkV1     `json:"chunks"`
}

type GenParamsV1 struct {
	Width      int `json:"width"`
	Height     int `json:"height"`
	RegionSize int `json:"region_size"`
}

type PlacementV1 struct {
	Origin       grid.Cell          `json:"origin"`
	Size         grid.FootprintSize `json:"size"`
	ObjectTypeID int                `json:"object_type_id"`
	SlotIndex    int                `json:"slot_index"`
}

// ChunkV1 carries chunk metadata for every known chunk. Tiles are persisted
// (RLE) only for modified chunks; the rest regenerate from the seed.
type ChunkV1 struct {
	CX       int    `json:"cx"`
	CY       int    `json:"cy"`
	Loaded   bool   `json:"loaded"`
	Modified bool   `json:"modified,omitempty"`
	Tiles    string `json:"tiles,omitempty"`
}

// StampLastSaved receives the save timestamp from the serialization service
// so the document and the disk agree on when the save happened.
func (d *DocumentV1) StampLastSaved(t time.Time) { d.LastSavedAt = t }

// Export flattens the live world into a versioned document.
func Export(w *World) *DocumentV1 {
	gen := w.Chunks.Gen()
	doc := &DocumentV1{
		Name:            w.Name,
		Seed:            w.Seed,
		FirstGeneration: w.FirstGeneration,
		CreatedAt:       w.CreatedAt,
		LastSavedAt:     w.LastSavedAt,
		Gen: GenParamsV1{
			Width:      gen.Width,
			Height:     gen.Height,
			RegionSize: gen.RegionSize,
		},
	}

	for _, p := range w.Grid.Placements() {
		doc.Placements = append(doc.Placements, PlacementV1{
			Origin:       p.Origin,
			Size:         p.Size,
			ObjectTypeID: p.ObjectTypeID,
			SlotIndex:    p.SlotIndex,
		})
	}
	sortPlacements(doc.Placements)

	for _, at := range w.Chunks.Coords() {
		c, _ := w.Chunks.Get(at)
		cv := ChunkV1{
			CX:       c.GridPos.X,
			CY:       c.GridPos.Y,
			Loaded:   c.Loaded,
			Modified: c.Modified,
		}
		if c.Modified {
			cv.Tiles = encoding.EncodeRLE(c.Tiles)
		}
		doc.Chunks = append(doc.Chunks, cv)
	}
	return doc
}

// Import rebuilds a world from a persisted document. The returned world is
// no longer in first generation.
func Import(doc *DocumentV1) (*World, error) {
	gen := chunk.GenParams{
		Seed:       doc.Seed,
		Width:      doc.Gen.Width,
		Height:     doc.Gen.Height,
		RegionSize: doc.Gen.RegionSize,
	}
	w := NewWithSeed(doc.Name, doc.Seed, gen)
	w.FirstGeneration = false
	w.CreatedAt = doc.CreatedAt
	w.LastSavedAt = doc.LastSavedAt

	for _, p := range doc.Placements {
		if err := w.Grid.Place(p.Origin, p.Size, p.ObjectTypeID, p.SlotIndex); err != nil {
			return nil, fmt.Errorf("placement at (%d,%d,%d): %w", p.Origin.X, p.Origin.Y, p.Origin.Z, err)
		}
	}

	for _, cv := range doc.Chunks {
		restored, err := restoreChunk(w.Chunks.Gen(), cv)
		if err != nil {
			return nil, err
		}
		w.Chunks.Restore(restored)
	}
	return w, nil
}

func restoreChunk(gen chunk.GenParams, cv ChunkV1) (*chunk.Chunk, error) {
	c := chunk.Restored(gen, chunk.Coord{X: cv.CX, Y: cv.CY}, cv.Loaded, cv.Modified)
	if cv.Modified {
		tiles, err := encoding.DecodeRLE(cv.Tiles)
		if err != nil {
			return nil, fmt.Errorf("chunk (%d,%d) tiles: %w", cv.CX, cv.CY, err)
		}
		if len(tiles) != c.Width*c.Height {
			return nil, fmt.Errorf("chunk (%d,%d) tiles length mismatch: got %d want %d", cv.CX, cv.CY, len(tiles), c.Width*c.Height)
		}
		c.Tiles = tiles
	}
	return c, nil
}

func sortPlacements(ps []PlacementV1) {
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i].Origin, ps[j].Origin
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
}
