package world

import (
	"math/rand"
	"time"

	"worldvault/internal/world/chunk"
	"worldvault/internal/world/grid"
)

// World is the top-level mutable state persisted per profile: scalar
// metadata plus one occupancy grid and one chunk registry. The seed is fixed
// at creation and is the sole source of determinism for regeneration.
type World struct {
	Name            string
	Seed            int64
	FirstGeneration bool
	CreatedAt       time.Time
	LastSavedAt     time.Time

	Grid   *grid.Grid
	Chunks *chunk.Registry
}

// New creates a fresh world with a random seed.
func New(name string, gen chunk.GenParams) *World {
	return NewWithSeed(name, rand.Int63(), gen)
}

// NewWithSeed creates a fresh world with an explicit seed.
func NewWithSeed(name string, seed int64, gen chunk.GenParams) *World {
	gen.Seed = seed
	return &World{
		Name:            name,
		Seed:            seed,
		FirstGeneration: true,
		CreatedAt:       time.Now().UTC(),
		Grid:            grid.New(),
		Chunks:          chunk.NewRegistry(gen),
	}
}
