package chunk

import (
	"fmt"
	"sort"
)

// ErrUnknownChunk is returned by mutations addressed at a coordinate the
// registry has never created. Read-only queries return false instead.
var ErrUnknownChunk = fmt.Errorf("unknown chunk coordinate")

// Registry tracks every chunk ever created plus the subset whose content has
// diverged from its generation baseline. Modified chunks are what a save
// must persist; everything else regenerates from the seed.
type Registry struct {
	gen      GenParams
	all      map[Coord]*Chunk
	modified map[Coord]*Chunk
}

func NewRegistry(gen GenParams) *Registry {
	return &Registry{
		gen:      gen.withDefaults(),
		all:      map[Coord]*Chunk{},
		modified: map[Coord]*Chunk{},
	}
}

func (r *Registry) Gen() GenParams { return r.gen }

// GetOrCreate returns the chunk at the coordinate, constructing and
// registering it on first use. Idempotent per coordinate: repeated calls
// return the same entry and never duplicate registrations.
func (r *Registry) GetOrCreate(at Coord) *Chunk {
	if c, ok := r.all[at]; ok {
		return c
	}
	c := newChunk(r.gen, at)
	generate(r.gen, c)
	c.Loaded = true
	r.all[at] = c
	return c
}

// SetLoadState toggles a known chunk between loaded and unloaded. Unloading
// keeps the chunk registered and releases the tile buffer unless the chunk
// has been modified; loading regenerates a released buffer from the seed.
func (r *Registry) SetLoadState(at Coord, loaded bool) (*Chunk, error) {
	c, ok := r.all[at]
	if !ok {
		return nil, ErrUnknownChunk
	}
	if c.Loaded == loaded {
		return c, nil
	}
	c.Loaded = loaded
	if loaded {
		if c.Tiles == nil {
			generate(r.gen, c)
		}
	} else if !c.Modified {
		c.Tiles = nil
	}
	return c, nil
}

// Area returns a read-only row-major snapshot of the (2*radiusX+1) x
// (2*radiusY+1) rectangle around center. Coordinates never created yield nil
// entries; nothing is mutated or generated.
func (r *Registry) Area(center Coord, radiusX, radiusY int) []*Chunk {
	w := 2*radiusX + 1
	h := 2*radiusY + 1
	out := make([]*Chunk, 0, w*h)
	for dy := -radiusY; dy <= radiusY; dy++ {
		for dx := -radiusX; dx <= radiusX; dx++ {
			out = append(out, r.all[Coord{X: center.X + dx, Y: center.Y + dy}])
		}
	}
	return out
}

// MarkModifiedIfDirty enrolls the chunk in the modified set iff its modified
// flag is set. Enrolling twice is a no-op.
func (r *Registry) MarkModifiedIfDirty(c *Chunk) {
	if c == nil || !c.Modified {
		return
	}
	if _, ok := r.modified[c.GridPos]; ok {
		return
	}
	r.modified[c.GridPos] = c
}

func (r *Registry) IsLoaded(at Coord) bool {
	c, ok := r.all[at]
	return ok && c.Loaded
}

func (r *Registry) IsModified(at Coord) bool {
	c, ok := r.all[at]
	return ok && c.Modified
}

func (r *Registry) Len() int { return len(r.all) }

// Coords returns every registered coordinate in deterministic order.
func (r *Registry) Coords() []Coord {
	out := make([]Coord, 0, len(r.all))
	for k := range r.all {
		out = append(out, k)
	}
	sortCoords(out)
	return out
}

// ModifiedCoords returns the modified subset in deterministic order.
func (r *Registry) ModifiedCoords() []Coord {
	out := make([]Coord, 0, len(r.modified))
	for k := range r.modified {
		out = append(out, k)
	}
	sortCoords(out)
	return out
}

// Get returns a registered chunk without creating it.
func (r *Registry) Get(at Coord) (*Chunk, bool) {
	c, ok := r.all[at]
	return c, ok
}

// Restore registers a persisted chunk. A loaded chunk restored without a
// tile buffer regenerates one from the seed. Used when a world document is
// reloaded.
func (r *Registry) Restore(c *Chunk) {
	if c.Loaded && c.Tiles == nil {
		generate(r.gen, c)
	}
	r.all[c.GridPos] = c
	if c.Modified {
		r.modified[c.GridPos] = c
	}
}

func sortCoords(cs []Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].X != cs[j].X {
			return cs[i].X < cs[j].X
		}
		return cs[i].Y < cs[j].Y
	})
}
