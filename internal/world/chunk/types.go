package chunk

import "worldvault/internal/world/mathx"

// Coord is a chunk coordinate on the chunk grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GenParams drives deterministic tile generation. The seed comes from the
// owning world and never changes for the life of a profile.
type GenParams struct {
	Seed       int64
	Width      int // cells per chunk along X
	Height     int // cells per chunk along Y
	RegionSize int // chunks per terrain variation region
}

func (p GenParams) withDefaults() GenParams {
	if p.Width <= 0 {
		p.Width = 16
	}
	if p.Height <= 0 {
		p.Height = 16
	}
	if p.RegionSize <= 0 {
		p.RegionSize = 4
	}
	return p
}

// Chunk is one rectangular world region. Metadata survives unloading; only
// the tile payload is transient, and only while the chunk is unmodified.
type Chunk struct {
	GridPos  Coord // position on the chunk grid
	LocalPos Coord // position within the terrain variation region
	OriginX  int   // world cell offset of the chunk's first cell
	OriginY  int
	Width    int
	Height   int

	Loaded   bool
	Modified bool

	// Tiles is row-major Width*Height. Nil while unloaded and unmodified;
	// regenerated from GenParams on load.
	Tiles []uint16
}

func (c *Chunk) index(x, y int) int { return x + y*c.Width }

func (c *Chunk) Tile(x, y int) uint16 {
	return c.Tiles[c.index(x, y)]
}

// SetTile writes one tile and flags the chunk as modified once its content
// diverges from the generation-time baseline. The flag is never cleared.
func (c *Chunk) SetTile(x, y int, t uint16) {
	i := c.index(x, y)
	if c.Tiles[i] == t {
		return
	}
	c.Tiles[i] = t
	c.Modified = true
}

// Restored builds a chunk from persisted metadata. The caller supplies the
// tile buffer for modified chunks before registering it.
func Restored(p GenParams, at Coord, loaded, modified bool) *Chunk {
	p = p.withDefaults()
	c := newChunk(p, at)
	c.Loaded = loaded
	c.Modified = modified
	return c
}

func newChunk(p GenParams, at Coord) *Chunk {
	return &Chunk{
		GridPos:  at,
		LocalPos: Coord{X: mathx.Mod(at.X, p.RegionSize), Y: mathx.Mod(at.Y, p.RegionSize)},
		OriginX:  at.X * p.Width,
		OriginY:  at.Y * p.Height,
		Width:    p.Width,
		Height:   p.Height,
	}
}
