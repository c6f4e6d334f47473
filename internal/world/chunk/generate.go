package chunk

import "worldvault/internal/world/mathx"

// Tile palette ids. Zero is always void so fresh buffers decode cleanly.
const (
	TileVoid uint16 = iota
	TileSoil
	TileRock
	TileSand
	TileOre
)

// terrainAt derives one tile from (seed, world cell). Pure function: the same
// seed always regenerates identical tiles for unloaded chunks.
func terrainAt(p GenParams, wx, wy int) uint16 {
	region := mathx.Hash2(p.Seed, mathx.FloorDiv(wx, p.Width*p.RegionSize), mathx.FloorDiv(wy, p.Height*p.RegionSize))
	roll := mathx.Hash2(p.Seed+1, wx, wy) % 1000
	switch region % 3 {
	case 0: // plains
		switch {
		case roll < 20:
			return TileRock
		case roll < 420:
			return TileSoil
		default:
			return TileVoid
		}
	case 1: // highlands
		switch {
		case roll < 30:
			return TileOre
		case roll < 500:
			return TileRock
		default:
			return TileSoil
		}
	default: // dunes
		switch {
		case roll < 10:
			return TileOre
		case roll < 600:
			return TileSand
		default:
			return TileVoid
		}
	}
}

// generate fills the chunk's tile buffer from the generation parameters.
func generate(p GenParams, c *Chunk) {
	c.Tiles = make([]uint16, c.Width*c.Height)
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			c.Tiles[x+y*c.Width] = terrainAt(p, c.OriginX+x, c.OriginY+y)
		}
	}
}
