package grid

import "fmt"

// Cell is one grid coordinate. Footprints expand over X and Y; Z carries the
// layer the object was placed on and is preserved verbatim.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// FootprintSize is the width/height of a rectangular footprint in cells.
type FootprintSize struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Placement records one placed object: the cells it occupies, the object type
// it was placed as, and the slot index used for its representation lookup.
type Placement struct {
	Origin       Cell
	Size         FootprintSize
	Cells        []Cell
	ObjectTypeID int
	SlotIndex    int
}

// OverlapError reports the first already-occupied cell of a rejected footprint.
type OverlapError struct {
	Cell Cell
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("cell (%d,%d,%d) already occupied", e.Cell.X, e.Cell.Y, e.Cell.Z)
}

// ErrNoPlacement is returned by Remove when no placement is anchored at the
// given origin cell. Removal keys off the exact origin used at placement,
// not any other cell of the footprint.
var ErrNoPlacement = fmt.Errorf("no placement anchored at origin")

// ErrBadFootprint is returned by Place for footprints smaller than 1x1,
// which would occupy no cells at all.
var ErrBadFootprint = fmt.Errorf("footprint size must be at least 1x1")

// EmptySlot is the sentinel returned by SlotIndexAt for unoccupied cells.
const EmptySlot = -1

// Grid indexes every occupied cell to its placement. A cell belongs to at
// most one placement at a time; insertion is all-or-nothing per footprint.
type Grid struct {
	cells   map[Cell]*Placement
	origins map[Cell]*Placement
}

func New() *Grid {
	return &Grid{
		cells:   map[Cell]*Placement{},
		origins: map[Cell]*Placement{},
	}
}

// Footprint enumerates the size.X x size.Y cells starting at origin,
// row-major. Placement and validity checks share this single expansion.
// Sizes smaller than 1x1 yield no cells.
func Footprint(origin Cell, size FootprintSize) []Cell {
	if size.X < 1 || size.Y < 1 {
		return nil
	}
	out := make([]Cell, 0, size.X*size.Y)
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			out = append(out, Cell{X: origin.X + x, Y: origin.Y + y, Z: origin.Z})
		}
	}
	return out
}

// CanPlace reports whether the footprint is valid and every cell of it is
// unoccupied.
func (g *Grid) CanPlace(origin Cell, size FootprintSize) bool {
	if size.X < 1 || size.Y < 1 {
		return false
	}
	for _, c := range Footprint(origin, size) {
		if _, ok := g.cells[c]; ok {
			return false
		}
	}
	return true
}

// Place inserts one placement covering the full footprint. If any target cell
// is already occupied it returns an OverlapError and mutates nothing.
func (g *Grid) Place(origin Cell, size FootprintSize, objectTypeID, slotIndex int) error {
	if size.X < 1 || size.Y < 1 {
		return ErrBadFootprint
	}
	fp := Footprint(origin, size)
	for _, c := range fp {
		if _, ok := g.cells[c]; ok {
			return &OverlapError{Cell: c}
		}
	}
	p := &Placement{
		Origin:       origin,
		Size:         size,
		Cells:        fp,
		ObjectTypeID: objectTypeID,
		SlotIndex:    slotIndex,
	}
	for _, c := range fp {
		g.cells[c] = p
	}
	g.origins[origin] = p
	return nil
}

// Remove deletes the placement anchored at origin and clears every cell it
// occupied. The origin must be the exact cell the placement was made with.
func (g *Grid) Remove(origin Cell) error {
	p, ok := g.origins[origin]
	if !ok {
		return ErrNoPlacement
	}
	for _, c := range p.Cells {
		delete(g.cells, c)
	}
	delete(g.origins, origin)
	return nil
}

// PlacementAt returns the placement covering cell, if any.
func (g *Grid) PlacementAt(cell Cell) (*Placement, bool) {
	p, ok := g.cells[cell]
	return p, ok
}

// SlotIndexAt returns the slot index of the object occupying cell, or
// EmptySlot when the cell is free.
func (g *Grid) SlotIndexAt(cell Cell) int {
	p, ok := g.cells[cell]
	if !ok {
		return EmptySlot
	}
	return p.SlotIndex
}

// Placements returns every placement currently on the grid.
func (g *Grid) Placements() []*Placement {
	out := make([]*Placement, 0, len(g.origins))
	for _, p := range g.origins {
		out = append(out, p)
	}
	return out
}

// Len reports the number of occupied cells.
func (g *Grid) Len() int { return len(g.cells) }
