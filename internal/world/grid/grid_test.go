package grid

import (
	"errors"
	"testing"
)

func TestPlaceIndexesFullFootprint(t *testing.T) {
	g := New()
	origin := Cell{X: 0, Y: 0, Z: 0}
	if err := g.Place(origin, FootprintSize{X: 2, Y: 2}, 7, 3); err != nil {
		t.Fatalf("place: %v", err)
	}
	if g.Len() != 4 {
		t.Fatalf("expected 4 occupied cells, got %d", g.Len())
	}
	p0, ok := g.PlacementAt(Cell{X: 0, Y: 0, Z: 0})
	if !ok {
		t.Fatalf("missing placement at origin")
	}
	for _, c := range Footprint(origin, FootprintSize{X: 2, Y: 2}) {
		p, ok := g.PlacementAt(c)
		if !ok {
			t.Fatalf("cell (%d,%d,%d) not indexed", c.X, c.Y, c.Z)
		}
		if p != p0 {
			t.Fatalf("cell (%d,%d,%d) indexed to a different record", c.X, c.Y, c.Z)
		}
	}
	if got := g.SlotIndexAt(Cell{X: 1, Y: 1, Z: 0}); got != 3 {
		t.Fatalf("slot index at (1,1,0): got %d want 3", got)
	}
	if got := g.SlotIndexAt(Cell{X: 2, Y: 2, Z: 0}); got != EmptySlot {
		t.Fatalf("slot index at empty cell: got %d want %d", got, EmptySlot)
	}
}

func TestPlaceOverlapMutatesNothing(t *testing.T) {
	g := New()
	if err := g.Place(Cell{X: 0, Y: 0, Z: 0}, FootprintSize{X: 2, Y: 2}, 1, 0); err != nil {
		t.Fatalf("first place: %v", err)
	}
	before := g.Len()

	err := g.Place(Cell{X: 1, Y: 1, Z: 0}, FootprintSize{X: 2, Y: 2}, 2, 1)
	var oe *OverlapError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OverlapError, got %v", err)
	}
	if g.Len() != before {
		t.Fatalf("failed place mutated the grid: %d -> %d cells", before, g.Len())
	}
	// No cell of the rejected footprint outside the collision may be written.
	if _, ok := g.PlacementAt(Cell{X: 2, Y: 2, Z: 0}); ok {
		t.Fatalf("rejected footprint wrote cell (2,2,0)")
	}
	if got := g.SlotIndexAt(Cell{X: 1, Y: 1, Z: 0}); got != 0 {
		t.Fatalf("existing placement disturbed: slot %d", got)
	}
}

func TestCanPlaceMatchesPlace(t *testing.T) {
	g := New()
	if err := g.Place(Cell{X: 3, Y: 3, Z: 0}, FootprintSize{X: 1, Y: 2}, 1, 0); err != nil {
		t.Fatalf("seed place: %v", err)
	}

	cases := []struct {
		origin Cell
		size   FootprintSize
	}{
		{Cell{X: 0, Y: 0, Z: 0}, FootprintSize{X: 2, Y: 2}},
		{Cell{X: 2, Y: 2, Z: 0}, FootprintSize{X: 2, Y: 2}},
		{Cell{X: 3, Y: 3, Z: 0}, FootprintSize{X: 1, Y: 1}},
		{Cell{X: -2, Y: -2, Z: 0}, FootprintSize{X: 3, Y: 3}},
		{Cell{X: 3, Y: 4, Z: 0}, FootprintSize{X: 1, Y: 1}},
	}
	for _, tc := range cases {
		can := g.CanPlace(tc.origin, tc.size)
		err := g.Place(tc.origin, tc.size, 9, 9)
		if can && err != nil {
			t.Fatalf("canPlace true but place failed at (%d,%d): %v", tc.origin.X, tc.origin.Y, err)
		}
		if !can && err == nil {
			t.Fatalf("canPlace false but place succeeded at (%d,%d)", tc.origin.X, tc.origin.Y)
		}
		if err == nil {
			if rmErr := g.Remove(tc.origin); rmErr != nil {
				t.Fatalf("cleanup remove: %v", rmErr)
			}
		}
	}
}

func TestRemoveRequiresExactOrigin(t *testing.T) {
	g := New()
	origin := Cell{X: 5, Y: 5, Z: 1}
	if err := g.Place(origin, FootprintSize{X: 2, Y: 2}, 1, 0); err != nil {
		t.Fatalf("place: %v", err)
	}

	// Any occupied cell other than the origin must not anchor removal.
	if err := g.Remove(Cell{X: 6, Y: 6, Z: 1}); !errors.Is(err, ErrNoPlacement) {
		t.Fatalf("remove by non-origin cell: got %v want ErrNoPlacement", err)
	}
	if g.Len() != 4 {
		t.Fatalf("failed remove mutated the grid")
	}

	if err := g.Remove(origin); err != nil {
		t.Fatalf("remove by origin: %v", err)
	}
	if g.Len() != 0 {
		t.Fatalf("remove left %d cells indexed", g.Len())
	}
	if err := g.Remove(origin); !errors.Is(err, ErrNoPlacement) {
		t.Fatalf("second remove: got %v want ErrNoPlacement", err)
	}
}

func TestPlaceRejectsDegenerateFootprints(t *testing.T) {
	g := New()
	for _, size := range []FootprintSize{{X: 0, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 0}, {X: -1, Y: 2}, {X: 2, Y: -3}} {
		if g.CanPlace(Cell{}, size) {
			t.Fatalf("canPlace accepted size %+v", size)
		}
		if err := g.Place(Cell{}, size, 1, 0); !errors.Is(err, ErrBadFootprint) {
			t.Fatalf("place size %+v: got %v want ErrBadFootprint", size, err)
		}
		if got := Footprint(Cell{}, size); len(got) != 0 {
			t.Fatalf("footprint size %+v enumerated %d cells", size, len(got))
		}
	}
	if g.Len() != 0 {
		t.Fatalf("rejected footprints mutated the grid")
	}
}

func TestFootprintRowMajor(t *testing.T) {
	fp := Footprint(Cell{X: 1, Y: 2, Z: 0}, FootprintSize{X: 3, Y: 2})
	want := []Cell{
		{1, 2, 0}, {2, 2, 0}, {3, 2, 0},
		{1, 3, 0}, {2, 3, 0}, {3, 3, 0},
	}
	if len(fp) != len(want) {
		t.Fatalf("footprint size: got %d want %d", len(fp), len(want))
	}
	for i := range want {
		if fp[i] != want[i] {
			t.Fatalf("footprint[%d]: got %+v want %+v", i, fp[i], want[i])
		}
	}
}
