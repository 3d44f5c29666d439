package zoomify

import (
	"errors"
	"testing"
)

func TestNewLevels(t *testing.T) {
	// Geometry from a real ImageProperties.xml:
	// WIDTH="2679" HEIGHT="4000" TILESIZE="256"
	p, err := New(2679, 4000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := []Grid{{1, 1}, {2, 2}, {3, 4}, {6, 8}, {11, 16}}
	if p.MaxZoom() != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), p.MaxZoom())
	}
	for i, g := range want {
		if p.Grid(i) != g {
			t.Errorf("level %d: expected %+v, got %+v", i, g, p.Grid(i))
		}
	}

	finest := p.Grid(p.MaxZoom() - 1)
	if finest.Area() != 176 {
		t.Errorf("expected 176 tiles at finest level, got %d", finest.Area())
	}
}

func TestNewCoarsestIsSingleTile(t *testing.T) {
	tests := []struct {
		width, height, tileSize int
	}{
		{2679, 4000, 256},
		{100, 100, 10},
		{1, 1, 256},
		{511, 513, 256},
		{10000, 3, 256},
	}

	for _, tt := range tests {
		p, err := New(tt.width, tt.height, tt.tileSize)
		if err != nil {
			t.Fatalf("New(%d, %d, %d): %v", tt.width, tt.height, tt.tileSize, err)
		}
		if p.Grid(0) != (Grid{1, 1}) {
			t.Errorf("New(%d, %d, %d): level 0 = %+v, want {1 1}",
				tt.width, tt.height, tt.tileSize, p.Grid(0))
		}
	}
}

func TestNewSingleLevel(t *testing.T) {
	// Image smaller than one tile: the list has exactly one element.
	p, err := New(200, 100, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.MaxZoom() != 1 {
		t.Errorf("expected 1 level, got %d", p.MaxZoom())
	}
}

func TestNewBadGeometry(t *testing.T) {
	for _, dims := range [][3]int{{0, 100, 256}, {100, 0, 256}, {100, 100, 0}, {-1, 100, 256}} {
		if _, err := New(dims[0], dims[1], dims[2]); !errors.Is(err, ErrBadGeometry) {
			t.Errorf("New(%v): expected ErrBadGeometry, got %v", dims, err)
		}
	}
}

func TestDimensions(t *testing.T) {
	p, err := New(2679, 4000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		level, width, height int
	}{
		{4, 2679, 4000},
		{3, 1339, 2000},
		{2, 669, 1000},
		{1, 334, 500},
		{0, 167, 250},
	}
	for _, tt := range tests {
		w, h := p.Dimensions(tt.level)
		if w != tt.width || h != tt.height {
			t.Errorf("Dimensions(%d) = (%d, %d), want (%d, %d)",
				tt.level, w, h, tt.width, tt.height)
		}
	}
}

func TestResolveLevel(t *testing.T) {
	p, err := New(2679, 4000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		requested int
		level     int
		fellBack  bool
	}{
		{-1, 4, false}, // unset selects the finest level
		{0, 0, false},
		{2, 2, false},
		{4, 4, false},
		{5, 4, true},
		{99, 4, true},
	}
	for _, tt := range tests {
		level, fellBack := p.ResolveLevel(tt.requested)
		if level != tt.level || fellBack != tt.fellBack {
			t.Errorf("ResolveLevel(%d) = (%d, %v), want (%d, %v)",
				tt.requested, level, fellBack, tt.level, tt.fellBack)
		}
	}

	// Resolving an already-valid level returns it unchanged.
	level, _ := p.ResolveLevel(3)
	again, fellBack := p.ResolveLevel(level)
	if again != level || fellBack {
		t.Errorf("ResolveLevel not idempotent: %d -> %d (fellBack=%v)", level, again, fellBack)
	}
}

func TestGlobalIndexInjective(t *testing.T) {
	p, err := New(2679, 4000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	total := 0
	for level := 0; level < p.MaxZoom(); level++ {
		total += p.Grid(level).Area()
	}

	seen := make(map[int]bool)
	prev := -1
	for level := 0; level < p.MaxZoom(); level++ {
		g := p.Grid(level)
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				idx := p.GlobalIndex(level, col, row)
				if seen[idx] {
					t.Fatalf("GlobalIndex(%d, %d, %d) = %d already assigned", level, col, row, idx)
				}
				seen[idx] = true
				if idx <= prev {
					t.Fatalf("GlobalIndex not increasing in scan order at (%d, %d, %d): %d after %d",
						level, col, row, idx, prev)
				}
				prev = idx
			}
		}
	}

	if len(seen) != total {
		t.Errorf("expected %d distinct indices, got %d", total, len(seen))
	}
	if prev != total-1 {
		t.Errorf("expected max index %d, got %d", total-1, prev)
	}
}

func TestTileGroup(t *testing.T) {
	// Small tile size so several groups exist.
	p, err := New(100, 100, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Levels: (1,1) (2,2) (3,3) (5,5) (10,10); finest level starts at index 39.
	tests := []struct {
		level, col, row int
		index, group    int
	}{
		{0, 0, 0, 0, 0},
		{3, 0, 0, 14, 1},
		{4, 0, 0, 39, 3},
		{4, 9, 9, 138, 13},
	}
	for _, tt := range tests {
		if idx := p.GlobalIndex(tt.level, tt.col, tt.row); idx != tt.index {
			t.Errorf("GlobalIndex(%d, %d, %d) = %d, want %d", tt.level, tt.col, tt.row, idx, tt.index)
		}
		if g := p.TileGroup(tt.level, tt.col, tt.row); g != tt.group {
			t.Errorf("TileGroup(%d, %d, %d) = %d, want %d", tt.level, tt.col, tt.row, g, tt.group)
		}
	}

	// The bucket capacity is the tile edge length. Easy to "fix" wrongly
	// during a refactor, so pin the exact formula.
	prevGroup := 0
	for level := 0; level < p.MaxZoom(); level++ {
		g := p.Grid(level)
		for row := 0; row < g.Rows; row++ {
			for col := 0; col < g.Cols; col++ {
				idx := p.GlobalIndex(level, col, row)
				group := p.TileGroup(level, col, row)
				if group != idx/p.TileSize {
					t.Fatalf("TileGroup(%d, %d, %d) = %d, want globalIndex/tileSize = %d",
						level, col, row, group, idx/p.TileSize)
				}
				if group < prevGroup {
					t.Fatalf("TileGroup decreased at index %d: %d after %d", idx, group, prevGroup)
				}
				prevGroup = group
			}
		}
	}
}

func TestTileURL(t *testing.T) {
	p, err := New(2679, 4000, 256)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := p.TileURL("http://example.com/images/img01", 4, 3, 7)
	want := "http://example.com/images/img01/TileGroup0/4-3-7.jpg"
	if got != want {
		t.Errorf("TileURL = %q, want %q", got, want)
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{nil, ""},
		{[]string{"http://a"}, "http://a"},
		{[]string{"http://a", "b", "c"}, "http://a/b/c"},
		{[]string{"http://a", "/b"}, "http://a/b"},
		{[]string{"http://a/", "b"}, "http://a//b"},
		{[]string{"a\\b", "c"}, "a/b/c"},
	}
	for _, tt := range tests {
		if got := JoinURL(tt.parts...); got != tt.want {
			t.Errorf("JoinURL(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}
