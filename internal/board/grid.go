package board

import (
	"errors"
	"fmt"

	"github.com/xtding233/tile-merge/internal/tile"
)

var ErrOutOfBounds = errors.New("coordinate out of bounds")

// MaxSize bounds the side length of a grid.
const MaxSize = 64

// Point addresses a cell; X is the column, Y the row.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Neighbors4 returns the orthogonal neighbours of p, unclipped.
func (p Point) Neighbors4() [4]Point {
	return [4]Point{
		{p.X + 1, p.Y},
		{p.X - 1, p.Y},
		{p.X, p.Y + 1},
		{p.X, p.Y - 1},
	}
}

// Grid is a fixed N×N store of optional tiles. It holds no rules.
type Grid struct {
	size     int
	cells    []tile.Tile
	occupied []bool
}

// New allocates an empty size×size grid. It panics unless 1 <= size <= MaxSize;
// callers validate sizes that come from outside.
func New(size int) *Grid {
	if size < 1 || size > MaxSize {
		panic(fmt.Sprintf("board: size %d outside [1,%d]", size, MaxSize))
	}
	return &Grid{
		size:     size,
		cells:    make([]tile.Tile, size*size),
		occupied: make([]bool, size*size),
	}
}

func (g *Grid) Size() int { return g.size }

func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.size && p.Y >= 0 && p.Y < g.size
}

func (g *Grid) index(p Point) (int, error) {
	if !g.InBounds(p) {
		return 0, fmt.Errorf("%w: %v on %dx%d grid", ErrOutOfBounds, p, g.size, g.size)
	}
	return p.Y*g.size + p.X, nil
}

func (g *Grid) IsEmpty(p Point) (bool, error) {
	i, err := g.index(p)
	if err != nil {
		return false, err
	}
	return !g.occupied[i], nil
}

// Get returns the tile at p; ok is false for an empty cell.
func (g *Grid) Get(p Point) (t tile.Tile, ok bool, err error) {
	i, err := g.index(p)
	if err != nil {
		return tile.Tile{}, false, err
	}
	if !g.occupied[i] {
		return tile.Tile{}, false, nil
	}
	return g.cells[i], true, nil
}

func (g *Grid) Set(p Point, t tile.Tile) error {
	i, err := g.index(p)
	if err != nil {
		return err
	}
	g.cells[i] = t
	g.occupied[i] = true
	return nil
}

// Clear empties p.
func (g *Grid) Clear(p Point) error {
	i, err := g.index(p)
	if err != nil {
		return err
	}
	g.cells[i] = tile.Tile{}
	g.occupied[i] = false
	return nil
}

// EmptyCells lists empty cells in row-major order.
func (g *Grid) EmptyCells() []Point {
	out := make([]Point, 0, len(g.cells))
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			if !g.occupied[y*g.size+x] {
				out = append(out, Point{x, y})
			}
		}
	}
	return out
}

func (g *Grid) Full() bool {
	for _, o := range g.occupied {
		if !o {
			return false
		}
	}
	return true
}

// Count returns the number of occupied cells.
func (g *Grid) Count() int {
	n := 0
	for _, o := range g.occupied {
		if o {
			n++
		}
	}
	return n
}

func (g *Grid) Clone() *Grid {
	return &Grid{
		size:     g.size,
		cells:    append([]tile.Tile(nil), g.cells...),
		occupied: append([]bool(nil), g.occupied...),
	}
}

// Equal compares size, occupancy and tiles cell by cell.
func (g *Grid) Equal(o *Grid) bool {
	if g.size != o.size {
		return false
	}
	for i := range g.cells {
		if g.occupied[i] != o.occupied[i] {
			return false
		}
		if g.occupied[i] && g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Rows renders the grid as rows of optional tiles, for presentation layers.
func (g *Grid) Rows() [][]*tile.Tile {
	rows := make([][]*tile.Tile, g.size)
	for y := 0; y < g.size; y++ {
		rows[y] = make([]*tile.Tile, g.size)
		for x := 0; x < g.size; x++ {
			i := y*g.size + x
			if g.occupied[i] {
				t := g.cells[i]
				rows[y][x] = &t
			}
		}
	}
	return rows
}
