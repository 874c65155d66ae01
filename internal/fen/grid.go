package fen

import "fmt"

// Standard board dimensions.
const (
	StandardRows = 8
	StandardCols = 8
)

// Grid is a decoded board layout. Row 0 is the first rank group of the notation
// (the highest rank), column 0 the first file. A Grid is never modified after it is built.
type Grid struct {
	cells [][]Piece
}

// NewGrid copies rows into a Grid. Every row must have the same length and every cell
// must be NoPiece or a piece letter; anything else is ErrMalformedNotation.
func NewGrid(rows [][]Piece) (Grid, error) {
	if len(rows) == 0 {
		return Grid{}, nil
	}
	width := len(rows[0])
	cells := make([][]Piece, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return Grid{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedNotation, i+1, len(row), width)
		}
		for j, p := range row {
			if !p.valid() {
				return Grid{}, fmt.Errorf("%w: invalid piece %q at row %d, col %d", ErrMalformedNotation, byte(p), i+1, j+1)
			}
		}
		cells[i] = append([]Piece(nil), row...)
	}
	return Grid{cells: cells}, nil
}

// EmptyGrid returns a rows×cols grid with no pieces.
func EmptyGrid(rows, cols int) Grid {
	if rows <= 0 || cols <= 0 {
		return Grid{}
	}
	cells := make([][]Piece, rows)
	for i := range cells {
		cells[i] = make([]Piece, cols)
	}
	return Grid{cells: cells}
}

func (g Grid) Rows() int { return len(g.cells) }

func (g Grid) Cols() int {
	if len(g.cells) == 0 {
		return 0
	}
	return len(g.cells[0])
}

// At returns the piece at (row, col); out-of-range coordinates read as empty.
func (g Grid) At(row, col int) Piece {
	if row < 0 || row >= len(g.cells) || col < 0 || col >= len(g.cells[row]) {
		return NoPiece
	}
	return g.cells[row][col]
}

// Row returns a copy of one row.
func (g Grid) Row(row int) []Piece {
	if row < 0 || row >= len(g.cells) {
		return nil
	}
	return append([]Piece(nil), g.cells[row]...)
}

func (g Grid) Equal(other Grid) bool {
	if g.Rows() != other.Rows() || g.Cols() != other.Cols() {
		return false
	}
	for r := range g.cells {
		for c := range g.cells[r] {
			if g.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// Count returns the number of occupied cells.
func (g Grid) Count() int {
	n := 0
	for _, row := range g.cells {
		for _, p := range row {
			if p != NoPiece {
				n++
			}
		}
	}
	return n
}

// With returns a copy of g with (row, col) set to p. An invalid piece leaves the copy
// unchanged.
func (g Grid) With(row, col int, p Piece) Grid {
	out := Grid{cells: make([][]Piece, len(g.cells))}
	for i, r := range g.cells {
		out.cells[i] = append([]Piece(nil), r...)
	}
	if p.valid() && row >= 0 && row < len(out.cells) && col >= 0 && col < len(out.cells[row]) {
		out.cells[row][col] = p
	}
	return out
}
