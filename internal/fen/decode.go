// Package fen decodes and encodes Forsyth-Edwards position notation.
//
// Only the layout field is needed to build a Grid; Decode ignores everything after
// the first space. ParsePosition additionally reads the auxiliary fields.
package fen

import "strings"

// Decode turns the layout field of notation into a standard 8×8 Grid.
func Decode(notation string) (Grid, error) {
	return decode(notation, StandardRows, StandardCols, false)
}

// MaxDimension bounds the rows and cols accepted by DecodeSize.
const MaxDimension = 256

// DecodeSize decodes a layout that must describe rows×cols cells. Empty runs may use
// more than one digit so that boards wider than nine files can be described.
func DecodeSize(notation string, rows, cols int) (Grid, error) {
	if rows <= 0 || cols <= 0 || rows > MaxDimension || cols > MaxDimension {
		return Grid{}, malformed(notation, -1, -1, "invalid board size %dx%d", rows, cols)
	}
	return decode(notation, rows, cols, true)
}

// Layout returns the layout field of notation: everything before the first space.
func Layout(notation string) string {
	if i := strings.IndexByte(notation, ' '); i >= 0 {
		return notation[:i]
	}
	return notation
}

func decode(notation string, rows, cols int, multiDigit bool) (Grid, error) {
	layout := Layout(notation)
	if layout == "" {
		return Grid{}, ErrEmptyInput
	}

	cells := make([][]Piece, 0, rows)
	row := make([]Piece, 0, cols)
	closeRow := func() error {
		r := len(cells)
		if r >= rows {
			return malformed(notation, r, -1, "more than %d rank groups", rows)
		}
		if len(row) != cols {
			return malformed(notation, r, -1, "rank group expands to %d cells, want %d", len(row), cols)
		}
		cells = append(cells, row)
		row = make([]Piece, 0, cols)
		return nil
	}

	for i := 0; i < len(layout); i++ {
		ch := layout[i]
		r := len(cells)
		switch {
		case ch == '/':
			if err := closeRow(); err != nil {
				return Grid{}, err
			}
		case ch >= '0' && ch <= '9':
			n := int(ch - '0')
			if multiDigit {
				for i+1 < len(layout) && layout[i+1] >= '0' && layout[i+1] <= '9' {
					i++
					n = n*10 + int(layout[i]-'0')
					// stop before n can overflow
					if len(row)+n > cols {
						return Grid{}, malformed(notation, r, -1, "rank group expands to more than %d cells", cols)
					}
				}
			} else if n > StandardCols {
				return Grid{}, malformed(notation, r, len(row), "empty run %d exceeds %d", n, StandardCols)
			}
			if n == 0 {
				return Grid{}, malformed(notation, r, len(row), "zero-length empty run")
			}
			if len(row)+n > cols {
				return Grid{}, malformed(notation, r, -1, "rank group expands to more than %d cells", cols)
			}
			for k := 0; k < n; k++ {
				row = append(row, NoPiece)
			}
		default:
			p, ok := ParsePiece(ch)
			if !ok {
				return Grid{}, malformed(notation, r, len(row), "unrecognised character %q", ch)
			}
			if len(row) >= cols {
				return Grid{}, malformed(notation, r, -1, "rank group expands to more than %d cells", cols)
			}
			row = append(row, p)
		}
	}
	if err := closeRow(); err != nil {
		return Grid{}, err
	}
	if len(cells) != rows {
		return Grid{}, malformed(notation, -1, -1, "%d rank groups, want %d", len(cells), rows)
	}
	return Grid{cells: cells}, nil
}
