package board

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/fen"
)

var ErrUnsupportedSize = errors.New("board: only 8x8 grids can be converted")

var pieceToChess = map[fen.Piece]nchess.Piece{
	'K': nchess.WhiteKing,
	'Q': nchess.WhiteQueen,
	'R': nchess.WhiteRook,
	'B': nchess.WhiteBishop,
	'N': nchess.WhiteKnight,
	'P': nchess.WhitePawn,
	'k': nchess.BlackKing,
	'q': nchess.BlackQueen,
	'r': nchess.BlackRook,
	'b': nchess.BlackBishop,
	'n': nchess.BlackKnight,
	'p': nchess.BlackPawn,
}

// ToChessBoard converts a standard grid. Row 0 maps to rank 8.
func ToChessBoard(g fen.Grid) (*nchess.Board, error) {
	if g.Rows() != fen.StandardRows || g.Cols() != fen.StandardCols {
		return nil, fmt.Errorf("%w: got %dx%d", ErrUnsupportedSize, g.Rows(), g.Cols())
	}
	squares := make(map[nchess.Square]nchess.Piece, 32)
	for r := 0; r < fen.StandardRows; r++ {
		for c := 0; c < fen.StandardCols; c++ {
			p := g.At(r, c)
			if p == fen.NoPiece {
				continue
			}
			cp, ok := pieceToChess[p]
			if !ok {
				return nil, fmt.Errorf("board: unknown piece %q", byte(p))
			}
			squares[squareAt(r, c)] = cp
		}
	}
	return nchess.NewBoard(squares), nil
}

func squareAt(row, col int) nchess.Square {
	return nchess.NewSquare(nchess.File(col), nchess.Rank(fen.StandardRows-1-row))
}

// MoveSquares extracts the origin and destination squares of a UCI move record
// such as "e2e4" or "e7e8q". Only coordinates are read; legality is not checked.
func MoveSquares(move string) (from, to nchess.Square, ok bool) {
	m := strings.ToLower(strings.TrimSpace(move))
	if len(m) < 4 {
		return nchess.NoSquare, nchess.NoSquare, false
	}
	from, ok1 := parseSquare(m[0:2])
	to, ok2 := parseSquare(m[2:4])
	if !ok1 || !ok2 {
		return nchess.NoSquare, nchess.NoSquare, false
	}
	return from, to, true
}

func parseSquare(s string) (nchess.Square, bool) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return nchess.NoSquare, false
	}
	return nchess.NewSquare(nchess.File(s[0]-'a'), nchess.Rank(s[1]-'1')), true
}
