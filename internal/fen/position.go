package fen

import (
	"fmt"
	"strconv"
	"strings"
)

// StartingPosition is the standard initial notation.
const StartingPosition = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Castling rights as they appear in the third field.
type Castling uint8

const (
	WhiteKingSide Castling = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide
)

func (c Castling) String() string {
	if c == 0 {
		return "-"
	}
	var b strings.Builder
	if c&WhiteKingSide != 0 {
		b.WriteByte('K')
	}
	if c&WhiteQueenSide != 0 {
		b.WriteByte('Q')
	}
	if c&BlackKingSide != 0 {
		b.WriteByte('k')
	}
	if c&BlackQueenSide != 0 {
		b.WriteByte('q')
	}
	return b.String()
}

// Position is a full notation: layout plus the auxiliary fields.
type Position struct {
	Grid      Grid
	Turn      Side
	Castling  Castling
	EnPassant string // target square such as "e3", empty when none
	HalfMove  int
	FullMove  int
}

// ParsePosition reads every field of notation. Missing auxiliary fields take the
// defaults "w - - 0 1"; present but invalid ones are malformed.
func ParsePosition(notation string) (Position, error) {
	grid, err := Decode(notation)
	if err != nil {
		return Position{}, err
	}
	pos := Position{Grid: grid, Turn: White, FullMove: 1}

	fields := strings.Fields(notation)
	if len(fields) > 6 {
		return Position{}, malformed(notation, -1, -1, "%d fields, want at most 6", len(fields))
	}
	if len(fields) > 1 {
		switch fields[1] {
		case "w":
			pos.Turn = White
		case "b":
			pos.Turn = Black
		default:
			return Position{}, malformed(notation, -1, -1, "side to move %q", fields[1])
		}
	}
	if len(fields) > 2 {
		c, err := parseCastling(fields[2])
		if err != nil {
			return Position{}, malformed(notation, -1, -1, "%v", err)
		}
		pos.Castling = c
	}
	if len(fields) > 3 && fields[3] != "-" {
		if !validSquare(fields[3]) {
			return Position{}, malformed(notation, -1, -1, "en passant target %q", fields[3])
		}
		pos.EnPassant = fields[3]
	}
	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return Position{}, malformed(notation, -1, -1, "half-move clock %q", fields[4])
		}
		pos.HalfMove = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return Position{}, malformed(notation, -1, -1, "full-move number %q", fields[5])
		}
		pos.FullMove = n
	}
	return pos, nil
}

// String renders all six fields.
func (p Position) String() string {
	turn := "w"
	if p.Turn == Black {
		turn = "b"
	}
	ep := p.EnPassant
	if ep == "" {
		ep = "-"
	}
	full := p.FullMove
	if full < 1 {
		full = 1
	}
	return fmt.Sprintf("%s %s %s %s %d %d", Encode(p.Grid), turn, p.Castling, ep, p.HalfMove, full)
}

func parseCastling(s string) (Castling, error) {
	if s == "-" {
		return 0, nil
	}
	var c Castling
	for i := 0; i < len(s); i++ {
		var bit Castling
		switch s[i] {
		case 'K':
			bit = WhiteKingSide
		case 'Q':
			bit = WhiteQueenSide
		case 'k':
			bit = BlackKingSide
		case 'q':
			bit = BlackQueenSide
		default:
			return 0, fmt.Errorf("castling rights %q", s)
		}
		if c&bit != 0 {
			return 0, fmt.Errorf("castling rights %q repeat %q", s, s[i])
		}
		c |= bit
	}
	return c, nil
}

func validSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
