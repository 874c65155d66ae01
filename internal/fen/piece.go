package fen

import "strings"

// Side identifies which player owns a piece.
type Side uint8

const (
	NoSide Side = iota
	White
	Black
)

func (s Side) String() string {
	switch s {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return ""
	}
}

// Kind is the piece identity independent of side.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const kindLetters = " pnbrqk"

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return ""
	}
}

// Piece is a single board cell. The zero value is an empty cell; otherwise it holds
// the notation letter, upper case for White and lower case for Black.
type Piece byte

const NoPiece Piece = 0

// ParsePiece maps a notation letter to a Piece. ok is false for anything that is not
// one of pnbrqk in either case.
func ParsePiece(ch byte) (Piece, bool) {
	lower := ch | 0x20
	if lower < 'a' || lower > 'z' {
		return NoPiece, false
	}
	if strings.IndexByte(kindLetters[1:], lower) < 0 {
		return NoPiece, false
	}
	return Piece(ch), true
}

// NewPiece builds a piece from side and kind.
func NewPiece(side Side, kind Kind) Piece {
	if kind == NoKind || int(kind) >= len(kindLetters) {
		return NoPiece
	}
	ch := kindLetters[kind]
	switch side {
	case White:
		return Piece(ch - 0x20)
	case Black:
		return Piece(ch)
	default:
		return NoPiece
	}
}

func (p Piece) IsEmpty() bool { return p == NoPiece }

func (p Piece) valid() bool {
	if p == NoPiece {
		return true
	}
	_, ok := ParsePiece(byte(p))
	return ok
}

func (p Piece) Side() Side {
	switch {
	case p == NoPiece:
		return NoSide
	case p >= 'A' && p <= 'Z':
		return White
	default:
		return Black
	}
}

func (p Piece) Kind() Kind {
	if p == NoPiece {
		return NoKind
	}
	idx := strings.IndexByte(kindLetters, byte(p)|0x20)
	if idx <= 0 {
		return NoKind
	}
	return Kind(idx)
}

// String returns the notation letter, or an empty string for an empty cell.
func (p Piece) String() string {
	if p == NoPiece {
		return ""
	}
	return string(rune(p))
}
