package fen

import (
	"errors"
	"strings"
	"testing"
)

func rowString(g Grid, r int) string {
	var b strings.Builder
	for _, p := range g.Row(r) {
		if p == NoPiece {
			b.WriteByte('.')
			continue
		}
		b.WriteByte(byte(p))
	}
	return b.String()
}

func TestDecodeEmptyBoard(t *testing.T) {
	g, err := Decode("8/8/8/8/8/8/8/8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g.Rows() != 8 || g.Cols() != 8 {
		t.Fatalf("size = %dx%d, want 8x8", g.Rows(), g.Cols())
	}
	if n := g.Count(); n != 0 {
		t.Fatalf("expected 64 empty cells, got %d occupied", n)
	}
}

func TestDecodeStartingLayout(t *testing.T) {
	g, err := Decode("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rowString(g, 0); got != "rnbqkbnr" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := rowString(g, 7); got != "RNBQKBNR" {
		t.Fatalf("row 7 = %q", got)
	}
	for c := 0; c < 8; c++ {
		if g.At(0, c).Side() != Black || g.At(7, c).Side() != White {
			t.Fatalf("col %d: unexpected sides %v/%v", c, g.At(0, c).Side(), g.At(7, c).Side())
		}
	}
	if g.At(0, 4).Kind() != King || g.At(7, 3).Kind() != Queen {
		t.Fatalf("unexpected kinds on e8/d1")
	}
	if g.Count() != 32 {
		t.Fatalf("expected 32 pieces, got %d", g.Count())
	}
}

func TestDecodeKingsInCorners(t *testing.T) {
	g, err := Decode("7k/8/8/8/8/8/8/K7")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rowString(g, 0); got != ".......k" {
		t.Fatalf("row 0 = %q", got)
	}
	if got := rowString(g, 7); got != "K......." {
		t.Fatalf("row 7 = %q", got)
	}
}

func TestDecodeIgnoresAuxiliaryFields(t *testing.T) {
	a, err := Decode(StartingPosition)
	if err != nil {
		t.Fatalf("Decode full: %v", err)
	}
	b, err := Decode("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR")
	if err != nil {
		t.Fatalf("Decode layout: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("auxiliary fields changed the grid")
	}
	// anything after the first space is never scanned
	if _, err := Decode("8/8/8/8/8/8/8/8 ??? garbage"); err != nil {
		t.Fatalf("Decode with trailing garbage: %v", err)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"first row nine":   "9/8/8/8/8/8/8/8",
		"row of seven":     "8/8/8/7/8/8/8/8",
		"row of nine":      "8/8/8/8/8/8/8/ppppppppp",
		"digit overflow":   "8/8/8/8/8/8/8/p8",
		"seven groups":     "8/8/8/8/8/8/8",
		"nine groups":      "8/8/8/8/8/8/8/8/8",
		"unknown letter":   "8/8/8/8/8/8/8/7x",
		"zero run":         "8/8/8/8/8/8/8/08",
		"trailing slash":   "8/8/8/8/8/8/8/8/",
		"punctuation":      "8/8/8/8/8/8/8/7.",
		"double separator": "8/8/8//8/8/8/8",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			g, err := Decode(in)
			if !errors.Is(err, ErrMalformedNotation) {
				t.Fatalf("Decode(%q) err = %v, want ErrMalformedNotation", in, err)
			}
			if g.Rows() != 0 {
				t.Fatalf("partial grid returned for %q", in)
			}
			var nerr *NotationError
			if !errors.As(err, &nerr) {
				t.Fatalf("expected *NotationError, got %T", err)
			}
		})
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", " w - - 0 1"} {
		_, err := Decode(in)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("Decode(%q) err = %v, want ErrEmptyInput", in, err)
		}
		if !errors.Is(err, ErrMalformedNotation) {
			t.Fatalf("ErrEmptyInput must also match ErrMalformedNotation")
		}
	}
}

func TestDecodeCellMatchesExpansion(t *testing.T) {
	in := "r1bqk2r/pp2bppp/2n1pn2/3p4/2PP4/2N1PN2/PP3PPP/R2QKB1R w KQkq - 0 7"
	g, err := Decode(in)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	groups := strings.Split(Layout(in), "/")
	for r, group := range groups {
		var expanded []byte
		for i := 0; i < len(group); i++ {
			ch := group[i]
			if ch >= '1' && ch <= '8' {
				expanded = append(expanded, strings.Repeat(".", int(ch-'0'))...)
				continue
			}
			expanded = append(expanded, ch)
		}
		if got := rowString(g, r); got != string(expanded) {
			t.Fatalf("row %d = %q, want %q", r, got, expanded)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	layouts := []string{
		"8/8/8/8/8/8/8/8",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		"7k/8/8/8/8/8/8/K7",
		"r1bqk2r/pp2bppp/2n1pn2/3p4/2PP4/2N1PN2/PP3PPP/R2QKB1R",
	}
	for _, in := range layouts {
		g, err := Decode(in)
		if err != nil {
			t.Fatalf("Decode(%q): %v", in, err)
		}
		out := Encode(g)
		if out != in {
			t.Fatalf("Encode = %q, want %q", out, in)
		}
		again, err := Decode(out)
		if err != nil {
			t.Fatalf("Decode(Encode): %v", err)
		}
		if !again.Equal(g) {
			t.Fatalf("round trip changed grid for %q", in)
		}
	}
}

func TestEncodeBuiltGrid(t *testing.T) {
	g := EmptyGrid(8, 8).With(0, 7, NewPiece(Black, King)).With(7, 0, NewPiece(White, King))
	if got := Encode(g); got != "7k/8/8/8/8/8/8/K7" {
		t.Fatalf("Encode = %q", got)
	}
}

func TestDecodeSizeWideBoard(t *testing.T) {
	g, err := DecodeSize("r8r/10/10/10/10/10/10/10/10/R8R", 10, 10)
	if err != nil {
		t.Fatalf("DecodeSize: %v", err)
	}
	if g.Rows() != 10 || g.Cols() != 10 {
		t.Fatalf("size = %dx%d", g.Rows(), g.Cols())
	}
	if g.At(0, 9) != Piece('r') || g.At(9, 0) != Piece('R') {
		t.Fatalf("corner pieces missing")
	}
	if got := Encode(g); got != "r8r/10/10/10/10/10/10/10/10/R8R" {
		t.Fatalf("Encode = %q", got)
	}
	if _, err := DecodeSize("11/10/10/10/10/10/10/10/10/10", 10, 10); !errors.Is(err, ErrMalformedNotation) {
		t.Fatalf("expected malformed for wide run, got %v", err)
	}
	long := "r9223372036854775808rrrrrrrrr/10/10/10/10/10/10/10/10/10"
	if _, err := DecodeSize(long, 10, 10); !errors.Is(err, ErrMalformedNotation) {
		t.Fatalf("expected malformed for overlong digit run, got %v", err)
	}
	for _, size := range [][2]int{{1 << 30, 8}, {8, 1 << 30}, {MaxDimension + 1, 8}, {0, 8}} {
		if _, err := DecodeSize("8", size[0], size[1]); !errors.Is(err, ErrMalformedNotation) {
			t.Fatalf("DecodeSize size %v: err = %v", size, err)
		}
	}
}

func TestParsePosition(t *testing.T) {
	pos, err := ParsePosition("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if pos.Turn != White || pos.EnPassant != "e6" || pos.FullMove != 2 || pos.HalfMove != 0 {
		t.Fatalf("unexpected fields: %+v", pos)
	}
	if pos.Castling != WhiteKingSide|WhiteQueenSide|BlackKingSide|BlackQueenSide {
		t.Fatalf("castling = %v", pos.Castling)
	}
	if got := pos.String(); got != "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2" {
		t.Fatalf("String = %q", got)
	}
}

func TestParsePositionDefaults(t *testing.T) {
	pos, err := ParsePosition("7k/8/8/8/8/8/8/K7")
	if err != nil {
		t.Fatalf("ParsePosition: %v", err)
	}
	if got := pos.String(); got != "7k/8/8/8/8/8/8/K7 w - - 0 1" {
		t.Fatalf("String = %q", got)
	}
}

func TestParsePositionBadFields(t *testing.T) {
	for _, in := range []string{
		"8/8/8/8/8/8/8/8 x",
		"8/8/8/8/8/8/8/8 w KK",
		"8/8/8/8/8/8/8/8 w - z9",
		"8/8/8/8/8/8/8/8 w - - -1",
		"8/8/8/8/8/8/8/8 w - - 0 0",
		"8/8/8/8/8/8/8/8 w - - 0 1 extra",
	} {
		if _, err := ParsePosition(in); !errors.Is(err, ErrMalformedNotation) {
			t.Fatalf("ParsePosition(%q) err = %v", in, err)
		}
	}
}

func TestPieceAccessors(t *testing.T) {
	p, ok := ParsePiece('N')
	if !ok || p.Side() != White || p.Kind() != Knight || p.String() != "N" {
		t.Fatalf("unexpected piece %v", p)
	}
	if _, ok := ParsePiece('x'); ok {
		t.Fatalf("x must not be a piece")
	}
	if NewPiece(Black, Queen) != Piece('q') {
		t.Fatalf("NewPiece(Black, Queen) = %q", NewPiece(Black, Queen))
	}
	if NoPiece.Side() != NoSide || NoPiece.Kind() != NoKind || NoPiece.String() != "" {
		t.Fatalf("empty piece accessors")
	}
}

func TestNewGridRejectsInvalidPieces(t *testing.T) {
	for _, bad := range []Piece{'x', '1', '/', 0xc3} {
		rows := [][]Piece{{bad, NoPiece}, {NoPiece, 'K'}}
		if _, err := NewGrid(rows); !errors.Is(err, ErrMalformedNotation) {
			t.Fatalf("NewGrid with %q: err = %v", byte(bad), err)
		}
	}
	if _, err := NewGrid([][]Piece{{'K', NoPiece}, {'k'}}); !errors.Is(err, ErrMalformedNotation) {
		t.Fatalf("ragged rows: err = %v", err)
	}

	g, err := NewGrid([][]Piece{{'K', NoPiece}, {NoPiece, 'k'}})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if same := g.With(0, 1, Piece('x')); !same.Equal(g) {
		t.Fatalf("With accepted an invalid piece")
	}
	back, err := DecodeSize(Encode(g), 2, 2)
	if err != nil || !back.Equal(g) {
		t.Fatalf("round trip: %q %v", Encode(g), err)
	}
}
