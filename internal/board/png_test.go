package board

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/fen"
)

func TestToChessBoardMatchesLayout(t *testing.T) {
	layouts := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		"7k/8/8/8/8/8/8/K7",
		"r1bqk2r/pp2bppp/2n1pn2/3p4/2PP4/2N1PN2/PP3PPP/R2QKB1R",
	}
	for _, layout := range layouts {
		g := mustDecode(t, layout)
		b, err := ToChessBoard(g)
		if err != nil {
			t.Fatalf("ToChessBoard(%q): %v", layout, err)
		}
		if got := b.String(); got != layout {
			t.Fatalf("chess board layout = %q, want %q", got, layout)
		}
	}
}

func TestToChessBoardSquares(t *testing.T) {
	b, err := ToChessBoard(mustDecode(t, "7k/8/8/8/8/8/8/K7"))
	if err != nil {
		t.Fatalf("ToChessBoard: %v", err)
	}
	if p := b.Piece(nchess.H8); p != nchess.BlackKing {
		t.Fatalf("h8 = %v", p)
	}
	if p := b.Piece(nchess.A1); p != nchess.WhiteKing {
		t.Fatalf("a1 = %v", p)
	}
}

func TestToChessBoardRejectsOtherSizes(t *testing.T) {
	if _, err := ToChessBoard(fen.EmptyGrid(10, 10)); !errors.Is(err, ErrUnsupportedSize) {
		t.Fatalf("expected ErrUnsupportedSize, got %v", err)
	}
}

func TestMoveSquares(t *testing.T) {
	from, to, ok := MoveSquares("e7e8q")
	if !ok || from != nchess.E7 || to != nchess.E8 {
		t.Fatalf("MoveSquares(e7e8q) = %v %v %v", from, to, ok)
	}
	for _, bad := range []string{"", "e2", "z2e4", "e2e9"} {
		if _, _, ok := MoveSquares(bad); ok {
			t.Fatalf("MoveSquares(%q) should fail", bad)
		}
	}
	if HighlightMove("nonsense") != nil {
		t.Fatalf("expected nil highlight")
	}
}

func TestRenderPNG(t *testing.T) {
	r := NewPNGRenderer(32)
	g := mustDecode(t, fen.StartingPosition)
	raw, err := r.RenderPNG(context.Background(), g, PNGOptions{Header: "white vs black", Highlight: HighlightMove("e2e4")})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 32*8+48 || b.Dy() != 32*8+48+28 {
		t.Fatalf("unexpected size %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderPNGFlipDiffers(t *testing.T) {
	r := NewPNGRenderer(32)
	g := mustDecode(t, fen.StartingPosition)
	white, err := r.RenderPNG(context.Background(), g, PNGOptions{})
	if err != nil {
		t.Fatalf("RenderPNG white: %v", err)
	}
	black, err := r.RenderPNG(context.Background(), g, PNGOptions{Flip: true})
	if err != nil {
		t.Fatalf("RenderPNG black: %v", err)
	}
	if bytes.Equal(white, black) {
		t.Fatalf("expected different images for flipped viewpoints")
	}
}

func TestRenderPNGCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewPNGRenderer(0).RenderPNG(ctx, mustDecode(t, fen.StartingPosition), PNGOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
