package board

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/fen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type MoveHighlight struct {
	From nchess.Square
	To   nchess.Square
}

// HighlightMove builds a highlight from a UCI move record; nil when it cannot be read.
func HighlightMove(move string) *MoveHighlight {
	from, to, ok := MoveSquares(move)
	if !ok {
		return nil
	}
	return &MoveHighlight{From: from, To: to}
}

type PNGOptions struct {
	Highlight *MoveHighlight
	Header    string
	// Flip draws the board from Black's side (rank 1 at the top).
	Flip bool
}

type PNGRenderer interface {
	RenderPNG(ctx context.Context, g fen.Grid, opts PNGOptions) ([]byte, error)
}

type tokenRenderer struct {
	squareSize int
}

// NewPNGRenderer returns a renderer drawing squareSize-pixel squares; values below 24
// fall back to the default of 56.
func NewPNGRenderer(squareSize int) PNGRenderer {
	if squareSize < 24 {
		squareSize = 56
	}
	return &tokenRenderer{squareSize: squareSize}
}

var (
	lightSquare         = color.RGBA{233, 207, 163, 255}
	darkSquare          = color.RGBA{187, 136, 96, 255}
	backgroundColor     = color.RGBA{28, 31, 46, 255}
	moveHighlightFill   = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	coordinateTextColor = color.NRGBA{R: 8, G: 214, B: 120, A: 255}
	headerTextColor     = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
)

func (r *tokenRenderer) RenderPNG(ctx context.Context, g fen.Grid, opts PNGOptions) ([]byte, error) {
	board, err := ToChessBoard(g)
	if err != nil {
		return nil, err
	}

	squareSize := r.squareSize
	const (
		boardSquares = 8
		sideMargin   = 24
		bottomMargin = 24
		headerHeight = 28
	)
	topMargin := sideMargin
	if opts.Header != "" {
		topMargin += headerHeight
	}
	boardSize := squareSize * boardSquares
	totalWidth := boardSize + sideMargin*2
	totalHeight := boardSize + topMargin + bottomMargin
	origin := image.Point{X: sideMargin, Y: topMargin}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	img := image.NewRGBA(image.Rect(0, 0, totalWidth, totalHeight))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	drawSquares(img, squareSize, origin, opts.Flip)
	if opts.Highlight != nil {
		drawSquareOverlay(img, opts.Highlight.From, squareSize, origin, opts.Flip, moveHighlightFill)
		drawSquareOverlay(img, opts.Highlight.To, squareSize, origin, opts.Flip, moveHighlightFill)
	}
	if err := drawPieces(img, board, squareSize, origin, opts.Flip); err != nil {
		return nil, err
	}
	drawCoordinates(img, squareSize, origin, sideMargin, opts.Flip)
	if opts.Header != "" {
		drawHeader(img, opts.Header, sideMargin, sideMargin+headerHeight/2)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func allSquares() []nchess.Square {
	out := make([]nchess.Square, 0, 64)
	for rank := nchess.Rank1; rank <= nchess.Rank8; rank++ {
		for file := nchess.FileA; file <= nchess.FileH; file++ {
			out = append(out, nchess.NewSquare(file, rank))
		}
	}
	return out
}

func drawSquares(dst imagedraw.Image, squareSize int, origin image.Point, flip bool) {
	for _, sq := range allSquares() {
		rect := squareRect(sq, squareSize, origin, flip)
		imagedraw.Draw(dst, rect, image.NewUniform(squareColor(sq)), image.Point{}, imagedraw.Src)
	}
}

func drawPieces(dst imagedraw.Image, board *nchess.Board, squareSize int, origin image.Point, flip bool) error {
	for sq, piece := range board.SquareMap() {
		if piece == nchess.NoPiece {
			continue
		}
		img, err := renderPieceImage(piece, squareSize)
		if err != nil {
			return err
		}
		rect := squareRect(sq, squareSize, origin, flip)
		imagedraw.Draw(dst, rect, img, image.Point{}, imagedraw.Over)
	}
	return nil
}

func drawSquareOverlay(img *image.RGBA, sq nchess.Square, squareSize int, origin image.Point, flip bool, clr color.Color) {
	if sq == nchess.NoSquare {
		return
	}
	rect := squareRect(sq, squareSize, origin, flip)
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawCoordinates(dst imagedraw.Image, squareSize int, origin image.Point, margin int, flip bool) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: dst, Face: face, Src: image.NewUniform(coordinateTextColor)}
	ascent := face.Metrics().Ascent.Ceil()
	boardEndY := origin.Y + 8*squareSize

	for i := 0; i < 8; i++ {
		rank := nchess.Rank(7 - i)
		file := nchess.File(i)
		if flip {
			rank = nchess.Rank(i)
			file = nchess.File(7 - i)
		}
		rankBaseline := origin.Y + i*squareSize + squareSize/2 + ascent/2
		drawCenteredText(drawer, rank.String(), origin.X-margin/2, rankBaseline)
		fileCenter := origin.X + i*squareSize + squareSize/2
		drawCenteredText(drawer, file.String(), fileCenter, boardEndY+ascent+4)
	}
}

func drawHeader(dst imagedraw.Image, text string, x, baseline int) {
	drawer := &font.Drawer{Dst: dst, Face: basicfont.Face7x13, Src: image.NewUniform(headerTextColor)}
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Ceil()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func squareRect(sq nchess.Square, squareSize int, origin image.Point, flip bool) image.Rectangle {
	row := 7 - int(sq.Rank())
	col := int(sq.File())
	if flip {
		row = int(sq.Rank())
		col = 7 - int(sq.File())
	}
	x := origin.X + col*squareSize
	y := origin.Y + row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}

func squareColor(sq nchess.Square) color.Color {
	if (int(sq.File())+int(sq.Rank()))%2 == 0 {
		return darkSquare
	}
	return lightSquare
}
