package board

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

// Token body and outline per side, as SVG colour literals.
var tokenStyles = map[nchess.Color][2]string{
	nchess.White: {"#f7f3ea", "#2b2b2b"},
	nchess.Black: {"#2b2b2b", "#f7f3ea"},
}

const tokenTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 45 45" width="45" height="45">
<circle cx="22.5" cy="22.5" r="17" style="fill: %s; stroke: %s; stroke-width: 2.5"/>
<circle cx="22.5" cy="22.5" r="13.5" style="fill: none; stroke: %s; stroke-width: 1"/>
</svg>`

// renderPieceImage rasterises a disc token for piece and stamps its letter in the middle.
func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	style, ok := tokenStyles[piece.Color()]
	if !ok {
		return nil, fmt.Errorf("piece %v has no colour", piece)
	}
	svg := fmt.Sprintf(tokenTemplate, style[0], style[1], style[1])

	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG([]byte(svg))))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	stampLetter(img, pieceLetter(piece), letterColor(piece.Color()))

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}

func stampLetter(img *image.RGBA, letter string, clr color.Color) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(clr), Face: face}
	b := img.Bounds()
	width := drawer.MeasureString(letter).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	x := b.Min.X + (b.Dx()-width)/2
	y := b.Min.Y + (b.Dy()+ascent)/2 - 1
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(letter)
}

func letterColor(c nchess.Color) color.Color {
	if c == nchess.White {
		return color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	}
	return color.NRGBA{R: 245, G: 242, B: 232, A: 255}
}

func pieceLetter(piece nchess.Piece) string {
	switch piece.Type() {
	case nchess.King:
		return "K"
	case nchess.Queen:
		return "Q"
	case nchess.Rook:
		return "R"
	case nchess.Bishop:
		return "B"
	case nchess.Knight:
		return "N"
	case nchess.Pawn:
		return "P"
	}
	return "?"
}

// sanitizeSVG normalises the "prop: value" spacing oksvg refuses to read.
func sanitizeSVG(svg []byte) []byte {
	out := bytes.ReplaceAll(svg, []byte("fill: #"), []byte("fill:#"))
	out = bytes.ReplaceAll(out, []byte("stroke: #"), []byte("stroke:#"))
	out = bytes.ReplaceAll(out, []byte("fill: none"), []byte("fill:none"))
	out = bytes.ReplaceAll(out, []byte("stroke-width: "), []byte("stroke-width:"))
	out = bytes.ReplaceAll(out, []byte("; "), []byte(";"))
	return out
}
