package fen

import (
	"strconv"
	"strings"
)

// Encode writes the layout field for g: letters for pieces, digit runs for empty
// cells, '/' between rows. It is the inverse of Decode/DecodeSize.
func Encode(g Grid) string {
	var b strings.Builder
	b.Grow(g.Rows() * (g.Cols() + 1))
	for r := 0; r < g.Rows(); r++ {
		if r > 0 {
			b.WriteByte('/')
		}
		empty := 0
		for c := 0; c < g.Cols(); c++ {
			p := g.At(r, c)
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteByte(byte(p))
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
	}
	return b.String()
}
