// Package board renders decoded grids as text diagrams and PNG images.
package board

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/park285/cheese-board/internal/fen"
)

var ErrEmptyGrid = errors.New("board: empty grid")

// RenderText writes a bordered diagram of g to w: a header row of file labels, then
// one row per rank numbered from g.Rows() down to 1, each followed by a border line.
func RenderText(w io.Writer, g fen.Grid) error {
	rows, cols := g.Rows(), g.Cols()
	if rows == 0 || cols == 0 {
		return ErrEmptyGrid
	}

	width := labelWidth(rows, cols)
	border := strings.Repeat("+"+strings.Repeat("-", width+2), cols+1) + "+\n"

	bw := bufio.NewWriter(w)
	bw.WriteString(border)
	writeCell(bw, "", width, false)
	for c := 0; c < cols; c++ {
		writeCell(bw, FileLabel(c), width, false)
	}
	bw.WriteString("|\n")
	bw.WriteString(border)

	for r := 0; r < rows; r++ {
		writeCell(bw, strconv.Itoa(rows-r), width, true)
		for c := 0; c < cols; c++ {
			writeCell(bw, g.At(r, c).String(), width, false)
		}
		bw.WriteString("|\n")
		bw.WriteString(border)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write diagram: %w", err)
	}
	return nil
}

// Text returns the diagram as a string.
func Text(g fen.Grid) (string, error) {
	var sb strings.Builder
	if err := RenderText(&sb, g); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderNotation decodes a standard notation and writes its diagram.
func RenderNotation(w io.Writer, notation string) error {
	g, err := fen.Decode(notation)
	if err != nil {
		return err
	}
	return RenderText(w, g)
}

// FileLabel names column i: a..z, then aa, ab, ...
func FileLabel(i int) string {
	if i < 0 {
		return ""
	}
	var buf []byte
	for n := i + 1; n > 0; n = (n - 1) / 26 {
		buf = append([]byte{byte('a' + (n-1)%26)}, buf...)
	}
	return string(buf)
}

func labelWidth(rows, cols int) int {
	w := len(strconv.Itoa(rows))
	if fw := len(FileLabel(cols - 1)); fw > w {
		w = fw
	}
	return w
}

func writeCell(w *bufio.Writer, text string, width int, alignRight bool) {
	w.WriteString("| ")
	pad := width - len(text)
	if alignRight && pad > 0 {
		w.WriteString(strings.Repeat(" ", pad))
	}
	w.WriteString(text)
	if !alignRight && pad > 0 {
		w.WriteString(strings.Repeat(" ", pad))
	}
	w.WriteString(" ")
}
