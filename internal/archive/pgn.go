package archive

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/cheese-board/internal/fen"
	"github.com/park285/cheese-board/internal/game"
)

// FromSnapshot builds an archive record for a finished session. The final notation must
// decode; the diagram is stored alongside the PGN. A zero startedAt falls back to the
// snapshot's own start time.
func FromSnapshot(s game.Snapshot, startedAt time.Time) (*Game, error) {
	var diagram bytes.Buffer
	if err := s.RenderText(&diagram); err != nil {
		return nil, fmt.Errorf("archive %s: %w", s.Session, err)
	}

	g := &Game{
		Session:   s.Session,
		FinalFEN:  s.Notation,
		MovesUCI:  append([]string(nil), s.History...),
		Diagram:   diagram.String(),
		StartedAt: startedAt,
		EndedAt:   s.UpdatedAt,
	}
	if g.StartedAt.IsZero() {
		g.StartedAt = s.StartedAt
	}
	if g.EndedAt.IsZero() {
		g.EndedAt = time.Now()
	}
	if p, ok := s.Player(game.White); ok {
		g.WhiteID, g.WhiteName = p.ID, p.Name
	}
	if p, ok := s.Player(game.Black); ok {
		g.BlackID, g.BlackName = p.ID, p.Name
	}
	g.Result, g.ResultMethod = resultOf(s)

	if san, ok := replaySAN(s.History); ok {
		g.MovesSAN = san
	}
	g.PGN = buildPGN(g)
	return g, nil
}

// resultOf reads the outcome from the players' won/lost flags.
func resultOf(s game.Snapshot) (result, method string) {
	w, _ := s.Player(game.White)
	b, _ := s.Player(game.Black)
	switch {
	case w.Won || b.Lost:
		return "white", firstNonEmpty(w.ReasonWon, b.ReasonLost)
	case b.Won || w.Lost:
		return "black", firstNonEmpty(b.ReasonWon, w.ReasonLost)
	}
	return "", ""
}

// replaySAN plays the UCI history from the initial position. Histories that are not
// legal from the standard start report false.
func replaySAN(moves []string) ([]string, bool) {
	if len(moves) == 0 {
		return nil, false
	}
	g := nchess.NewGame()
	san := make([]string, 0, len(moves))
	for _, mv := range moves {
		pos := g.Position()
		if err := g.PushNotationMove(strings.TrimSpace(mv), nchess.UCINotation{}, nil); err != nil {
			return nil, false
		}
		played := g.Moves()
		if len(played) == 0 {
			return nil, false
		}
		san = append(san, nchess.AlgebraicNotation{}.Encode(pos, played[len(played)-1]))
	}
	return san, true
}

func mapResultToPGN(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}

func buildPGN(g *Game) string {
	var b strings.Builder
	result := mapResultToPGN(g.Result)
	date := g.EndedAt

	b.WriteString("[Event \"Board archive\"]\n")
	b.WriteString(fmt.Sprintf("[Site \"%s\"]\n", sanitizePGN(g.Session)))
	b.WriteString(fmt.Sprintf("[Date \"%04d.%02d.%02d\"]\n", date.Year(), int(date.Month()), date.Day()))
	b.WriteString(fmt.Sprintf("[White \"%s\"]\n", sanitizePGN(orUnknown(g.WhiteName))))
	b.WriteString(fmt.Sprintf("[Black \"%s\"]\n", sanitizePGN(orUnknown(g.BlackName))))
	if strings.TrimSpace(g.ResultMethod) != "" {
		b.WriteString(fmt.Sprintf("[Termination \"%s\"]\n", sanitizePGN(strings.ToLower(g.ResultMethod))))
	}
	b.WriteString(fmt.Sprintf("[Result \"%s\"]\n", result))

	moves := g.MovesSAN
	if len(moves) == 0 {
		// history did not replay from the start; keep the raw UCI records
		moves = g.MovesUCI
		if pos, err := fen.ParsePosition(g.FinalFEN); err == nil {
			b.WriteString(fmt.Sprintf("[FinalFEN \"%s\"]\n", pos.String()))
		}
	}
	b.WriteString("\n")

	for i := 0; i < len(moves); i += 2 {
		b.WriteString(fmt.Sprintf("%d. %s", i/2+1, strings.TrimSpace(moves[i])))
		if i+1 < len(moves) {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(moves[i+1]))
		}
		b.WriteString(" ")
	}
	b.WriteString(result)
	return b.String()
}

func sanitizePGN(s string) string {
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.TrimSpace(s)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "?"
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
