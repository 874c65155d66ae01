// Package viewer serves board diagrams, images and snapshots over HTTP.
package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/archive"
	"github.com/park285/cheese-board/internal/board"
	"github.com/park285/cheese-board/internal/fen"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/msgcat"
	"github.com/park285/cheese-board/internal/obslog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
)

// Snapshots is the read side of the snapshot store.
type Snapshots interface {
	Load(ctx context.Context, session string) (*game.Snapshot, error)
}

// Lister is implemented by stores that can enumerate live sessions.
type Lister interface {
	Sessions(ctx context.Context) ([]game.Snapshot, error)
}

type Options struct {
	Snapshots  Snapshots
	Archive    archive.Repository // optional
	Renderer   board.PNGRenderer
	Messages   *msgcat.Catalog
	RecentMax  int
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type Server struct {
	snaps     Snapshots
	archive   archive.Repository
	png       board.PNGRenderer
	msgs      *msgcat.Catalog
	recentMax int

	requests *prometheus.CounterVec
	renders  *prometheus.HistogramVec
	metrics  fasthttp.RequestHandler

	srv *fasthttp.Server
}

// New builds a server. Without a Registerer a private registry is used.
func New(opts Options) *Server {
	s := &Server{
		snaps:     opts.Snapshots,
		archive:   opts.Archive,
		png:       opts.Renderer,
		msgs:      opts.Messages,
		recentMax: opts.RecentMax,
	}
	if s.png == nil {
		s.png = board.NewPNGRenderer(0)
	}
	if s.msgs == nil {
		s.msgs = msgcat.Default()
	}
	if s.recentMax <= 0 {
		s.recentMax = 20
	}

	reg, gat := opts.Registerer, opts.Gatherer
	if reg == nil || gat == nil {
		r := prometheus.NewRegistry()
		reg, gat = r, r
	}
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_viewer_requests_total",
		Help: "Viewer requests by route and status code.",
	}, []string{"route", "code"})
	s.renders = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "board_viewer_render_seconds",
		Help:    "Time spent decoding and rendering a board.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
	reg.MustRegister(s.requests, s.renders)
	s.metrics = fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gat, promhttp.HandlerOpts{}))

	s.srv = &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "boardview",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error {
	obslog.L().Info("viewer_listen", zap.String("addr", addr))
	return s.srv.ListenAndServe(addr)
}

func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

// Handler routes one request.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	route := "other"
	defer func() {
		s.requests.WithLabelValues(route, strconv.Itoa(ctx.Response.StatusCode())).Inc()
	}()

	get := ctx.IsGet() || ctx.IsHead()
	switch {
	case path == "/healthz" && get:
		route = "healthz"
		ctx.SetContentType("text/plain; charset=utf-8")
		ctx.SetBodyString("ok")
	case path == "/metrics" && get:
		route = "metrics"
		s.metrics(ctx)
	case path == "/render" && get:
		route = "render"
		s.handleRender(ctx)
	case path == "/games" && get:
		route = "games"
		s.handleList(ctx)
	case path == "/archive/recent" && get:
		route = "archive_recent"
		s.handleRecent(ctx)
	case strings.HasPrefix(path, "/archive/") && strings.HasSuffix(path, ".pgn") && get:
		route = "archive_pgn"
		s.handlePGN(ctx, strings.TrimSuffix(strings.TrimPrefix(path, "/archive/"), ".pgn"))
	case strings.HasPrefix(path, "/games/"):
		session, rest, _ := strings.Cut(strings.TrimPrefix(path, "/games/"), "/")
		switch {
		case session == "":
			s.notFound(ctx, session)
		case rest == "" && get:
			route = "snapshot"
			s.handleSnapshot(ctx, session)
		case rest == "board.txt" && get:
			route = "board_txt"
			s.handleBoardText(ctx, session)
		case rest == "board.png" && get:
			route = "board_png"
			s.handleBoardPNG(ctx, session)
		case rest == "archive" && ctx.IsPost():
			route = "archive"
			s.handleArchive(ctx, session)
		default:
			ctx.Error("not found", fasthttp.StatusNotFound)
		}
	default:
		ctx.Error("not found", fasthttp.StatusNotFound)
	}
}

func (s *Server) handleRender(ctx *fasthttp.RequestCtx) {
	notation := strings.TrimSpace(string(ctx.QueryArgs().Peek("fen")))
	if notation == "" {
		writeText(ctx, fasthttp.StatusBadRequest, s.msgs.RenderOr("viewer.missing_fen", nil, "fen is required"))
		return
	}
	snap := game.Snapshot{Session: "ad-hoc", Notation: notation}
	if string(ctx.QueryArgs().Peek("format")) == "png" {
		s.writePNG(ctx, snap)
		return
	}
	s.writeDiagram(ctx, snap)
}

func (s *Server) handleList(ctx *fasthttp.RequestCtx) {
	lister, ok := s.snaps.(Lister)
	if !ok {
		ctx.Error("listing not supported", fasthttp.StatusNotImplemented)
		return
	}
	list, err := lister.Sessions(ctx)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	if list == nil {
		list = []game.Snapshot{}
	}
	writeJSON(ctx, fasthttp.StatusOK, list)
}

func (s *Server) handleSnapshot(ctx *fasthttp.RequestCtx, session string) {
	snap, ok := s.load(ctx, session)
	if !ok {
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, snap)
}

func (s *Server) handleBoardText(ctx *fasthttp.RequestCtx, session string) {
	snap, ok := s.load(ctx, session)
	if !ok {
		return
	}
	s.writeDiagram(ctx, *snap)
}

func (s *Server) handleBoardPNG(ctx *fasthttp.RequestCtx, session string) {
	snap, ok := s.load(ctx, session)
	if !ok {
		return
	}
	s.writePNG(ctx, *snap)
}

func (s *Server) handleArchive(ctx *fasthttp.RequestCtx, session string) {
	if s.archive == nil {
		ctx.Error("archive not configured", fasthttp.StatusNotImplemented)
		return
	}
	snap, ok := s.load(ctx, session)
	if !ok {
		return
	}
	g, err := archive.Record(ctx, s.archive, *snap, snap.StartedAt)
	if errors.Is(err, fen.ErrMalformedNotation) {
		s.malformed(ctx, err)
		return
	}
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{"id": g.ID, "session": g.Session, "result": g.Result, "pgn": g.PGN})
}

func (s *Server) handleRecent(ctx *fasthttp.RequestCtx) {
	if s.archive == nil {
		ctx.Error("archive not configured", fasthttp.StatusNotImplemented)
		return
	}
	limit := s.recentMax
	if n, err := ctx.QueryArgs().GetUint("limit"); err == nil && n > 0 && n < limit {
		limit = n
	}
	games, err := s.archive.RecentGames(ctx, limit)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	type entry struct {
		Session   string    `json:"session"`
		White     string    `json:"white"`
		Black     string    `json:"black"`
		Result    string    `json:"result"`
		Moves     int       `json:"moves"`
		StartedAt time.Time `json:"started_at,omitzero"`
		EndedAt   time.Time `json:"ended_at"`
	}
	out := make([]entry, 0, len(games))
	for _, g := range games {
		out = append(out, entry{
			Session: g.Session, White: g.WhiteName, Black: g.BlackName,
			Result: g.Result, Moves: len(g.MovesUCI), StartedAt: g.StartedAt, EndedAt: g.EndedAt,
		})
	}
	writeJSON(ctx, fasthttp.StatusOK, out)
}

func (s *Server) handlePGN(ctx *fasthttp.RequestCtx, session string) {
	if s.archive == nil {
		ctx.Error("archive not configured", fasthttp.StatusNotImplemented)
		return
	}
	g, err := s.archive.GetGame(ctx, session)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	if g == nil {
		s.notFound(ctx, session)
		return
	}
	ctx.SetContentType("application/x-chess-pgn")
	ctx.SetBodyString(g.PGN)
}

// load captures the session's snapshot for this request.
func (s *Server) load(ctx *fasthttp.RequestCtx, session string) (*game.Snapshot, bool) {
	snap, err := s.snaps.Load(ctx, session)
	if err != nil {
		s.internalError(ctx, err)
		return nil, false
	}
	if snap == nil {
		s.notFound(ctx, session)
		return nil, false
	}
	return snap, true
}

func (s *Server) writeDiagram(ctx *fasthttp.RequestCtx, snap game.Snapshot) {
	start := time.Now()
	var buf bytes.Buffer
	if err := snap.RenderText(&buf); err != nil {
		s.malformed(ctx, err)
		return
	}
	s.renders.WithLabelValues("txt").Observe(time.Since(start).Seconds())
	obslog.L().Debug("viewer_render", zap.String("session", snap.Session), zap.String("format", "txt"))
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}

func (s *Server) writePNG(ctx *fasthttp.RequestCtx, snap game.Snapshot) {
	start := time.Now()
	grid, err := snap.Grid()
	if err != nil {
		s.malformed(ctx, err)
		return
	}
	opts := board.PNGOptions{
		Highlight: board.HighlightMove(snap.LastMove()),
		Header:    Header(s.msgs, snap),
		Flip:      ctx.QueryArgs().GetBool("flip"),
	}
	img, err := s.png.RenderPNG(ctx, grid, opts)
	if err != nil {
		s.internalError(ctx, err)
		return
	}
	s.renders.WithLabelValues("png").Observe(time.Since(start).Seconds())
	obslog.L().Debug("viewer_render",
		zap.String("session", snap.Session),
		zap.String("format", "png"),
		zap.Int("bytes", len(img)),
	)
	ctx.SetContentType("image/png")
	ctx.SetBody(img)
}

// Header renders the one-line caption drawn above PNG boards.
func Header(msgs *msgcat.Catalog, snap game.Snapshot) string {
	data := map[string]any{"Session": snap.Session, "Move": 1, "Turn": "White", "LastMove": snap.LastMove()}
	if pos, err := snap.Position(); err == nil {
		data["Move"] = pos.FullMove
		if pos.Turn == fen.Black {
			data["Turn"] = "Black"
		}
	}
	return msgs.RenderOr("board.header", data, snap.Session)
}

func (s *Server) notFound(ctx *fasthttp.RequestCtx, session string) {
	writeText(ctx, fasthttp.StatusNotFound,
		s.msgs.RenderOr("viewer.not_found", map[string]any{"Session": session}, "unknown session"))
}

func (s *Server) malformed(ctx *fasthttp.RequestCtx, err error) {
	writeText(ctx, fasthttp.StatusUnprocessableEntity,
		s.msgs.RenderOr("viewer.malformed", map[string]any{"Error": err.Error()}, err.Error()))
}

func (s *Server) internalError(ctx *fasthttp.RequestCtx, err error) {
	obslog.L().Error("viewer_error", zap.String("path", string(ctx.Path())), zap.Error(err))
	ctx.Error("internal error", fasthttp.StatusInternalServerError)
}

func writeText(ctx *fasthttp.RequestCtx, code int, body string) {
	ctx.SetStatusCode(code)
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString(body)
}

func writeJSON(ctx *fasthttp.RequestCtx, code int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		ctx.Error("encode failed", fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(code)
	ctx.SetContentType("application/json")
	ctx.SetBody(raw)
}
