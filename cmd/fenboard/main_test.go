package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/park285/cheese-board/internal/fen"
	"github.com/park285/cheese-board/internal/game"
	"github.com/park285/cheese-board/internal/store"
	"github.com/park285/cheese-board/internal/viewer"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("LOG_TO_FILE", "false")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRenderFromArgument(t *testing.T) {
	out, _, err := run(t, "", "render", startFEN)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 19 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if lines[1] != "|   | a | b | c | d | e | f | g | h |" || lines[17] != "| 1 | R | N | B | Q | K | B | N | R |" {
		t.Fatalf("unexpected diagram:\n%s", out)
	}
}

func TestRenderFromStdinWithSummary(t *testing.T) {
	out, _, err := run(t, "8/8/8/4k3/8/8/8/4K3 b - - 0 40\n", "render", "--summary")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "| 5 |   |   |   |   | k |   |   |   |") || !strings.Contains(out, "Black to move, 0 half-moves recorded") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestRenderMalformedPrintsNothing(t *testing.T) {
	out, _, err := run(t, "", "render", "rnbqkbnr/ppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR")
	if !errors.Is(err, fen.ErrMalformedNotation) {
		t.Fatalf("err = %v, want ErrMalformedNotation", err)
	}
	if out != "" {
		t.Fatalf("partial output on error:\n%s", out)
	}
}

func TestRenderWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	_, errOut, err := run(t, "", "render", "--png", path, "--square", "24", startFEN)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if !strings.Contains(errOut, path) {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestEncodeNormalises(t *testing.T) {
	out, _, err := run(t, "", "encode", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.TrimSpace(out) != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1" {
		t.Fatalf("encode = %q", out)
	}
}

func TestApplyThenRenderSession(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	t.Setenv("REDIS_URL", fmt.Sprintf("redis://%s/0", mr.Addr()))

	after := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	out, _, err := run(t, "", "apply", "--session", "cli-1", "--fen", after, "--move", "e2e4")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !strings.Contains(out, "Session cli-1") || !strings.Contains(out, "(last e2e4)") {
		t.Fatalf("apply output:\n%s", out)
	}

	out, _, err = run(t, "", "render", "--session", "cli-1")
	if err != nil {
		t.Fatalf("render session: %v", err)
	}
	if !strings.Contains(out, "| 4 |   |   |   |   | P |   |   |   |") {
		t.Fatalf("session diagram:\n%s", out)
	}

	if _, _, err := run(t, "", "render", "--session", "nope"); err == nil {
		t.Fatalf("expected error for unknown session")
	}
}

func TestArchiveRequiresDatabase(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	t.Setenv("REDIS_URL", fmt.Sprintf("redis://%s/0", mr.Addr()))
	t.Setenv("DATABASE_URL", "")

	if _, _, err := run(t, "", "apply", "--session", "a1", "--fen", startFEN); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, _, err := run(t, "", "archive", "--session", "a1"); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("archive err = %v", err)
	}
}

func TestRenderFromViewer(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	ctx := context.Background()
	st, err := store.Open(ctx, fmt.Sprintf("redis://%s/0", mr.Addr()), time.Hour)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer st.Close()
	if _, err := st.Apply(ctx, "remote", game.Delta{Notation: "8/8/8/4k3/8/8/8/4K3 w - - 0 1"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := viewer.New(viewer.Options{Snapshots: st})
	go func() { _ = srv.Serve(ln) }()
	defer func() { _ = srv.Shutdown(ctx) }()

	base := "http://" + ln.Addr().String()
	out, _, err := run(t, "", "render", "--session", "remote", "--viewer", base, "--timeout", "2s")
	if err != nil {
		t.Fatalf("render --viewer: %v", err)
	}
	if !strings.Contains(out, "| 5 |   |   |   |   | k |   |   |   |") {
		t.Fatalf("viewer diagram:\n%s", out)
	}
	if _, _, err := run(t, "", "render", "--session", "nope", "--viewer", base, "--timeout", "2s"); !errors.Is(err, viewer.ErrNotFound) {
		t.Fatalf("unknown remote session err = %v", err)
	}
}
