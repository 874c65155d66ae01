package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedTemplatesRender(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("board.header", map[string]any{
		"Session": "g1", "Move": 2, "Turn": "White", "LastMove": "e7e5",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "g1 | move 2 | White to move | last e7e5" {
		t.Fatalf("header = %q", got)
	}
	for _, k := range []string{"board.summary", "cli.encoded", "viewer.not_found", "viewer.malformed"} {
		found := false
		for _, have := range c.Keys() {
			if have == k {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing embedded key %s", k)
		}
	}
}

func TestRenderMissingKeyAndData(t *testing.T) {
	c := Default()
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := c.Render("viewer.not_found", map[string]any{}); err == nil {
		t.Fatalf("expected error for missing data key")
	}
	if got := c.RenderOr("viewer.not_found", map[string]any{}, "fallback"); got != "fallback" {
		t.Fatalf("RenderOr = %q", got)
	}
	var nilCat *Catalog
	if got := nilCat.RenderOr("x", nil, "fb"); got != "fb" {
		t.Fatalf("nil catalog RenderOr = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("a.yaml", "viewer:\n  not_found: \"no game {{.Session}}\"\n")
	write("ignored.txt", "viewer:\n  not_found: nope\n")

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("viewer.not_found", map[string]any{"Session": "x"})
	if err != nil || got != "no game x" {
		t.Fatalf("override render = %q, %v", got, err)
	}
	if s, _ := c.Render("cli.encoded", map[string]any{"FEN": "8/8/8/8/8/8/8/8 w - - 0 1"}); !strings.HasPrefix(s, "8/8") {
		t.Fatalf("embedded key lost after override: %q", s)
	}

	write("b.yml", "viewer:\n  not_found: dup\n")
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestRejectsNonStringLeaves(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("board:\n  header: 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected error for integer leaf")
	}
}
