package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justyntemme/scrollbook/internal/engine"
)

const tocSource = `# One {#first}

Opening words.

## Dusk {#dusk theme="blue"}

Evening words.

# Two

Closing words.
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	err := app.Run(contextWithEnv(context.Background()), append([]string{"scrollbook", "--config", cfg}, args...))
	return out.String(), err
}

func TestTocCommand(t *testing.T) {
	book := filepath.Join(t.TempDir(), "book.md")
	if err := os.WriteFile(book, []byte(tocSource), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	// a viewport shorter than the book, so the last chapter ends at 100%
	out, err := run(t, "toc", "--width", "60", "--height", "5", book)
	if err != nil {
		t.Fatalf("toc error = %v", err)
	}
	for _, want := range []string{"One", "Two", "› Dusk", "first", "blue", "0.0%", "100.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("toc output missing %q:\n%s", want, out)
		}
	}
}

func TestTocCommandErrors(t *testing.T) {
	if _, err := run(t, "toc"); err == nil {
		t.Error("toc without a book succeeded")
	}
	if _, err := run(t, "toc", filepath.Join(t.TempDir(), "book.pdf")); err == nil {
		t.Error("toc with an unsupported format succeeded")
	}
}

func TestDumpConfig(t *testing.T) {
	out, err := run(t, "dumpconfig", "--default")
	if err != nil {
		t.Fatalf("dumpconfig error = %v", err)
	}
	for _, want := range []string{"reader:", "settle_delay:", "logging:"} {
		if !strings.Contains(out, want) {
			t.Errorf("dumpconfig output missing %q:\n%s", want, out)
		}
	}

	dest := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := run(t, "dumpconfig", dest); err != nil {
		t.Fatalf("dumpconfig %s error = %v", dest, err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "chapter_offset: 2") {
		t.Errorf("written configuration missing chapter_offset:\n%s", data)
	}
}

func TestTocDefaultSize(t *testing.T) {
	book := filepath.Join(t.TempDir(), "book.md")
	if err := os.WriteFile(book, []byte(tocSource), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	out, err := run(t, "toc", book)
	if err != nil {
		t.Fatalf("toc error = %v", err)
	}
	if strings.Count(out, "›") != 1 {
		t.Errorf("expected one nested section:\n%s", out)
	}
	// the scroll height never drops below the viewport, a short book does
	// not fill it
	if strings.Contains(out, "100.0%") {
		t.Errorf("short book reaches 100%% in a tall viewport:\n%s", out)
	}
}

func TestContentsTable(t *testing.T) {
	chapters := []engine.Range{
		{Kind: engine.SectionChapter, ID: 1, Name: "One", Anchor: "one", Start: 0, End: 50, PercentStart: 0, PercentEnd: 50},
		{Kind: engine.SectionChapter, ID: 2, Name: "Two", Anchor: "two", Start: 50, End: 100, PercentStart: 50, PercentEnd: 100},
	}
	sections := []engine.Range{
		{Kind: engine.SectionSubchapter, ID: 1, Name: "Late", Anchor: "late", Theme: "black", Start: 60, End: 80, PercentStart: 60, PercentEnd: 80},
	}
	out := contentsTable(chapters, sections)

	lines := strings.Split(out, "\n")
	late, two := -1, -1
	for i, l := range lines {
		if strings.Contains(l, "Late") {
			late = i
		}
		if strings.Contains(l, "Two") {
			two = i
		}
	}
	if late < 0 || two < 0 || late < two {
		t.Errorf("section Late not listed below chapter Two:\n%s", out)
	}
	if !strings.Contains(out, "black") || !strings.Contains(out, "50.0%") {
		t.Errorf("table missing theme or percentages:\n%s", out)
	}
}
