package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/justyntemme/scrollbook/internal/config"
	"github.com/justyntemme/scrollbook/internal/document"
	"github.com/justyntemme/scrollbook/internal/engine"
	"github.com/justyntemme/scrollbook/internal/ui/host"
	"github.com/justyntemme/scrollbook/internal/ui/styles"
)

// printContents lays the book out without a terminal and prints the measured
// chapter and section ranges
func printContents(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.NArg() == 0 {
		return fmt.Errorf("no book given")
	}
	path := cmd.Args().First()
	book, err := document.Open(path)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", path, err)
	}

	chapters, sections := measure(book, env.cfg.Reader, cmd.Int("width"), cmd.Int("height"), env.log)
	fmt.Fprintln(cmd.Root().Writer, contentsTable(chapters, sections))
	return nil
}

// measure mounts an engine on a headless host and returns its ranges
func measure(book *document.Book, rc config.ReaderConfig, cols, rows int, log *zap.Logger) (chapters, sections []engine.Range) {
	h := host.New(document.NewLayout(book, max(cols-3, 10)), cols, max(rows-3, 1), host.Options{
		Scheduler: engine.NewManualScheduler(),
		Logger:    log,
		CellWidth: rc.CellWidth,
	})
	var e *engine.Engine
	h.Do(func() {
		e = engine.New(h, engine.Options{
			Scheduler:     h,
			Logger:        log,
			Resize:        h,
			Intersection:  h,
			Indicator:     h.Indicator(),
			ChapterOffset: rc.ChapterOffset,
		})
	})
	defer e.Close()
	return e.Chapters(), e.Subchapters()
}

// contentsTable renders chapters with their sections nested below them
func contentsTable(chapters, sections []engine.Range) string {
	var rows [][]string
	for _, c := range chapters {
		rows = append(rows, contentsRow(strconv.Itoa(c.ID), c.Name, c))
		for _, s := range sections {
			if s.Start >= c.Start && s.Start < c.End {
				rows = append(rows, contentsRow("", "  › "+s.Name, s))
			}
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Border)).
		Headers("#", "Title", "Anchor", "Theme", "Start", "End").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Foreground(styles.Primary).Bold(true)
			}
			if col >= 4 {
				return st.Align(lipgloss.Right)
			}
			return st
		}).
		String()
}

func contentsRow(id, title string, r engine.Range) []string {
	theme := r.Theme
	if theme == "" {
		theme = "-"
	}
	return []string{
		id,
		title,
		r.Anchor,
		theme,
		fmt.Sprintf("%.1f%%", r.PercentStart),
		fmt.Sprintf("%.1f%%", r.PercentEnd),
	}
}
