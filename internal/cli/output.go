package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"content-summarizer-web/internal/history"
	"content-summarizer-web/internal/presenter"
)

// Printer writes command output. Data goes to out, notices to err.
type Printer struct {
	out io.Writer
	err io.Writer

	title   *color.Color
	heading *color.Color
	dim     *color.Color
	fail    *color.Color
}

func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	p := &Printer{
		out:     out,
		err:     err,
		title:   color.New(color.FgCyan, color.Bold),
		heading: color.New(color.FgGreen, color.Bold),
		dim:     color.New(color.Faint),
		fail:    color.New(color.FgRed, color.Bold),
	}
	for _, c := range []*color.Color{p.title, p.heading, p.dim, p.fail} {
		if useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Export prints the Markdown export with its headings highlighted.
func (p *Printer) Export(text string) {
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "# "):
			p.title.Fprint(p.out, line)
		case strings.HasPrefix(line, "## "):
			p.heading.Fprint(p.out, line)
		case strings.HasPrefix(line, "Generated on: "):
			p.dim.Fprint(p.out, line)
		default:
			fmt.Fprint(p.out, line)
		}
	}
}

// Banner prints the source banner on the notice stream so the export on
// stdout stays clean.
func (p *Printer) Banner(b presenter.Banner) {
	if b.Title != "" {
		p.title.Fprintln(p.err, b.Title)
	}
	if b.Line != "" {
		p.dim.Fprintln(p.err, b.Line)
	}
}

func (p *Printer) Error(msg string) {
	p.fail.Fprint(p.err, "Error: ")
	fmt.Fprintln(p.err, msg)
}

func (p *Printer) Notice(msg string) {
	fmt.Fprintln(p.err, msg)
}

func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// History prints loaded entries as a borderless table.
func (p *Printer) History(items []history.Item) {
	table := tablewriter.NewTable(p.out,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.When, it.Excerpt, fmt.Sprintf("%d min", it.Minutes), it.Link})
	}

	table.Header([]string{"When", "Summary", "Length", "Link"})
	table.Bulk(rows)
	table.Render()
}
