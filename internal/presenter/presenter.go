// Package presenter turns a normalized summary into what the user sees:
// ordered sections, a source banner and a Markdown export.
package presenter

import (
	"fmt"
	"strings"

	"content-summarizer-web/internal/models"
)

// SectionKind says how a section is laid out.
type SectionKind string

const (
	SectionProse SectionKind = "prose"
	SectionList  SectionKind = "list"
)

// Section is one rendered block of a summary.
type Section struct {
	Title string
	Kind  SectionKind
	Text  string
	Items []string
}

// Sections returns the record's non-empty sections in display order.
func Sections(r models.SummaryRecord) []Section {
	var out []Section
	if s := strings.TrimSpace(r.ExecutiveSummary); s != "" {
		out = append(out, Section{Title: "Executive Summary", Kind: SectionProse, Text: s})
	}
	for _, l := range []struct {
		title string
		items []string
	}{
		{"Key Topics", r.KeyTopics},
		{"Main Takeaways", r.MainTakeaways},
		{"Action Items", r.ActionItems},
	} {
		if len(l.items) > 0 {
			out = append(out, Section{Title: l.title, Kind: SectionList, Items: l.items})
		}
	}
	return out
}

// Banner describes the source a summary came from.
type Banner struct {
	Title string
	Line  string
}

// NewBanner builds the per-modality source banner. Missing metadata is left
// out rather than shown as zero.
func NewBanner(kind models.Modality, meta models.SourceMetadata) Banner {
	var b Banner
	var parts []string

	switch kind {
	case models.ModalityArticle:
		b.Title = meta.Title
		if meta.Author != "" {
			parts = append(parts, "By "+meta.Author)
		}
	case models.ModalityText:
		if meta.WordCount != nil {
			line := fmt.Sprintf("Analyzed %d words", *meta.WordCount)
			if meta.CharCount != nil {
				line += fmt.Sprintf(" (%d characters)", *meta.CharCount)
			}
			parts = append(parts, line)
		}
	case models.ModalityPDF:
		if meta.Filename != "" {
			parts = append(parts, meta.Filename)
		}
		if meta.Pages != nil {
			parts = append(parts, fmt.Sprintf("%d pages", *meta.Pages))
		}
	case models.ModalityVideo:
		b.Title = meta.Title
		if meta.Duration != nil {
			parts = append(parts, fmt.Sprintf("%d min", Minutes(*meta.Duration)))
		}
	}

	if meta.Language != "" {
		parts = append(parts, "Summary in "+meta.Language)
	}
	b.Line = strings.Join(parts, " • ")
	return b
}

// Minutes converts a duration in seconds to whole minutes, rounding down.
func Minutes(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	return int(seconds / 60)
}
