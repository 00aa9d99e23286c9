package presenter

import (
	"strings"
	"sync"
	"time"

	"content-summarizer-web/internal/models"
)

// CopiedFor is how long a copy stays acknowledged.
const CopiedFor = 2 * time.Second

// GeneratedLayout formats the export timestamp.
const GeneratedLayout = "1/2/2006, 3:04:05 PM"

// ExportText renders r in the fixed Markdown export layout.
func ExportText(r models.SummaryRecord, now time.Time) string {
	var b strings.Builder

	b.WriteString("# Content Summary\n\n")

	b.WriteString("## Executive Summary\n")
	b.WriteString(orDefault(strings.TrimSpace(r.ExecutiveSummary), "N/A"))
	b.WriteString("\n\n")

	b.WriteString("## Key Topics\n")
	b.WriteString(bullets(r.KeyTopics, "N/A"))
	b.WriteString("\n\n")

	b.WriteString("## Main Takeaways\n")
	b.WriteString(bullets(r.MainTakeaways, "N/A"))
	b.WriteString("\n\n")

	b.WriteString("## Action Items\n")
	b.WriteString(bullets(r.ActionItems, "None"))
	b.WriteString("\n\n")

	b.WriteString("---\n")
	b.WriteString("Generated on: ")
	b.WriteString(now.Format(GeneratedLayout))
	b.WriteString("\n")

	return b.String()
}

func bullets(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Clipboard receives exported text.
type Clipboard interface {
	WriteText(text string) error
}

// CopyNotice tracks the transient "copied" acknowledgment of one view.
type CopyNotice struct {
	mu     sync.Mutex
	copied bool
	timer  *time.Timer
	gen    uint64
	hold   time.Duration
	// onChange, if set, is called with the new value after every flip.
	onChange func(bool)
}

func NewCopyNotice(onChange func(bool)) *CopyNotice {
	return &CopyNotice{hold: CopiedFor, onChange: onChange}
}

// Copy writes the export of r to cb and acknowledges it.
func (n *CopyNotice) Copy(cb Clipboard, r models.SummaryRecord, now time.Time) error {
	if err := cb.WriteText(ExportText(r, now)); err != nil {
		return err
	}
	n.Mark()
	return nil
}

// Mark acknowledges a copy made elsewhere. Marking again restarts the timer.
func (n *CopyNotice) Mark() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	n.copied = true
	n.gen++
	gen := n.gen
	n.timer = time.AfterFunc(n.hold, func() { n.revert(gen) })
	n.mu.Unlock()

	n.notify(true)
}

// Copied reports whether the acknowledgment is showing.
func (n *CopyNotice) Copied() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.copied
}

// Close cancels a pending revert. The notice keeps its current value.
func (n *CopyNotice) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// revert ignores timers superseded by a later Mark.
func (n *CopyNotice) revert(gen uint64) {
	n.mu.Lock()
	if !n.copied || gen != n.gen {
		n.mu.Unlock()
		return
	}
	n.copied = false
	n.timer = nil
	n.mu.Unlock()

	n.notify(false)
}

func (n *CopyNotice) notify(v bool) {
	if n.onChange != nil {
		n.onChange(v)
	}
}
