package models

import "time"

// SummaryRecord is the canonical, modality-independent summary.
type SummaryRecord struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyTopics        []string `json:"key_topics"`
	MainTakeaways    []string `json:"main_takeaways"`
	ActionItems      []string `json:"action_items"`
}

// IsEmpty reports whether no section has content.
func (r SummaryRecord) IsEmpty() bool {
	return r.ExecutiveSummary == "" && len(r.KeyTopics) == 0 &&
		len(r.MainTakeaways) == 0 && len(r.ActionItems) == 0
}

// SourceMetadata is informational only. Counts are pointers so that a value
// the backend omitted is distinguishable from zero.
type SourceMetadata struct {
	Title     string   `json:"title,omitempty"`
	Author    string   `json:"author,omitempty"`
	URL       string   `json:"url,omitempty"`
	Language  string   `json:"language,omitempty"`
	Filename  string   `json:"filename,omitempty"`
	Pages     *int     `json:"pages,omitempty"`
	WordCount *int     `json:"word_count,omitempty"`
	CharCount *int     `json:"char_count,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
	VideoID   string   `json:"videoId,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// HistoryEntry is a prior summary owned by the backend.
type HistoryEntry struct {
	ID        string          `json:"id"`
	CreatedAt string          `json:"createdAt"`
	Summary   *HistorySummary `json:"summary,omitempty"`
	VideoURL  string          `json:"videoUrl,omitempty"`
	SourceURL string          `json:"sourceUrl,omitempty"`
	Duration  float64         `json:"duration"`
}

// HistorySummary is the partial summary stored alongside a history entry.
type HistorySummary struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyTopics        []string `json:"key_topics,omitempty"`
}

// Link returns the entry's source link, preferring the video URL.
func (e HistoryEntry) Link() string {
	if e.VideoURL != "" {
		return e.VideoURL
	}
	return e.SourceURL
}

// Created parses CreatedAt. The backend writes naive UTC ISO-8601 timestamps.
func (e HistoryEntry) Created() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, e.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
