// Package normalizer converts any summarize endpoint's response body into
// one models.SummaryRecord plus the informational models.SourceMetadata.
//
// Some backend deployments wrap the record one level deeper
// ({"summary": {"summary": {...}}}). That shape is accepted as a
// compatibility shim; the documented contract is a single "summary" object.
package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"content-summarizer-web/internal/models"
)

var (
	ErrNotObject      = errors.New("response body is not a JSON object")
	ErrMissingSummary = errors.New("response has no summary")
)

type fields map[string]json.RawMessage

// Normalize decodes body. It fails only when no summary can be found; absent
// list sections become empty slices and malformed metadata is ignored.
func Normalize(body []byte) (models.SummaryRecord, models.SourceMetadata, error) {
	top, ok := object(body)
	if !ok {
		return models.SummaryRecord{}, models.SourceMetadata{}, ErrNotObject
	}

	raw, ok := top["summary"]
	if !ok || isNull(raw) {
		return models.SummaryRecord{}, models.SourceMetadata{}, ErrMissingSummary
	}

	record, inner, err := unwrap(raw)
	if err != nil {
		return models.SummaryRecord{}, models.SourceMetadata{}, err
	}

	meta := metadata(top)
	if meta.Language == "" && inner != nil {
		meta.Language = str(inner["language"])
	}

	return record, meta, nil
}

// unwrap prefers summary.summary when it is present and usable.
func unwrap(raw json.RawMessage) (models.SummaryRecord, fields, error) {
	if s, ok := plainString(raw); ok {
		return models.SummaryRecord{
			ExecutiveSummary: strings.TrimSpace(s),
			KeyTopics:        []string{},
			MainTakeaways:    []string{},
			ActionItems:      []string{},
		}, nil, nil
	}

	outer, ok := object(raw)
	if !ok {
		return models.SummaryRecord{}, nil, fmt.Errorf("summary is neither an object nor text: %w", ErrNotObject)
	}

	if nested, ok := outer["summary"]; ok {
		if inner, ok := object(nested); ok {
			return record(inner), inner, nil
		}
		if s, ok := plainString(nested); ok && strings.TrimSpace(s) != "" {
			r := record(outer)
			if r.ExecutiveSummary == "" {
				r.ExecutiveSummary = strings.TrimSpace(s)
			}
			return r, outer, nil
		}
	}

	return record(outer), outer, nil
}

func record(f fields) models.SummaryRecord {
	return models.SummaryRecord{
		ExecutiveSummary: strings.TrimSpace(str(f["executive_summary"])),
		KeyTopics:        list(f["key_topics"]),
		MainTakeaways:    list(f["main_takeaways"]),
		ActionItems:      list(f["action_items"]),
	}
}

func metadata(top fields) models.SourceMetadata {
	return models.SourceMetadata{
		Title:     str(top["title"]),
		Author:    str(top["author"]),
		URL:       str(top["url"]),
		Language:  str(top["language"]),
		Filename:  str(top["filename"]),
		Pages:     intPtr(top["pages"]),
		WordCount: intPtr(top["word_count"]),
		CharCount: intPtr(top["char_count"]),
		Duration:  floatPtr(top["duration"]),
		VideoID:   str(top["videoId"]),
		CreatedAt: str(top["createdAt"]),
	}
}

func object(raw []byte) (fields, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, false
	}
	return f, true
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

func plainString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func str(raw json.RawMessage) string {
	if raw == nil || isNull(raw) {
		return ""
	}
	if s, ok := plainString(raw); ok {
		return s
	}
	return ""
}

// list keeps string items in order, drops nulls and blanks, and renders any
// other scalar with its JSON text.
func list(raw json.RawMessage) []string {
	out := []string{}
	if raw == nil || isNull(raw) {
		return out
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s, ok := plainString(raw); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
		return out
	}

	for _, item := range items {
		if isNull(item) {
			continue
		}
		if s, ok := plainString(item); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		out = append(out, string(bytes.TrimSpace(item)))
	}
	return out
}

func floatPtr(raw json.RawMessage) *float64 {
	if raw == nil || isNull(raw) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	if s, ok := plainString(raw); ok {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &n
		}
	}
	return nil
}

func intPtr(raw json.RawMessage) *int {
	f := floatPtr(raw)
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	n := int(*f)
	return &n
}
