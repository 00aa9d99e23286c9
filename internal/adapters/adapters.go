// Package adapters turns raw form input for each modality into a
// models.SubmissionRequest. Adapters never touch the network.
package adapters

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"content-summarizer-web/internal/models"
)

const (
	MinTextChars = 50
	MaxPDFBytes  = 10 * 1024 * 1024
	PDFMimeType  = "application/pdf"

	FileTypeMessage     = "Please select a PDF file"
	FileTooLargeMessage = "File size must be less than 10MB"
	FileRequiredMessage = "PDF file is required"
)

// ValidationError carries one message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Common holds the fields every modality carries.
type Common struct {
	UserID   string
	Language string
}

func (c Common) validate(fields map[string]string) (string, string) {
	userID := strings.TrimSpace(c.UserID)
	if userID == "" {
		fields["user_id"] = "User ID is required"
	}
	language := strings.TrimSpace(c.Language)
	if language == "" {
		language = models.DefaultLanguage
	}
	return userID, language
}

func result(req models.SubmissionRequest, fields map[string]string) (models.SubmissionRequest, error) {
	if len(fields) > 0 {
		return models.SubmissionRequest{}, &ValidationError{Fields: fields}
	}
	return req, nil
}

// Article accepts any non-empty URL; the backend decides whether it can be fetched.
func Article(c Common, articleURL string) (models.SubmissionRequest, error) {
	fields := make(map[string]string)
	userID, language := c.validate(fields)

	articleURL = strings.TrimSpace(articleURL)
	if articleURL == "" {
		fields["article_url"] = "Article URL is required"
	}

	return result(models.SubmissionRequest{
		Kind:       models.ModalityArticle,
		UserID:     userID,
		Language:   language,
		ArticleURL: articleURL,
	}, fields)
}

// Video accepts any non-empty URL without checking its YouTube shape.
func Video(c Common, videoURL string) (models.SubmissionRequest, error) {
	fields := make(map[string]string)
	userID, language := c.validate(fields)

	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		fields["video_url"] = "Video URL is required"
	}

	return result(models.SubmissionRequest{
		Kind:     models.ModalityVideo,
		UserID:   userID,
		Language: language,
		VideoURL: videoURL,
	}, fields)
}

// TextStats are the live counters shown under the text box.
type TextStats struct {
	Words int `json:"words"`
	Chars int `json:"chars"`
}

func StatsOf(text string) TextStats {
	return TextStats{
		Words: len(strings.Fields(text)),
		Chars: utf8.RuneCountInString(text),
	}
}

// TextAcceptable reports whether text is long enough to submit.
func TextAcceptable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinTextChars
}

// Text sends the raw text unchanged; only the length check uses the trimmed form.
func Text(c Common, text string) (models.SubmissionRequest, error) {
	fields := make(map[string]string)
	userID, language := c.validate(fields)

	if !TextAcceptable(text) {
		fields["text"] = fmt.Sprintf("Text must be at least %d characters", MinTextChars)
	}

	return result(models.SubmissionRequest{
		Kind:     models.ModalityText,
		UserID:   userID,
		Language: language,
		Text:     text,
	}, fields)
}

// File is an uploaded document. Either Data holds the raw bytes or Encoded
// holds them base64-encoded, optionally as a data URL.
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
	Encoded  string
}

// CheckFile applies the type and size limits. Handlers call it before
// reading an upload so oversize bodies are refused early.
func CheckFile(mimeType string, size int64) map[string]string {
	fields := make(map[string]string)
	if mimeType != PDFMimeType {
		fields["file"] = FileTypeMessage
	} else if size > MaxPDFBytes {
		fields["file"] = FileTooLargeMessage
	}
	return fields
}

// PDF validates and base64-encodes an uploaded PDF.
func PDF(c Common, f File) (models.SubmissionRequest, error) {
	fields := make(map[string]string)
	userID, language := c.validate(fields)

	var payload string
	size := f.Size
	if f.Data != nil {
		payload = base64.StdEncoding.EncodeToString(f.Data)
		if size == 0 {
			size = int64(len(f.Data))
		}
	} else {
		payload = StripDataURLPrefix(f.Encoded)
		if size == 0 {
			size = decodedSize(payload)
		}
	}

	mimeType := strings.TrimSpace(f.MIMEType)
	if mimeType == "" && f.Data != nil {
		mimeType = SniffMIME(f.Data)
	}

	for k, v := range CheckFile(mimeType, size) {
		fields[k] = v
	}
	if payload == "" && fields["file"] == "" {
		fields["file"] = FileRequiredMessage
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = "document.pdf"
	}

	return result(models.SubmissionRequest{
		Kind:      models.ModalityPDF,
		UserID:    userID,
		Language:  language,
		PDFBase64: payload,
		Filename:  name,
	}, fields)
}

// decodedSize is the exact byte length of a padded base64 payload.
func decodedSize(payload string) int64 {
	n := base64.StdEncoding.DecodedLen(len(payload))
	if len(payload) >= 2 {
		n -= strings.Count(payload[len(payload)-2:], "=")
	}
	return int64(n)
}

// StripDataURLPrefix removes a leading "data:...;base64," header.
func StripDataURLPrefix(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return ""
}

// SniffMIME detects a MIME type from content, for callers that have no
// declared type (files read from disk).
func SniffMIME(data []byte) string {
	mt := mimetype.Detect(data)
	if mt.Is(PDFMimeType) {
		return PDFMimeType
	}
	return mt.String()
}
