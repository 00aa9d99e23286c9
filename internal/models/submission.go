package models

import (
	"encoding/json"
	"fmt"
)

type Modality string

const (
	ModalityArticle Modality = "article"
	ModalityText    Modality = "text"
	ModalityPDF     Modality = "pdf"
	ModalityVideo   Modality = "video"
)

// Modalities lists every supported input type in display order.
var Modalities = []Modality{ModalityArticle, ModalityText, ModalityPDF, ModalityVideo}

// Endpoint returns the backend route suffix that summarizes this modality.
func (m Modality) Endpoint() string {
	switch m {
	case ModalityArticle:
		return "/summarize-article"
	case ModalityText:
		return "/summarize-text"
	case ModalityPDF:
		return "/summarize-pdf"
	case ModalityVideo:
		return "/summarize"
	}
	return ""
}

// Noun is the word used in user-facing messages ("Failed to summarize PDF").
func (m Modality) Noun() string {
	switch m {
	case ModalityPDF:
		return "PDF"
	default:
		return string(m)
	}
}

func ParseModality(s string) (Modality, error) {
	switch m := Modality(s); m {
	case ModalityArticle, ModalityText, ModalityPDF, ModalityVideo:
		return m, nil
	}
	return "", fmt.Errorf("unknown modality %q", s)
}

// SubmissionRequest is the normalized outbound request. Exactly one payload
// field is populated, selected by Kind; UserID and Language are always set.
type SubmissionRequest struct {
	Kind     Modality
	UserID   string
	Language string

	ArticleURL string
	Text       string
	PDFBase64  string
	Filename   string
	VideoURL   string
}

type articleBody struct {
	ArticleURL string `json:"articleUrl"`
	UserID     string `json:"userId"`
	Language   string `json:"language"`
}

type textBody struct {
	Text     string `json:"text"`
	UserID   string `json:"userId"`
	Language string `json:"language"`
}

type pdfBody struct {
	PDFBase64 string `json:"pdfBase64"`
	Filename  string `json:"filename"`
	UserID    string `json:"userId"`
	Language  string `json:"language"`
}

type videoBody struct {
	VideoURL string `json:"videoUrl"`
	UserID   string `json:"userId"`
	Language string `json:"language"`
}

// MarshalJSON emits the documented body for the request's endpoint.
func (r SubmissionRequest) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ModalityArticle:
		return json.Marshal(articleBody{ArticleURL: r.ArticleURL, UserID: r.UserID, Language: r.Language})
	case ModalityText:
		return json.Marshal(textBody{Text: r.Text, UserID: r.UserID, Language: r.Language})
	case ModalityPDF:
		return json.Marshal(pdfBody{PDFBase64: r.PDFBase64, Filename: r.Filename, UserID: r.UserID, Language: r.Language})
	case ModalityVideo:
		return json.Marshal(videoBody{VideoURL: r.VideoURL, UserID: r.UserID, Language: r.Language})
	}
	return nil, fmt.Errorf("submission request has unknown kind %q", r.Kind)
}

// Source returns the human-readable origin of the request for logs and views.
func (r SubmissionRequest) Source() string {
	switch r.Kind {
	case ModalityArticle:
		return r.ArticleURL
	case ModalityPDF:
		return r.Filename
	case ModalityVideo:
		return r.VideoURL
	case ModalityText:
		return fmt.Sprintf("%d bytes of text", len(r.Text))
	}
	return ""
}
