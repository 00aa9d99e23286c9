package handlers

import "content-summarizer-web/internal/models"

// ContentType is one card on the home page and the form it leads to.
type ContentType struct {
	Kind        models.Modality
	Path        string
	Icon        string
	Title       string
	Heading     string
	Description string
	Features    []string
	Badge       string
}

var contentTypes = []ContentType{
	{
		Kind:        models.ModalityArticle,
		Path:        "/article",
		Icon:        "📄",
		Title:       "Web Articles",
		Heading:     "Summarize an Article",
		Description: "Summarize blog posts, news articles, and web pages",
		Features:    []string{"Any public URL", "Fast extraction"},
	},
	{
		Kind:        models.ModalityText,
		Path:        "/text",
		Icon:        "📝",
		Title:       "Direct Text",
		Heading:     "Summarize Text",
		Description: "Paste any text content for instant summarization",
		Features:    []string{"Paste & go", "Manual transcripts"},
	},
	{
		Kind:        models.ModalityPDF,
		Path:        "/pdf",
		Icon:        "📋",
		Title:       "PDF Documents",
		Heading:     "Summarize a PDF",
		Description: "Upload PDF files to extract and summarize content",
		Features:    []string{"Upload PDFs", "Multi-page", "Up to 10MB"},
	},
	{
		Kind:        models.ModalityVideo,
		Path:        "/youtube",
		Icon:        "🎥",
		Title:       "YouTube Videos",
		Heading:     "Summarize a YouTube Video",
		Description: "Get AI summaries from YouTube video transcripts",
		Features:    []string{"Video transcripts", "Requires captions"},
	},
}

func contentTypeFor(kind models.Modality) (ContentType, bool) {
	for _, ct := range contentTypes {
		if ct.Kind == kind {
			return ct, true
		}
	}
	return ContentType{}, false
}

// FormPath is the page path of kind's form.
func FormPath(kind models.Modality) string {
	ct, _ := contentTypeFor(kind)
	return ct.Path
}
