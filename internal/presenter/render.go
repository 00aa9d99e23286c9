package presenter

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"content-summarizer-web/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var summaryTemplate = template.Must(template.ParseFS(templateFS, "templates/summary.html"))

// View is everything the summary fragment needs.
type View struct {
	Banner    Banner
	Sections  []Section
	Copied    bool
	ExportURL string
	CopyURL   string
}

// NewView prepares a succeeded summary for rendering.
func NewView(kind models.Modality, st models.Succeeded) View {
	return View{
		Banner:   NewBanner(kind, st.Metadata),
		Sections: Sections(st.Record),
	}
}

// Render writes the HTML summary fragment for v.
func Render(w io.Writer, v View) error {
	return summaryTemplate.ExecuteTemplate(w, "summary", v)
}

// RenderHTML renders v for embedding into a page template.
func RenderHTML(v View) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, v); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
