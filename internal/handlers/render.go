package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = map[string]*template.Template{
	"home":     parsePage("home.html"),
	"view":     parsePage("view.html"),
	"history":  parsePage("history.html"),
	"notfound": parsePage("notfound.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).
		Option("missingkey=zero").
		ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

// Page is the data every page's layout needs.
type Page struct {
	Title  string
	Active string
	Nav    []ContentType
}

func newPage(title, active string) Page {
	return Page{Title: title, Active: active, Nav: contentTypes}
}

// renderPage buffers the page so a template error never leaves a half
// written response.
func renderPage(w http.ResponseWriter, log *logrus.Logger, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.WithError(err).WithField("page", name).Error("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

type notFoundPage struct {
	Page
	Message string
}

func renderNotFound(w http.ResponseWriter, log *logrus.Logger, message string) {
	renderPage(w, log, http.StatusNotFound, "notfound", notFoundPage{
		Page:    newPage("Not found", ""),
		Message: message,
	})
}
