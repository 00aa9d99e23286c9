package handlers

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/adapters"
	"content-summarizer-web/internal/middleware"
	"content-summarizer-web/internal/models"
	"content-summarizer-web/internal/presenter"
	"content-summarizer-web/internal/views"
)

const maxUploadBytes = adapters.MaxPDFBytes + 1<<20

var errNotReady = errors.New("summary not ready")

type viewRegistry interface {
	Create(m models.Modality, owner string) *views.View
	Get(id string) (*views.View, error)
}

// SummarizeHandler serves the four form pages and the views they create.
type SummarizeHandler struct {
	views viewRegistry
	log   *logrus.Logger
	now   func() time.Time
}

func NewSummarizeHandler(registry viewRegistry, log *logrus.Logger) *SummarizeHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SummarizeHandler{views: registry, log: log, now: time.Now}
}

type viewPage struct {
	Page
	Type         ContentType
	ViewID       string
	Phase        models.Phase
	Source       string
	Summary      template.HTML
	RequestError string
	Watch        bool

	Languages    []models.Language
	Language     string
	Values       map[string]string
	Errors       map[string]string
	Stats        *adapters.TextStats
	MinTextChars int
}

// Form renders a fresh, idle view for kind.
func (h *SummarizeHandler) Form(kind models.Modality) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct, _ := contentTypeFor(kind)
		v := h.views.Create(kind, middleware.GetUserID(r.Context()))
		renderPage(w, h.log, http.StatusOK, "view", h.formPage(ct, v, nil, nil))
	}
}

// Submit validates the form, starts the view's request and redirects to it.
// A submit while the view is already submitting is ignored.
func (h *SummarizeHandler) Submit(kind models.Modality) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct, _ := contentTypeFor(kind)
		userID := middleware.GetUserID(r.Context())

		values, req, err := h.parse(w, r, kind, userID)

		v, verr := h.views.Get(values["view_id"])
		if verr != nil || v.Owner != userID || v.Modality != kind {
			v = h.views.Create(kind, userID)
		}

		if err != nil {
			var fieldErr *adapters.ValidationError
			if !errors.As(err, &fieldErr) {
				h.log.WithError(err).WithField("modality", kind).Warn("Unreadable form submission")
				fieldErr = &adapters.ValidationError{Fields: map[string]string{"form": "The form could not be read"}}
			}
			page := h.formPage(ct, v, values, fieldErr.Fields)
			page.Phase = models.PhaseIdle
			renderPage(w, h.log, http.StatusUnprocessableEntity, "view", page)
			return
		}

		if v.Controller.Start(r.Context(), req) {
			v.Remember(req)
		} else {
			h.log.WithField("view_id", v.ID).Info("Submit ignored, request already in flight")
		}

		http.Redirect(w, r, "/views/"+v.ID, http.StatusSeeOther)
	}
}

func (h *SummarizeHandler) parse(w http.ResponseWriter, r *http.Request, kind models.Modality, userID string) (map[string]string, models.SubmissionRequest, error) {
	values := map[string]string{}

	if kind == models.ModalityPDF {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return values, models.SubmissionRequest{}, &adapters.ValidationError{
					Fields: map[string]string{"file": adapters.FileTooLargeMessage},
				}
			}
			if !errors.Is(err, http.ErrNotMultipart) {
				return values, models.SubmissionRequest{}, err
			}
		}
	} else if err := r.ParseForm(); err != nil {
		return values, models.SubmissionRequest{}, err
	}

	for _, key := range []string{"view_id", "language", "article_url", "text", "video_url"} {
		values[key] = r.FormValue(key)
	}

	common := adapters.Common{UserID: userID, Language: values["language"]}

	var (
		req models.SubmissionRequest
		err error
	)
	switch kind {
	case models.ModalityArticle:
		req, err = adapters.Article(common, values["article_url"])
	case models.ModalityText:
		req, err = adapters.Text(common, values["text"])
	case models.ModalityVideo:
		req, err = adapters.Video(common, values["video_url"])
	case models.ModalityPDF:
		var f adapters.File
		f, err = uploadedFile(r)
		if err == nil {
			req, err = adapters.PDF(common, f)
		}
	}
	return values, req, err
}

func uploadedFile(r *http.Request) (adapters.File, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return adapters.File{}, &adapters.ValidationError{
			Fields: map[string]string{"file": adapters.FileRequiredMessage},
		}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return adapters.File{}, err
	}

	return adapters.File{
		Name:     header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Data:     data,
	}, nil
}

// View renders the current state of a view.
func (h *SummarizeHandler) View(w http.ResponseWriter, r *http.Request) {
	v, ok := h.ownedView(r)
	if !ok {
		renderNotFound(w, h.log, "This summary has expired or never existed.")
		return
	}
	ct, _ := contentTypeFor(v.Modality)

	page := h.formPage(ct, v, nil, nil)
	source, language := v.Input()
	if language != "" {
		page.Language = language
	}

	switch st := v.Controller.State().(type) {
	case models.Submitting:
		page.Source = source
		page.Watch = true
	case models.Succeeded:
		pv := presenter.NewView(v.Modality, st)
		pv.Copied = v.Notice.Copied()
		pv.ExportURL = "/views/" + v.ID + "/export"
		pv.CopyURL = "/views/" + v.ID + "/copy"
		html, err := presenter.RenderHTML(pv)
		if err != nil {
			h.log.WithError(err).WithField("view_id", v.ID).Error("Failed to render summary")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		page.Summary = html
		page.Watch = true
	case models.Failed:
		page.RequestError = st.Message
	}
	if stats, ok := v.Stats(); ok {
		page.Stats = &stats
	}

	renderPage(w, h.log, http.StatusOK, "view", page)
}

type stateResponse struct {
	ViewID   string          `json:"view_id"`
	Modality models.Modality `json:"modality"`
	Copied   bool            `json:"copied"`
	models.StateView
}

// State returns the view's state as JSON.
func (h *SummarizeHandler) State(w http.ResponseWriter, r *http.Request) {
	v, ok := h.ownedView(r)
	if !ok {
		handleServiceError(w, r, views.ErrNotFound)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{
		ViewID:    v.ID,
		Modality:  v.Modality,
		Copied:    v.Notice.Copied(),
		StateView: models.NewStateView(v.Controller.State()),
	})
}

// Export returns the Markdown export of a succeeded view.
func (h *SummarizeHandler) Export(w http.ResponseWriter, r *http.Request) {
	v, ok := h.ownedView(r)
	if !ok {
		handleServiceError(w, r, views.ErrNotFound)
		return
	}
	st, ok := v.Controller.State().(models.Succeeded)
	if !ok {
		handleServiceError(w, r, errNotReady)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="summary.md"`)
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, presenter.ExportText(st.Record, h.now()))
}

// Copy acknowledges that the browser copied the export.
func (h *SummarizeHandler) Copy(w http.ResponseWriter, r *http.Request) {
	v, ok := h.ownedView(r)
	if !ok {
		handleServiceError(w, r, views.ErrNotFound)
		return
	}
	if _, ok := v.Controller.State().(models.Succeeded); !ok {
		handleServiceError(w, r, errNotReady)
		return
	}

	v.RecordCopy()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"copied":     true,
		"revert_ms":  presenter.CopiedFor.Milliseconds(),
		"view_id":    v.ID,
		"copy_count": v.Copies(),
	})
}

// ownedView hides views that belong to another visitor.
func (h *SummarizeHandler) ownedView(r *http.Request) (*views.View, bool) {
	v, err := h.views.Get(chi.URLParam(r, "id"))
	if err != nil {
		return nil, false
	}
	if v.Owner != middleware.GetUserID(r.Context()) {
		return nil, false
	}
	return v, true
}

func (h *SummarizeHandler) formPage(ct ContentType, v *views.View, values, fieldErrors map[string]string) viewPage {
	page := viewPage{
		Page:         newPage(ct.Title, ct.Path),
		Type:         ct,
		ViewID:       v.ID,
		Phase:        models.PhaseIdle,
		Languages:    models.Languages,
		Language:     models.DefaultLanguage,
		Values:       values,
		Errors:       fieldErrors,
		MinTextChars: adapters.MinTextChars,
	}
	if st := v.Controller.State(); st.Phase() != models.PhaseIdle {
		page.Phase = st.Phase()
	}
	if lang := strings.TrimSpace(values["language"]); lang != "" {
		page.Language = lang
	}
	if ct.Kind == models.ModalityText && strings.TrimSpace(values["text"]) != "" {
		stats := adapters.StatsOf(values["text"])
		page.Stats = &stats
	}
	return page
}
