package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// SystemHandler serves health and runtime configuration.
type SystemHandler struct {
	apiURL  string
	started time.Time
	views   func() int
	log     *logrus.Logger
}

func NewSystemHandler(apiURL string, liveViews func() int, log *logrus.Logger) *SystemHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SystemHandler{apiURL: apiURL, started: time.Now(), views: liveViews, log: log}
}

func (h *SystemHandler) Home(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.log, http.StatusOK, "home", newPage("Home", "home"))
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}
	if h.views != nil {
		resp["views"] = h.views()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ConfigJS exposes the backend base URL to browser scripts.
func (h *SystemHandler) ConfigJS(w http.ResponseWriter, r *http.Request) {
	encoded, err := json.Marshal(h.apiURL)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	fmt.Fprintf(w, "window.__API_URL__ = %s;\n", encoded)
}

func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderNotFound(w, h.log, "The page you were looking for does not exist.")
}
