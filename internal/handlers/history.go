package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/history"
	"content-summarizer-web/internal/middleware"
)

type historyLoader interface {
	Load(ctx context.Context, userID string) history.View
}

type HistoryHandler struct {
	reader historyLoader
	log    *logrus.Logger
}

func NewHistoryHandler(reader historyLoader, log *logrus.Logger) *HistoryHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HistoryHandler{reader: reader, log: log}
}

type historyPage struct {
	Page
	History      history.View
	EmptyMessage string
}

// List renders the visitor's history. Each page load is one mount and one
// backend read.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	v := h.reader.Load(r.Context(), middleware.GetUserID(r.Context()))

	if r.URL.Query().Get("format") == "json" {
		status := http.StatusOK
		if v.Status == history.StatusError {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, v)
		return
	}

	renderPage(w, h.log, http.StatusOK, "history", historyPage{
		Page:         newPage("History", "history"),
		History:      v,
		EmptyMessage: history.EmptyMessage,
	})
}
