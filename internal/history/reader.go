// Package history loads a user's prior summaries from the backend and
// prepares them for display. It never computes history itself.
package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"content-summarizer-web/internal/backend"
	"content-summarizer-web/internal/models"
	"content-summarizer-web/internal/presenter"
)

const (
	FallbackMessage = "Failed to fetch history"
	EmptyMessage    = "No history yet. Summarize your first video!"

	excerptLength = 100
	timeLayout    = "1/2/2006, 3:04:05 PM"
)

// Status is the load state of a history panel.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusLoaded  Status = "loaded"
)

// View is one mount of the history panel.
type View struct {
	Status  Status `json:"status"`
	Error   string `json:"error,omitempty"`
	Entries []Item `json:"entries"`
}

// Empty reports whether a successful load returned nothing.
func (v View) Empty() bool {
	return v.Status == StatusLoaded && len(v.Entries) == 0
}

// Item is a history entry prepared for display.
type Item struct {
	ID      string `json:"id"`
	When    string `json:"when"`
	Excerpt string `json:"excerpt"`
	Minutes int    `json:"minutes"`
	Link    string `json:"link,omitempty"`
}

// Fetcher reads a user's history from the backend.
type Fetcher interface {
	History(ctx context.Context, userID string) ([]models.HistoryEntry, error)
}

// Reader loads history once per mount. Concurrent loads for the same user
// share one backend request.
type Reader struct {
	fetcher  Fetcher
	group    singleflight.Group
	location *time.Location
	log      *logrus.Logger
}

func NewReader(fetcher Fetcher, loc *time.Location, log *logrus.Logger) *Reader {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reader{fetcher: fetcher, location: loc, log: log}
}

// Loading is the state a panel shows before Load returns.
func Loading() View {
	return View{Status: StatusLoading}
}

// Load fetches userID's history and returns the settled view.
func (r *Reader) Load(ctx context.Context, userID string) View {
	// The shared fetch must not end when the first caller goes away.
	ch := r.group.DoChan(userID, func() (interface{}, error) {
		return r.fetcher.History(context.WithoutCancel(ctx), userID)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = singleflight.Result{Err: ctx.Err()}
	}

	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"user_id": userID,
			"shared":  shared,
		}).WithError(err).Warn("History fetch failed")
		return View{Status: StatusError, Error: errorMessage(err)}
	}

	entries := v.([]models.HistoryEntry)
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, r.item(e))
	}
	return View{Status: StatusLoaded, Entries: items}
}

func (r *Reader) item(e models.HistoryEntry) Item {
	return Item{
		ID:      e.ID,
		When:    r.when(e),
		Excerpt: Excerpt(e),
		Minutes: presenter.Minutes(e.Duration),
		Link:    e.Link(),
	}
}

func (r *Reader) when(e models.HistoryEntry) string {
	t, ok := e.Created()
	if !ok {
		return e.CreatedAt
	}
	return t.In(r.location).Format(timeLayout)
}

// Excerpt is the first 100 characters of the executive summary followed by
// an ellipsis.
func Excerpt(e models.HistoryEntry) string {
	var s string
	if e.Summary != nil {
		s = e.Summary.ExecutiveSummary
	}
	runes := []rune(s)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return string(runes) + "..."
}

func errorMessage(err error) string {
	var be *backend.BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	var te *backend.TransportError
	if errors.As(err, &te) && te.Err != nil {
		if msg := strings.TrimSpace(te.Err.Error()); msg != "" {
			return msg
		}
	}
	return FallbackMessage
}
