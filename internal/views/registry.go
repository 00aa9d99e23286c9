// Package views keeps the per-view controllers of the web front end. Each
// form page gets its own view so a slow request on one page never blocks
// another.
package views

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/adapters"
	"content-summarizer-web/internal/lifecycle"
	"content-summarizer-web/internal/models"
	"content-summarizer-web/internal/presenter"
)

var ErrNotFound = errors.New("view not found")

// Publisher delivers realtime messages to whoever watches a view.
type Publisher interface {
	Publish(viewID string, msg models.WSMessage)
}

// View is one page's lifecycle controller plus what the page last submitted.
type View struct {
	ID         string
	Modality   models.Modality
	Owner      string
	CreatedAt  time.Time
	Controller *lifecycle.Controller
	Notice     *presenter.CopyNotice

	mu     sync.Mutex
	input  string
	stats  *adapters.TextStats
	lang   string
	copies int
}

// Remember records the source and language of the latest submission.
func (v *View) Remember(req models.SubmissionRequest) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = req.Source()
	v.lang = req.Language
	v.stats = nil
	if req.Kind == models.ModalityText {
		s := adapters.StatsOf(req.Text)
		v.stats = &s
	}
}

// Input returns the last submitted source and language.
func (v *View) Input() (source, language string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input, v.lang
}

// Stats returns the word and character counts of the last submitted text.
func (v *View) Stats() (adapters.TextStats, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stats == nil {
		return adapters.TextStats{}, false
	}
	return *v.stats, true
}

// RecordCopy acknowledges a copy of the export.
func (v *View) RecordCopy() {
	v.mu.Lock()
	v.copies++
	v.mu.Unlock()
	v.Notice.Mark()
}

// Copies returns how many copies were acknowledged.
func (v *View) Copies() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.copies
}

// Registry holds live views with a sliding expiry.
type Registry struct {
	cache  *cache.Cache
	client lifecycle.Summarizer
	pub    Publisher
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRegistry(client lifecycle.Summarizer, pub Publisher, ttl time.Duration, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cleanup := ttl / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}

	c := cache.New(ttl, cleanup)
	c.OnEvicted(func(id string, item interface{}) {
		if v, ok := item.(*View); ok {
			v.Notice.Close()
		}
		log.WithFields(logrus.Fields{"view_id": id}).Debug("View expired")
	})

	return &Registry{cache: c, client: client, pub: pub, ttl: ttl, log: log}
}

// Create starts an Idle view of modality m owned by owner.
func (r *Registry) Create(m models.Modality, owner string) *View {
	id := uuid.New().String()
	v := &View{
		ID:         id,
		Modality:   m,
		Owner:      owner,
		CreatedAt:  time.Now().UTC(),
		Controller: lifecycle.NewController(r.client, r.log),
	}
	v.Notice = presenter.NewCopyNotice(func(copied bool) {
		r.publish(id, models.WSMessage{
			Type:    models.WSTypeCopied,
			Payload: models.CopyEvent{ViewID: id, Copied: copied},
		})
	})
	v.Controller.Subscribe(func(st models.RequestState) {
		r.publish(id, models.WSMessage{
			Type:    models.WSTypeState,
			Payload: models.StateEvent{ViewID: id, State: models.NewStateView(st)},
		})
	})

	r.cache.Set(id, v, cache.DefaultExpiration)
	r.log.WithFields(logrus.Fields{
		"view_id":  id,
		"modality": m,
		"owner":    owner,
	}).Debug("View created")
	return v
}

// Get returns a live view and extends its expiry.
func (r *Registry) Get(id string) (*View, error) {
	item, found := r.cache.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	v, ok := item.(*View)
	if !ok {
		return nil, ErrNotFound
	}
	r.cache.Set(id, v, cache.DefaultExpiration)
	return v, nil
}

// Watch reports a view's owner and its current state as a realtime message.
func (r *Registry) Watch(id string) (string, models.WSMessage, bool) {
	v, err := r.Get(id)
	if err != nil {
		return "", models.WSMessage{}, false
	}
	return v.Owner, models.WSMessage{
		Type:    models.WSTypeState,
		Payload: models.StateEvent{ViewID: id, State: models.NewStateView(v.Controller.State())},
	}, true
}

// Count returns the number of live views, expired ones included until the
// next cleanup.
func (r *Registry) Count() int {
	return r.cache.ItemCount()
}

// Flush drops every view.
func (r *Registry) Flush() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}

func (r *Registry) publish(id string, msg models.WSMessage) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(id, msg)
}
