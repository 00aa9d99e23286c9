// Package lifecycle drives one view's request through
// Idle -> Submitting -> Succeeded | Failed.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/backend"
	"content-summarizer-web/internal/models"
	"content-summarizer-web/internal/normalizer"
)

const (
	genericFailureMessage  = "An error occurred"
	invalidResponseMessage = "The summary service returned an unexpected response"
)

// Summarizer sends one submission and returns the raw 2xx body.
type Summarizer interface {
	Summarize(ctx context.Context, req models.SubmissionRequest) ([]byte, error)
}

// Listener observes every transition, in order. A listener must not submit
// on the controller that called it.
type Listener func(models.RequestState)

// Controller owns the request state of a single view. At most one request
// is outstanding at a time.
type Controller struct {
	client Summarizer
	log    *logrus.Logger

	// emitMu serialises transitions with their notifications so listeners
	// observe states in the order they were entered.
	emitMu sync.Mutex

	mu        sync.Mutex
	state     models.RequestState
	done      chan struct{}
	listeners []Listener
}

func NewController(client Summarizer, log *logrus.Logger) *Controller {
	if log == nil {
		log = logrus.StandardLogger()
	}
	done := make(chan struct{})
	close(done)
	return &Controller{
		client: client,
		log:    log,
		state:  models.Idle{},
		done:   done,
	}
}

// State returns the current state.
func (c *Controller) State() models.RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers l for all future transitions.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Submit runs req to completion. It returns false without contacting the
// backend when a request is already in flight.
func (c *Controller) Submit(ctx context.Context, req models.SubmissionRequest) (models.RequestState, bool) {
	if !c.begin() {
		return c.State(), false
	}
	return c.run(ctx, req), true
}

// Start enters Submitting and completes the request in the background. The
// request outlives ctx's cancellation but keeps its values.
func (c *Controller) Start(ctx context.Context, req models.SubmissionRequest) bool {
	if !c.begin() {
		return false
	}
	go c.run(context.WithoutCancel(ctx), req)
	return true
}

// Wait blocks until no request is in flight and returns the state reached.
func (c *Controller) Wait(ctx context.Context) (models.RequestState, error) {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	select {
	case <-done:
		return c.State(), nil
	case <-ctx.Done():
		return c.State(), ctx.Err()
	}
}

func (c *Controller) begin() bool {
	return c.transition(models.Submitting{}, func(current models.RequestState) bool {
		_, busy := current.(models.Submitting)
		return !busy
	})
}

func (c *Controller) run(ctx context.Context, req models.SubmissionRequest) models.RequestState {
	start := time.Now()
	fields := logrus.Fields{
		"modality": req.Kind,
		"user_id":  req.UserID,
		"language": req.Language,
	}

	var next models.RequestState
	body, err := c.client.Summarize(ctx, req)
	if err != nil {
		next = models.Failed{Message: failureMessage(err)}
		c.log.WithFields(fields).WithError(err).Warn("Summary request failed")
	} else if record, meta, nerr := normalizer.Normalize(body); nerr != nil {
		next = models.Failed{Message: invalidResponseMessage}
		c.log.WithFields(fields).WithError(nerr).Warn("Summary response could not be normalized")
	} else {
		next = models.Succeeded{Record: record, Metadata: meta}
	}

	c.transition(next, nil)
	c.log.WithFields(fields).WithFields(logrus.Fields{
		"phase":    next.Phase(),
		"duration": time.Since(start).String(),
	}).Info("Summary request finished")
	return next
}

// transition moves to next when allow accepts the current state.
func (c *Controller) transition(next models.RequestState, allow func(models.RequestState) bool) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if allow != nil && !allow(c.state) {
		c.mu.Unlock()
		return false
	}
	c.state = next
	if _, ok := next.(models.Submitting); ok {
		c.done = make(chan struct{})
	} else {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
	}
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return true
}

func failureMessage(err error) string {
	var be *backend.BackendError
	if errors.As(err, &be) {
		return be.Message
	}
	var te *backend.TransportError
	if errors.As(err, &te) && te.Err != nil {
		if msg := strings.TrimSpace(te.Err.Error()); msg != "" {
			return msg
		}
	}
	return genericFailureMessage
}
