package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"content-summarizer-web/internal/models"
)

// Summarizer is the backend call the pool guards.
type Summarizer interface {
	Summarize(ctx context.Context, req models.SubmissionRequest) ([]byte, error)
}

// Pool caps how many summary requests run against the backend at once and
// lets shutdown wait for the ones in flight.
type Pool struct {
	next        Summarizer
	log         *logrus.Logger
	slots       chan struct{}
	workerCount int

	wg      sync.WaitGroup
	waiting atomic.Int32
}

func NewPool(next Summarizer, workerCount int, log *logrus.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("workers", workerCount).Info("Summary worker slots ready")
	return &Pool{
		next:        next,
		log:         log,
		slots:       make(chan struct{}, workerCount),
		workerCount: workerCount,
	}
}

// Summarize waits for a free slot, then forwards to the backend.
func (p *Pool) Summarize(ctx context.Context, req models.SubmissionRequest) ([]byte, error) {
	p.wg.Add(1)
	defer p.wg.Done()

	select {
	case p.slots <- struct{}{}:
	default:
		p.waiting.Add(1)
		p.log.WithFields(logrus.Fields{
			"modality": req.Kind,
			"workers":  p.workerCount,
		}).Debug("All summary workers busy, queueing")

		select {
		case p.slots <- struct{}{}:
			p.waiting.Add(-1)
		case <-ctx.Done():
			p.waiting.Add(-1)
			return nil, ctx.Err()
		}
	}
	defer func() { <-p.slots }()

	return p.next.Summarize(ctx, req)
}

// Busy is the number of requests holding a slot.
func (p *Pool) Busy() int {
	return len(p.slots)
}

// Waiting is the number of requests queued for a slot.
func (p *Pool) Waiting() int {
	return int(p.waiting.Load())
}

// Stop waits for every request in flight, or until ctx is done.
func (p *Pool) Stop(ctx context.Context) error {
	start := time.Now()
	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		p.log.WithField("duration", time.Since(start).String()).Info("Summary workers drained")
		return nil
	case <-ctx.Done():
		p.log.WithFields(logrus.Fields{
			"busy":    p.Busy(),
			"waiting": p.Waiting(),
		}).Warn("Summary workers still running at shutdown")
		return ctx.Err()
	}
}
