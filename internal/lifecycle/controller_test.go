package lifecycle

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-summarizer-web/internal/backend"
	"content-summarizer-web/internal/models"
)

type stubSummarizer struct {
	calls atomic.Int32
	gate  chan struct{}
	body  []byte
	err   error
}

func (s *stubSummarizer) Summarize(ctx context.Context, _ models.SubmissionRequest) ([]byte, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.body, s.err
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func articleRequest() models.SubmissionRequest {
	return models.SubmissionRequest{
		Kind:       models.ModalityArticle,
		UserID:     "u1",
		Language:   "English",
		ArticleURL: "https://example.com/a",
	}
}

func TestController_StartsIdle(t *testing.T) {
	c := NewController(&stubSummarizer{}, quietLogger())
	assert.Equal(t, models.Idle{}, c.State())

	st, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Idle{}, st)
}

func TestController_Submit_Succeeds(t *testing.T) {
	stub := &stubSummarizer{body: []byte(`{"title": "T", "summary": {"executive_summary": "E", "key_topics": ["k"]}}`)}
	c := NewController(stub, quietLogger())

	var seen []models.Phase
	c.Subscribe(func(s models.RequestState) { seen = append(seen, s.Phase()) })

	st, ok := c.Submit(context.Background(), articleRequest())
	require.True(t, ok)

	succeeded, isSucceeded := st.(models.Succeeded)
	require.True(t, isSucceeded, "got %#v", st)
	assert.Equal(t, "E", succeeded.Record.ExecutiveSummary)
	assert.Equal(t, []string{"k"}, succeeded.Record.KeyTopics)
	assert.Equal(t, "T", succeeded.Metadata.Title)
	assert.Equal(t, []models.Phase{models.PhaseSubmitting, models.PhaseSucceeded}, seen)
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestController_SecondSubmitWhileSubmittingIsIgnored(t *testing.T) {
	stub := &stubSummarizer{
		gate: make(chan struct{}),
		body: []byte(`{"summary": {"executive_summary": "E"}}`),
	}
	c := NewController(stub, quietLogger())

	require.True(t, c.Start(context.Background(), articleRequest()))
	assert.Equal(t, models.Submitting{}, c.State())

	st, ok := c.Submit(context.Background(), articleRequest())
	assert.False(t, ok)
	assert.Equal(t, models.Submitting{}, st)
	assert.False(t, c.Start(context.Background(), articleRequest()))

	close(stub.gate)
	st, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PhaseSucceeded, st.Phase())
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestController_ConcurrentSubmitsIssueOneRequest(t *testing.T) {
	stub := &stubSummarizer{
		gate: make(chan struct{}),
		body: []byte(`{"summary": {"executive_summary": "E"}}`),
	}
	c := NewController(stub, quietLogger())

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Start(context.Background(), articleRequest()) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()
	close(stub.gate)

	_, err := c.Wait(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, accepted.Load())
	assert.EqualValues(t, 1, stub.calls.Load())
}

func TestController_BackendErrorMessageIsShownVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Article not found"}`))
	}))
	defer srv.Close()

	c := NewController(backend.NewClient(srv.URL, quietLogger()), quietLogger())
	st, ok := c.Submit(context.Background(), articleRequest())
	require.True(t, ok)
	assert.Equal(t, models.Failed{Message: "Article not found"}, st)
}

func TestController_FailureMessages(t *testing.T) {
	tests := []struct {
		name string
		stub *stubSummarizer
		want string
	}{
		{
			name: "backend fallback",
			stub: &stubSummarizer{err: &backend.BackendError{StatusCode: 500, Message: "Failed to summarize PDF"}},
			want: "Failed to summarize PDF",
		},
		{
			name: "transport",
			stub: &stubSummarizer{err: &backend.TransportError{Err: errors.New("connection refused")}},
			want: "connection refused",
		},
		{
			name: "transport without cause",
			stub: &stubSummarizer{err: &backend.TransportError{Err: errors.New("")}},
			want: genericFailureMessage,
		},
		{
			name: "unexpected error",
			stub: &stubSummarizer{err: errors.New("boom")},
			want: genericFailureMessage,
		},
		{
			name: "missing summary",
			stub: &stubSummarizer{body: []byte(`{"title": "x"}`)},
			want: invalidResponseMessage,
		},
		{
			name: "not json",
			stub: &stubSummarizer{body: []byte(`<html></html>`)},
			want: invalidResponseMessage,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController(tc.stub, quietLogger())
			st, ok := c.Submit(context.Background(), articleRequest())
			require.True(t, ok)
			assert.Equal(t, models.Failed{Message: tc.want}, st)
		})
	}
}

func TestController_ResubmitAfterFailureClearsResult(t *testing.T) {
	stub := &stubSummarizer{err: &backend.BackendError{StatusCode: 502, Message: "Bad gateway"}}
	c := NewController(stub, quietLogger())

	st, _ := c.Submit(context.Background(), articleRequest())
	assert.Equal(t, models.PhaseFailed, st.Phase())

	stub.err = nil
	stub.body = []byte(`{"summary": {"executive_summary": "again"}}`)

	var seen []models.RequestState
	c.Subscribe(func(s models.RequestState) { seen = append(seen, s) })

	st, ok := c.Submit(context.Background(), articleRequest())
	require.True(t, ok)
	assert.Equal(t, models.PhaseSucceeded, st.Phase())
	require.Len(t, seen, 2)
	assert.Equal(t, models.Submitting{}, seen[0])
}

func TestController_StartSurvivesCallerCancellation(t *testing.T) {
	stub := &stubSummarizer{
		gate: make(chan struct{}),
		body: []byte(`{"summary": {"executive_summary": "E"}}`),
	}
	c := NewController(stub, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, c.Start(ctx, articleRequest()))
	cancel()

	close(stub.gate)
	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	st, err := c.Wait(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseSucceeded, st.Phase())
}

func TestController_WaitHonoursContext(t *testing.T) {
	stub := &stubSummarizer{gate: make(chan struct{})}
	c := NewController(stub, quietLogger())
	require.True(t, c.Start(context.Background(), articleRequest()))
	defer close(stub.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st, err := c.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, models.Submitting{}, st)
}
