package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-summarizer-web/internal/adapters"
	"content-summarizer-web/internal/config"
	"content-summarizer-web/internal/models"
	"content-summarizer-web/internal/presenter"
)

var fixedNow = time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC)

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCommand(func() time.Time { return fixedNow })
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--no-color"))

	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// fakeBackend records the last request body and answers every route with reply.
type fakeBackend struct {
	*httptest.Server
	calls atomic.Int32
	path  atomic.Value
	body  atomic.Value
}

func newFakeBackend(t *testing.T, status int, reply string) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.calls.Add(1)
		fb.path.Store(r.URL.EscapedPath())
		data, _ := io.ReadAll(r.Body)
		fb.body.Store(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, reply)
	}))
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) lastBody(t *testing.T) map[string]string {
	t.Helper()
	raw, ok := fb.body.Load().([]byte)
	require.True(t, ok, "backend was not called")
	var m map[string]string
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

const articleReply = `{
	"summary": {
		"executive_summary": "Go ships a new release.",
		"key_topics": ["generics", "tooling"],
		"main_takeaways": ["upgrade soon"]
	},
	"title": "Go 1.24 is out",
	"author": "The Go Team",
	"language": "English"
}`

func TestArticle_PrintsExport(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, articleReply)

	res := run(t, "", "article", "https://go.dev/blog/go1.24", "--api-url", fb.URL, "--user", "u1")
	require.NoError(t, res.err)

	assert.Equal(t, "/summarize-article", fb.path.Load())
	assert.Equal(t, map[string]string{
		"articleUrl": "https://go.dev/blog/go1.24",
		"userId":     "u1",
		"language":   "English",
	}, fb.lastBody(t))

	want := presenter.ExportText(models.SummaryRecord{
		ExecutiveSummary: "Go ships a new release.",
		KeyTopics:        []string{"generics", "tooling"},
		MainTakeaways:    []string{"upgrade soon"},
	}, fixedNow)
	assert.Equal(t, want, res.stdout)
	assert.Contains(t, res.stdout, "## Action Items\nNone\n")
	assert.Contains(t, res.stderr, "Go 1.24 is out")
	assert.Contains(t, res.stderr, "By The Go Team • Summary in English")
	assert.Equal(t, ExitOK, ExitCode(res.err))
}

func TestArticle_JSON(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, articleReply)

	res := run(t, "", "article", "https://go.dev/blog/go1.24", "--api-url", fb.URL, "--user", "u1", "--json")
	require.NoError(t, res.err)

	var view models.StateView
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &view))
	assert.Equal(t, models.PhaseSucceeded, view.Phase)
	require.NotNil(t, view.Summary)
	assert.Equal(t, []string{}, view.Summary.ActionItems)
	require.NotNil(t, view.Metadata)
	assert.Equal(t, "Go 1.24 is out", view.Metadata.Title)
}

func TestArticle_BackendErrorExitsOne(t *testing.T) {
	fb := newFakeBackend(t, http.StatusNotFound, `{"error":"Article not found"}`)

	res := run(t, "", "article", "https://example.com/missing", "--api-url", fb.URL, "--user", "u1")
	require.ErrorIs(t, res.err, ErrFailed)

	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "Error: Article not found")
	assert.Equal(t, ExitFailure, ExitCode(res.err))
	assert.True(t, Reported(res.err))
}

func TestArticle_DefaultUser(t *testing.T) {
	t.Setenv("USER_ID", "")
	os.Unsetenv("USER_ID")
	fb := newFakeBackend(t, http.StatusOK, articleReply)

	res := run(t, "", "article", "https://example.com", "--api-url", fb.URL)
	require.NoError(t, res.err)
	assert.Equal(t, config.DefaultClientUserID, fb.lastBody(t)["userId"])
}

func TestArticle_BlankUserIsValidationError(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, articleReply)

	res := run(t, "", "article", "https://example.com", "--api-url", fb.URL, "--user", "  ")
	require.Error(t, res.err)

	assert.Equal(t, ExitValidation, ExitCode(res.err))
	assert.Contains(t, res.stderr, "User ID is required")
	assert.Zero(t, fb.calls.Load())
}

func TestText_FromStdin(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, `{"summary":{"executive_summary":"Short."},"word_count":12,"char_count":64}`)
	text := "  The quick brown fox jumps over the lazy dog near the river bank.  "

	res := run(t, text, "text", "--api-url", fb.URL, "--user", "u1", "--language", "French")
	require.NoError(t, res.err)

	assert.Equal(t, "/summarize-text", fb.path.Load())
	body := fb.lastBody(t)
	assert.Equal(t, text, body["text"])
	assert.Equal(t, "French", body["language"])
	assert.Contains(t, res.stderr, "Analyzed 12 words (64 characters)")
	assert.Contains(t, res.stdout, "## Executive Summary\nShort.\n")
}

func TestText_FromFile(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, `{"summary":{"executive_summary":"From file."}}`)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("word ", 20)), 0o600))

	res := run(t, "ignored stdin", "text", "--file", path, "--api-url", fb.URL, "--user", "u1")
	require.NoError(t, res.err)
	assert.Equal(t, strings.Repeat("word ", 20), fb.lastBody(t)["text"])
}

func TestText_TooShort(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, `{}`)

	res := run(t, strings.Repeat("a", 49)+"      ", "text", "--api-url", fb.URL, "--user", "u1")
	require.Error(t, res.err)

	var ve *adapters.ValidationError
	require.ErrorAs(t, res.err, &ve)
	assert.Equal(t, ExitValidation, ExitCode(res.err))
	assert.Contains(t, res.stderr, "Text must be at least 50 characters")
	assert.Zero(t, fb.calls.Load())
}

func TestPDF_SendsBase64(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, `{"summary":{"executive_summary":"A report."},"filename":"report.pdf","pages":3}`)
	content := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	res := run(t, "", "pdf", path, "--api-url", fb.URL, "--user", "u1")
	require.NoError(t, res.err)

	assert.Equal(t, "/summarize-pdf", fb.path.Load())
	body := fb.lastBody(t)
	assert.Equal(t, "report.pdf", body["filename"])
	decoded, err := base64.StdEncoding.DecodeString(body["pdfBase64"])
	require.NoError(t, err)
	assert.Equal(t, content, decoded)
	assert.Contains(t, res.stderr, "report.pdf • 3 pages")
}

func TestPDF_RejectsOtherTypes(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, `{}`)
	path := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just some plain text, not a document"), 0o600))

	res := run(t, "", "pdf", path, "--api-url", fb.URL, "--user", "u1")
	assert.Equal(t, ExitValidation, ExitCode(res.err))
	assert.Contains(t, res.stderr, adapters.FileTypeMessage)
	assert.Zero(t, fb.calls.Load())
}

func TestPDF_MissingFile(t *testing.T) {
	res := run(t, "", "pdf", filepath.Join(t.TempDir(), "nope.pdf"), "--user", "u1")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, ExitCode(res.err))
	assert.False(t, Reported(res.err))
}

func TestVideo_UsesSummarizeRoute(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, `{"summary":{"summary":{"executive_summary":"Talk."}},"title":"GopherCon","duration":930}`)

	res := run(t, "", "video", "https://youtu.be/abc", "--api-url", fb.URL, "--user", "u1")
	require.NoError(t, res.err)

	assert.Equal(t, "/summarize", fb.path.Load())
	assert.Equal(t, "https://youtu.be/abc", fb.lastBody(t)["videoUrl"])
	assert.Contains(t, res.stdout, "Talk.")
	assert.Contains(t, res.stderr, "15 min")
}

func TestHistory_Table(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, `{"history":[
		{"id":"1","createdAt":"2024-05-01T10:30:00","summary":{"executive_summary":"First video"},"videoUrl":"https://youtu.be/one","duration":125},
		{"id":"2","createdAt":"2024-05-02T08:00:00","summary":{"executive_summary":"Second article"},"sourceUrl":"https://example.com/two"}
	]}`)

	res := run(t, "", "history", "--api-url", fb.URL, "--user", "u 1")
	require.NoError(t, res.err)

	assert.Equal(t, "/history/u%201", fb.path.Load())
	assert.Contains(t, res.stdout, "First video...")
	assert.Contains(t, res.stdout, "2 min")
	assert.Contains(t, res.stdout, "https://youtu.be/one")
	assert.Contains(t, res.stdout, "https://example.com/two")
}

func TestHistory_Empty(t *testing.T) {
	fb := newFakeBackend(t, http.StatusOK, `{"history":[]}`)

	res := run(t, "", "history", "--api-url", fb.URL, "--user", "u1")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "No history yet. Summarize your first video!")
}

func TestHistory_Error(t *testing.T) {
	fb := newFakeBackend(t, http.StatusInternalServerError, `{"error":"database offline"}`)

	res := run(t, "", "history", "--api-url", fb.URL, "--user", "u1", "--json")
	require.ErrorIs(t, res.err, ErrFailed)

	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &view))
	assert.Equal(t, "error", view["status"])
	assert.Equal(t, "database offline", view["error"])
	assert.Contains(t, res.stderr, "database offline")
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown command", []string{"bogus"}},
		{"unknown flag", []string{"article", "--nope", "x"}},
		{"missing argument", []string{"article"}},
		{"extra argument", []string{"video", "a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, ExitValidation, ExitCode(res.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(ErrFailed))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitValidation, ExitCode(fmt.Errorf("wrapped: %w", &adapters.ValidationError{Fields: map[string]string{"a": "b"}})))
}

func TestPrinter_ExportWithoutColorIsVerbatim(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, io.Discard, false)

	text := presenter.ExportText(models.SummaryRecord{ExecutiveSummary: "x"}, fixedNow)
	p.Export(text)
	assert.Equal(t, text, out.String())
}

func TestPrinter_ExportWithColorKeepsText(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, io.Discard, true)

	p.Export("# Content Summary\n\nbody\n")
	assert.Contains(t, out.String(), "\x1b[")
	assert.Contains(t, out.String(), "Content Summary")
	assert.Contains(t, out.String(), "body\n")
}
