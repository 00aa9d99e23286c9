package adapters

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-summarizer-web/internal/models"
)

var common = Common{UserID: "demo-user", Language: "French"}

func TestText_RejectsShortTrimmedInput(t *testing.T) {
	tests := []struct {
		name string
		text string
		ok   bool
	}{
		{"empty", "", false},
		{"49 chars", strings.Repeat("a", 49), false},
		{"49 chars padded with spaces", "   " + strings.Repeat("a", 49) + "\n\t ", false},
		{"exactly 50", strings.Repeat("a", 50), true},
		{"50 multibyte runes", strings.Repeat("é", 50), true},
		{"long", strings.Repeat("word ", 20), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := Text(common, tc.text)
			if !tc.ok {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Contains(t, verr.Fields, "text")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.ModalityText, req.Kind)
			assert.Equal(t, tc.text, req.Text)
			assert.Equal(t, "French", req.Language)
			assert.Equal(t, "demo-user", req.UserID)
		})
	}
}

func TestStatsOf(t *testing.T) {
	stats := StatsOf("  hello   wörld\n\tagain ")
	assert.Equal(t, 3, stats.Words)
	assert.Equal(t, 23, stats.Chars)

	assert.Equal(t, TextStats{}, StatsOf(""))
}

func TestArticleAndVideo_RequireNonEmptyURL(t *testing.T) {
	_, err := Article(common, "   ")
	require.Error(t, err)

	req, err := Article(common, " not-even-a-url ")
	require.NoError(t, err)
	assert.Equal(t, "not-even-a-url", req.ArticleURL)

	_, err = Video(common, "")
	require.Error(t, err)

	req, err = Video(common, "https://example.com/not-youtube")
	require.NoError(t, err)
	assert.Equal(t, models.ModalityVideo, req.Kind)
	assert.Equal(t, "https://example.com/not-youtube", req.VideoURL)
}

func TestCommon_DefaultsLanguageAndRequiresUser(t *testing.T) {
	req, err := Article(Common{UserID: "u1"}, "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultLanguage, req.Language)

	_, err = Article(Common{Language: "German"}, "https://example.com")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "user_id")
}

func TestPDF_RejectsWrongTypeAndOversize(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"wrong mime", File{Name: "a.txt", MIMEType: "text/plain", Data: []byte("hello")}},
		{"one byte over limit", File{Name: "a.pdf", MIMEType: PDFMimeType, Size: MaxPDFBytes + 1, Data: []byte("%PDF-1.4")}},
		{"no content", File{Name: "a.pdf", MIMEType: PDFMimeType}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PDF(common, tc.file)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, "file")
		})
	}
}

func TestPDF_AcceptsLimitSize(t *testing.T) {
	_, err := PDF(common, File{Name: "a.pdf", MIMEType: PDFMimeType, Size: MaxPDFBytes, Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
}

func TestPDF_SizeLimitFromContent(t *testing.T) {
	atLimit := make([]byte, MaxPDFBytes)
	copy(atLimit, "%PDF-1.4")
	overLimit := append(atLimit, 0)
	encoded := func(b []byte) string {
		return "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(b)
	}

	tests := []struct {
		name    string
		file    File
		wantErr bool
	}{
		{"raw bytes at limit", File{MIMEType: PDFMimeType, Data: atLimit}, false},
		{"raw bytes over limit", File{MIMEType: PDFMimeType, Data: overLimit}, true},
		{"data URL at limit", File{MIMEType: PDFMimeType, Encoded: encoded(atLimit)}, false},
		{"data URL over limit", File{MIMEType: PDFMimeType, Encoded: encoded(overLimit)}, true},
		{"data URL one byte short", File{MIMEType: PDFMimeType, Encoded: encoded(atLimit[:MaxPDFBytes-1])}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PDF(common, tt.file)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, FileTooLargeMessage, ve.Fields["file"])
		})
	}
}

func TestDecodedSize(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3, 4, 5} {
		payload := base64.StdEncoding.EncodeToString(make([]byte, n))
		assert.EqualValues(t, n, decodedSize(payload), "length %d", n)
	}
}

func TestPDF_Base64RoundTrip(t *testing.T) {
	data := []byte("%PDF-1.7\n\x00\x01\x02\xff binary body \xfe")

	req, err := PDF(common, File{Name: "report.pdf", MIMEType: PDFMimeType, Data: data})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", req.Filename)
	assert.False(t, strings.HasPrefix(req.PDFBase64, "data:"))

	decoded, err := base64.StdEncoding.DecodeString(req.PDFBase64)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestPDF_StripsDataURLPrefix(t *testing.T) {
	data := []byte("%PDF-1.4 tiny")
	encoded := base64.StdEncoding.EncodeToString(data)

	req, err := PDF(common, File{
		Name:     "tiny.pdf",
		MIMEType: PDFMimeType,
		Encoded:  "data:application/pdf;base64," + encoded,
	})
	require.NoError(t, err)
	assert.Equal(t, encoded, req.PDFBase64)

	decoded, err := base64.StdEncoding.DecodeString(req.PDFBase64)
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestPDF_SniffsMissingMIMEType(t *testing.T) {
	_, err := PDF(common, File{Name: "scan.pdf", Data: []byte("%PDF-1.5\n%âãÏÓ\n1 0 obj\n")})
	require.NoError(t, err)

	_, err = PDF(common, File{Name: "notes.pdf", Data: []byte("just some text")})
	require.Error(t, err)
}

func TestSubmissionRequest_MarshalsDocumentedBody(t *testing.T) {
	req, err := PDF(common, File{Name: "a.pdf", MIMEType: PDFMimeType, Data: []byte("%PDF")})
	require.NoError(t, err)

	body, err := json.Marshal(req)
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, map[string]string{
		"pdfBase64": base64.StdEncoding.EncodeToString([]byte("%PDF")),
		"filename":  "a.pdf",
		"userId":    "demo-user",
		"language":  "French",
	}, got)
}
