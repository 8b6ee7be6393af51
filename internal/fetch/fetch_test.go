package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// localOptions lets tests reach httptest servers on loopback.
func localOptions() *Options {
	opts := DefaultOptions()
	opts.AllowPrivate = true
	return opts
}

func TestURL_Success(t *testing.T) {
	var gotAgent, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><body><h1>Go developer</h1></body></html>"))
	}))
	defer server.Close()

	opts := localOptions()
	opts.Headers = map[string]string{"Accept-Language": "ru"}

	result, err := URL(context.Background(), server.URL, opts)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Go developer</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", result.ContentType)
	assert.Equal(t, DefaultUserAgent, gotAgent)
	assert.Equal(t, "ru", gotHeader)
}

func TestURL_RejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"not-a-valid-url", "ftp://example.com/file", "file:///etc/passwd", "https://"} {
		t.Run(raw, func(t *testing.T) {
			_, err := URL(context.Background(), raw, nil)
			require.Error(t, err)

			var fetchErr *Error
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, "invalid URL", fetchErr.Message)
		})
	}
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, localOptions())
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 1000)))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, &Options{MaxBodyBytes: 100, AllowPrivate: true})
	require.NoError(t, err)
	assert.Len(t, result.HTML, 100)
}

func TestURL_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, &Options{Timeout: 50 * time.Millisecond, AllowPrivate: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP request failed")
}

func TestExtractMainText_WithMainElement(t *testing.T) {
	html := `
	<html>
		<body>
			<nav>Navigation</nav>
			<main>
				<h1>Backend engineer</h1>
				<p>We build payment services.</p>
			</main>
			<footer>Footer</footer>
		</body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Contains(t, text, "Backend engineer")
	assert.Contains(t, text, "payment services")
	assert.NotContains(t, text, "Navigation")
	assert.NotContains(t, text, "Footer")
}

func TestExtractMainText_FallbackToBody(t *testing.T) {
	text, err := ExtractMainText(`<html><body><div>Some content here.</div></body></html>`, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Some content here.", text)
}

func TestExtractMainText_KeepsLabelsOnTheirOwnLines(t *testing.T) {
	html := `
	<html><body>
		<div class="vacancy-description">
			<p><b>Position:</b> Go developer</p><p><b>Salary:</b> 300k</p>
			Company: Acme<br>City: Berlin
		</div>
	</body></html>`

	text, err := ExtractMainText(html, JobPostingSelectors())
	require.NoError(t, err)

	lines := strings.Split(text, "\n")
	assert.Contains(t, lines, "Position: Go developer")
	assert.Contains(t, lines, "Salary: 300k")
	assert.Contains(t, lines, "Company: Acme")
	assert.Contains(t, lines, "City: Berlin")
}

func TestExtractMainText_NoiseSelectors(t *testing.T) {
	html := `
	<html><body>
		<div class="sidebar">Sidebar junk</div>
		<div class="job-description">
			<h2>Requirements</h2>
			<p>5 years experience in Go</p>
			<form>Apply now</form>
			<div class="similar">Similar jobs</div>
		</div>
	</body></html>`

	text, err := ExtractMainText(html, JobPostingSelectors(), ".similar")
	require.NoError(t, err)
	assert.Contains(t, text, "Requirements")
	assert.Contains(t, text, "5 years experience")
	assert.NotContains(t, text, "Sidebar junk")
	assert.NotContains(t, text, "Similar jobs")
}

func TestExtractMainText_FallsBackToOGDescription(t *testing.T) {
	html := `
	<html>
		<head><meta property="og:description" content="Go developer, remote, 5000 EUR"></head>
		<body><script>render()</script></body>
	</html>`

	text, err := ExtractMainText(html, DefaultTextSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Go developer, remote, 5000 EUR", text)
}

func TestPageTitle(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "og title wins",
			html: `<html><head><title>Site</title><meta property="og:title" content=" Go developer "></head></html>`,
			want: "Go developer",
		},
		{
			name: "title element",
			html: `<html><head><title> Vacancy </title></head></html>`,
			want: "Vacancy",
		},
		{
			name: "no title",
			html: `<html><body>x</body></html>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageTitle(tt.html))
		})
	}
}

func TestCleanWhitespace(t *testing.T) {
	assert.Equal(t, "a b\nc", cleanWhitespace("  a \t  b \n\n\n   c  \n"))
}

func TestSelectors(t *testing.T) {
	assert.Contains(t, DefaultTextSelectors(), "main")
	assert.Contains(t, DefaultTextSelectors(), "article")
	assert.Contains(t, JobPostingSelectors(), ".job-description")
	assert.Contains(t, JobPostingSelectors(), ".vacancy-description")
}

func TestError_Format(t *testing.T) {
	err := &Error{URL: "https://x", Message: "boom"}
	assert.Equal(t, "fetch error for https://x: boom", err.Error())
	assert.Nil(t, err.Unwrap())

	wrapped := &Error{URL: "https://x", Message: "boom", Cause: context.Canceled}
	assert.ErrorIs(t, wrapped, context.Canceled)
}
