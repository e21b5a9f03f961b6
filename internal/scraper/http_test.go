package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extract-article-reader/internal/config"
	"extract-article-reader/internal/models"
)

func testHTTPClient(maxRetries int) *HTTPClient {
	return NewHTTPClient(config.ScrapeConfig{
		UserAgent:      "reader-test/1.0",
		TimeoutMs:      2000,
		SizeLimitBytes: 1 << 20,
		MaxRetries:     maxRetries,
	}, zerolog.Nop())
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func TestFetch_Success(t *testing.T) {
	t.Parallel()

	var ua atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua.Store(r.UserAgent())
		writeHTML(w, "<html><body><p>hello</p></body></html>")
	}))
	defer srv.Close()

	body, finalURL, err := testHTTPClient(0).Fetch(context.Background(), srv.URL+"/story")
	require.NoError(t, err)
	assert.Contains(t, body, "<p>hello</p>")
	assert.Equal(t, srv.URL+"/story", finalURL)
	assert.Equal(t, "reader-test/1.0", ua.Load())
}

func TestFetch_NotHTML(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer srv.Close()

	_, _, err := testHTTPClient(0).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrNotHTML)
}

func TestFetch_NotFoundSkipsAlternates(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, _, err := testHTTPClient(0).Fetch(context.Background(), srv.URL+"/missing")
	var httpErr *models.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetch_ForbiddenUsesAlternate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/amp/story" {
			writeHTML(w, "<html><body><p>amp version</p></body></html>")
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	body, finalURL, err := testHTTPClient(0).Fetch(context.Background(), srv.URL+"/story")
	require.NoError(t, err)
	assert.Contains(t, body, "amp version")
	assert.Equal(t, srv.URL+"/amp/story", finalURL)
}

func TestFetch_BlockedPageAllAlternatesFail(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/story" && r.URL.RawQuery == "" {
			writeHTML(w, "<title>Attention Required! | Cloudflare</title>")
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, _, err := testHTTPClient(0).Fetch(context.Background(), srv.URL+"/story")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all alternate URLs failed")
	assert.ErrorIs(t, err, errBlockedPage)
	assert.True(t, IsCloudflareBlock(err))
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/flaky" && hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeHTML(w, "<html><body>recovered</body></html>")
	}))
	defer srv.Close()

	body, _, err := testHTTPClient(1).FetchHTML(context.Background(), srv.URL+"/flaky", 0)
	require.NoError(t, err)
	assert.Contains(t, body, "recovered")
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetchHTML_RetryRespectsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := testHTTPClient(3).FetchHTML(ctx, srv.URL, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetch_FollowsMetaRefresh(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/start":
			writeHTML(w, `<html><head><meta http-equiv="refresh" content="0; url=/article"></head></html>`)
		case "/article":
			writeHTML(w, "<html><body><p>the real page</p></body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	body, finalURL, err := testHTTPClient(0).Fetch(context.Background(), srv.URL+"/start")
	require.NoError(t, err)
	assert.Contains(t, body, "the real page")
	assert.Equal(t, srv.URL+"/article", finalURL)
}

func TestGenerateAlternateURLs(t *testing.T) {
	t.Parallel()

	got, err := GenerateAlternateURLs("https://news.example.com/world/story?id=7")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://news.example.com/amp/world/story?id=7",
		"https://news.example.com/world/story/amp?id=7",
		"https://news.example.com/world/story?id=7&outputType=amp",
		"https://m.news.example.com/world/story?id=7",
	}, got)

	got, err = GenerateAlternateURLs("https://m.example.com/amp/story/amp")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://m.example.com/amp/story/amp?outputType=amp"}, got)

	_, err = GenerateAlternateURLs("http://[::1")
	var invalid *models.InvalidURLError
	require.ErrorAs(t, err, &invalid)
}
