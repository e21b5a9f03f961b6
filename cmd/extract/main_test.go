package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sentence = "The archive opened its doors to the public, and visitors lined up for hours to see the collection. "

func page() string {
	var b strings.Builder
	b.WriteString(`<html lang="en"><head><title>Archive opens</title></head><body><article>`)
	for range 4 {
		b.WriteString("<p>" + strings.Repeat(sentence, 5) + "</p>")
	}
	b.WriteString(`<p class="teaser">Read more stories from the archive team every week.</p>`)
	b.WriteString(`</article></body></html>`)
	return b.String()
}

func TestRun_File(t *testing.T) {
	t.Setenv("SITE_CONFIG_PATH", "")
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page()), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-file", path, "-url", "https://example.com/archive"}, nil, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, "Archive opens", out["title"])
	assert.Equal(t, "example.com", out["domain"])
	assert.Equal(t, false, out["fallback"])
	assert.Contains(t, out["content"], "Read more stories")
}

func TestRun_StdinWithSiteConfig(t *testing.T) {
	dir := t.TempDir()
	sites := filepath.Join(dir, "sites.yaml")
	require.NoError(t, os.WriteFile(sites, []byte("- match: [example.com]\n  excludeElems: [.teaser]\n"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(),
		[]string{"-file", "-", "-url", "https://example.com/archive", "-site-config", sites},
		strings.NewReader(page()), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.NotContains(t, stdout.String(), "Read more stories")
}

func TestRun_Readable(t *testing.T) {
	t.Setenv("SITE_CONFIG_PATH", "")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-file", "-", "-readable"}, strings.NewReader(page()), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.JSONEq(t, `{"readable": true}`, stdout.String())
}

func TestRun_Usage(t *testing.T) {
	t.Setenv("SITE_CONFIG_PATH", "")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), nil, nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "-file or -url")

	assert.Equal(t, 2, run(context.Background(), []string{"-bogus"}, nil, &stdout, &stderr))
	assert.Equal(t, 1, run(context.Background(), []string{"-file", filepath.Join(t.TempDir(), "missing.html")}, nil, &stdout, &stderr))
	assert.Empty(t, stdout.String())
}
