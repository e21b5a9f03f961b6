// Command extract runs the reader engine over a saved page or a URL and
// prints the article as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"extract-article-reader/internal/config"
	"extract-article-reader/internal/readability"
	"extract-article-reader/internal/scraper"
	"extract-article-reader/internal/siteconfig"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		filePath   string
		pageURL    string
		sitePath   string
		verbose    bool
		precheck   bool
		timeoutArg time.Duration
	)

	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&filePath, "file", "", "Path to a saved HTML page, or - for stdin")
	fs.StringVar(&pageURL, "url", "", "Page URL; fetched when -file is not set")
	fs.StringVar(&sitePath, "site-config", os.Getenv("SITE_CONFIG_PATH"), "YAML or JSON site override table")
	fs.BoolVar(&verbose, "v", false, "Verbose logging, including the engine trace")
	fs.BoolVar(&precheck, "readable", false, "Only report whether the page is probably readable")
	fs.DurationVar(&timeoutArg, "timeout", 60*time.Second, "Fetch timeout for -url")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if filePath == "" && pageURL == "" {
		fmt.Fprintln(stderr, "extract: one of -file or -url is required")
		fs.Usage()
		return 2
	}

	level := config.LogLevel()
	if verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()

	extractCfg := config.DefaultExtractConfig()
	extractCfg.Debug = extractCfg.Debug || verbose
	var sites *siteconfig.Table
	if sitePath != "" {
		var err error
		if sites, err = siteconfig.Load(sitePath); err != nil {
			log.Error().Err(err).Str("path", sitePath).Msg("failed to load site config")
			return 1
		}
	}
	extractor := scraper.NewArticleExtractor(extractCfg, sites, log)

	var out any
	if filePath != "" {
		markup, err := readInput(filePath, stdin)
		if err != nil {
			log.Error().Err(err).Msg("failed to read input")
			return 1
		}
		out, err = extractMarkup(extractor, markup, pageURL, precheck)
		if err != nil {
			log.Error().Err(err).Msg("extraction failed")
			return 1
		}
	} else {
		ctx, cancel := context.WithTimeout(ctx, timeoutArg)
		defer cancel()

		scrapeCfg := config.DefaultScrapeConfig()
		s := scraper.New(scraper.NewHTTPClient(scrapeCfg, log), scraper.NewBrowserClient(scrapeCfg, log), extractor, log)
		var err error
		out, err = scrapeURL(ctx, s, pageURL, precheck)
		if err != nil {
			log.Error().Err(err).Str("url", pageURL).Msg("scrape failed")
			return 1
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		log.Error().Err(err).Msg("failed to write output")
		return 1
	}
	return 0
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

type readableOutput struct {
	Readable bool `json:"readable"`
}

func extractMarkup(extractor *scraper.ArticleExtractor, markup, pageURL string, precheck bool) (any, error) {
	if precheck {
		doc, err := html.Parse(strings.NewReader(markup))
		if err != nil {
			return nil, err
		}
		return readableOutput{Readable: readability.IsProbablyReadable(doc, nil)}, nil
	}
	return extractor.ExtractArticle(markup, pageURL)
}

func scrapeURL(ctx context.Context, s *scraper.Scraper, pageURL string, precheck bool) (any, error) {
	if precheck {
		ok, err := s.Readable(ctx, pageURL)
		if err != nil {
			return nil, err
		}
		return readableOutput{Readable: ok}, nil
	}
	return s.ScrapeSmart(ctx, pageURL)
}
