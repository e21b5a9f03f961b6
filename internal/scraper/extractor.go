package scraper

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	goreadability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"extract-article-reader/internal/config"
	"extract-article-reader/internal/lang"
	"extract-article-reader/internal/models"
	"extract-article-reader/internal/readability"
	"extract-article-reader/internal/siteconfig"
)

// ArticleExtractor runs the reader engine over fetched pages.
type ArticleExtractor struct {
	sanitizer *bluemonday.Policy
	sites     *siteconfig.Table
	config    config.ExtractConfig
	log       zerolog.Logger
}

// NewArticleExtractor returns an extractor using cfg for the engine options
// and sites for per-site overrides. sites may be nil.
func NewArticleExtractor(cfg config.ExtractConfig, sites *siteconfig.Table, log zerolog.Logger) *ArticleExtractor {
	return &ArticleExtractor{
		sanitizer: bluemonday.StrictPolicy(),
		sites:     sites,
		config:    cfg,
		log:       log.With().Str("component", "extractor").Logger(),
	}
}

func (ae *ArticleExtractor) options(pageURL string) *readability.Options {
	site := ae.sites.Resolve(pageURL)
	logger := ae.log
	return &readability.Options{
		Debug:             ae.config.Debug,
		Logger:            &logger,
		MaxElemsToParse:   ae.config.MaxElemsToParse,
		NbTopCandidates:   ae.config.NbTopCandidates,
		CharThreshold:     ae.config.CharThreshold,
		ClassesToPreserve: ae.config.ClassesToPreserve,
		Site:              &site,
	}
}

// ExtractArticle extracts the readable article of markup served from
// pageURL. Pages the engine finds no content in go through go-readability.
func (ae *ArticleExtractor) ExtractArticle(markup, pageURL string) (models.ScrapeResponse, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return models.ScrapeResponse{}, &models.ContentExtractionError{Step: "parse", Err: err}
	}

	article, err := readability.Parse(doc, pageURL, ae.options(pageURL))
	fallback := false
	switch {
	case errors.Is(err, readability.ErrNoContent):
		ae.log.Debug().Err(err).Str("url", pageURL).Msg("no content found, using fallback extractor")
		article, err = ae.extractFallback(markup, pageURL)
		if err != nil {
			return models.ScrapeResponse{}, &models.ContentExtractionError{Step: "fallback", Err: err}
		}
		fallback = true
	case err != nil:
		return models.ScrapeResponse{}, &models.ContentExtractionError{Step: "readability", Err: err}
	}

	return models.ScrapeResponse{
		Article:  article,
		Content:  ae.plainContent(article),
		Fallback: fallback,
	}, nil
}

// extractFallback maps a go-readability result onto an Article.
func (ae *ArticleExtractor) extractFallback(markup, pageURL string) (*readability.Article, error) {
	u, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		u = &url.URL{}
	}

	parsed, err := goreadability.FromReader(strings.NewReader(markup), u)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(parsed.TextContent)
	if text == "" {
		return nil, readability.ErrNoContent
	}

	detected := lang.Detect(text)
	language := detected.Lang
	if !detected.Reliable && parsed.Language != "" {
		language = strings.ToLower(strings.SplitN(parsed.Language, "-", 2)[0])
	}
	seconds, readTime := readability.ReadTime(detected.WordCount)

	cover := strings.TrimSpace(parsed.Image)
	if cover == "" {
		if meta, err := goquery.NewDocumentFromReader(strings.NewReader(markup)); err == nil {
			cover = FindMetaTag(meta, "og:image", "twitter:image")
		}
	}

	byline := ae.sanitizeText(parsed.Byline)
	return &readability.Article{
		URL:         u.String(),
		Title:       ae.sanitizeText(parsed.Title),
		CoverURL:    cover,
		Byline:      byline,
		HTML:        parsed.Content,
		Text:        text,
		Length:      utf8.RuneCountInString(text),
		Excerpt:     ae.sanitizeText(parsed.Excerpt),
		SiteName:    ae.sanitizeText(parsed.SiteName),
		AuthorName:  byline,
		Domain:      u.Hostname(),
		Lang:        language,
		WordsCount:  detected.WordCount,
		ReadSeconds: seconds,
		ReadTime:    readTime,
		Outline:     []readability.OutlineEntry{},
		Links:       []readability.Link{},
	}, nil
}

// plainContent renders the article as text with one block per line.
func (ae *ArticleExtractor) plainContent(article *readability.Article) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.HTML))
	if err != nil {
		return CleanWhitespace(article.Text)
	}
	content := CleanWhitespace(ExtractTextFromElements(doc.Selection, TextElements))
	if content == "" {
		return CleanWhitespace(article.Text)
	}
	return content
}

// sanitizeText strips markup from a metadata string.
func (ae *ArticleExtractor) sanitizeText(text string) string {
	if text == "" {
		return ""
	}
	return CleanWhitespace(html.UnescapeString(ae.sanitizer.Sanitize(text)))
}
