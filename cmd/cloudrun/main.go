package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"extract-article-reader/internal/config"
	"extract-article-reader/internal/models"
	"extract-article-reader/internal/scraper"
)

type articleScraper interface {
	ScrapeSmartWithTimeout(ctx context.Context, targetURL string, timeoutMs int) (models.ScrapeResponse, error)
	Readable(ctx context.Context, targetURL string) (bool, error)
}

// CloudRunHandler handles Google Cloud Run requests
type CloudRunHandler struct {
	scraper articleScraper
	cache   *cache.Cache
	log     zerolog.Logger
}

func NewCloudRunHandler(s articleScraper, cfg config.CacheConfig, log zerolog.Logger) *CloudRunHandler {
	h := &CloudRunHandler{scraper: s, log: log}
	if cfg.TTL > 0 {
		h.cache = cache.New(cfg.TTL, cfg.CleanupInterval)
	}
	return h
}

// Routes returns the service mux.
func (h *CloudRunHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/readable", h.Readable)
	mux.HandleFunc("/", h.Handler)
	return mux
}

// prepare writes the shared headers and validates the request. It returns
// the target URL, or "" when a response was already written.
func (h *CloudRunHandler) prepare(w http.ResponseWriter, r *http.Request) string {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type,X-Api-Key,x-api-key")
	w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return ""
	}
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return ""
	}

	h.log.Info().Str("method", r.Method).Str("path", r.URL.Path).Msg("request received")

	targetURL := r.URL.Query().Get("url")
	if targetURL == "" {
		h.errorResponse(w, http.StatusBadRequest, "Missing \"url\" query parameter")
		return ""
	}
	if _, err := scraper.ValidateURL(targetURL); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid URL format")
		return ""
	}
	return targetURL
}

// requestTimeout reads the timeout parameter in milliseconds, bounded to
// what Cloud Run allows.
func requestTimeout(r *http.Request) int {
	timeoutMs := 240000
	if parsed, err := strconv.Atoi(r.URL.Query().Get("timeout")); err == nil {
		timeoutMs = parsed
	}
	if timeoutMs > 240000 {
		timeoutMs = 240000
	}
	if timeoutMs < 1000 {
		timeoutMs = 1000
	}
	return timeoutMs
}

// Handler is the main Cloud Run handler function
func (h *CloudRunHandler) Handler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.errorResponse(w, http.StatusNotFound, "Not found")
		return
	}
	targetURL := h.prepare(w, r)
	if targetURL == "" {
		return
	}

	cacheKey := "article:" + targetURL
	if h.cache != nil {
		if cached, ok := h.cache.Get(cacheKey); ok {
			result := cached.(models.ScrapeResponse)
			result.Metadata.Cached = true
			h.log.Debug().Str("url", targetURL).Msg("cache hit")
			h.writeJSON(w, http.StatusOK, result)
			return
		}
	}

	timeoutMs := requestTimeout(r)
	start := time.Now()
	result, err := h.scraper.ScrapeSmartWithTimeout(r.Context(), targetURL, timeoutMs)
	duration := time.Since(start)
	h.log.Info().Str("url", targetURL).Int64("durationMs", duration.Milliseconds()).Err(err).Msg("scrape finished")

	metadata := models.Metadata{
		URL:        targetURL,
		ScrapedAt:  time.Now(),
		DurationMs: duration.Milliseconds(),
	}
	if err != nil {
		h.scrapeError(w, err, metadata)
		return
	}

	result.Metadata = metadata
	if h.cache != nil {
		h.cache.SetDefault(cacheKey, result)
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Readable answers whether a page probably holds an article.
func (h *CloudRunHandler) Readable(w http.ResponseWriter, r *http.Request) {
	targetURL := h.prepare(w, r)
	if targetURL == "" {
		return
	}

	cacheKey := "readable:" + targetURL
	if h.cache != nil {
		if cached, ok := h.cache.Get(cacheKey); ok {
			result := cached.(models.ReadableResponse)
			result.Metadata.Cached = true
			h.writeJSON(w, http.StatusOK, result)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(requestTimeout(r))*time.Millisecond)
	defer cancel()

	start := time.Now()
	readable, err := h.scraper.Readable(ctx, targetURL)
	metadata := models.Metadata{
		URL:        targetURL,
		ScrapedAt:  time.Now(),
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		h.scrapeError(w, err, metadata)
		return
	}

	result := models.ReadableResponse{Readable: readable, Metadata: metadata}
	if h.cache != nil {
		h.cache.SetDefault(cacheKey, result)
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *CloudRunHandler) scrapeError(w http.ResponseWriter, err error, metadata models.Metadata) {
	status, message := models.StatusFor(err)

	var cfErr *models.CloudflareBlockError
	if errors.As(err, &cfErr) {
		h.writeJSON(w, status, models.BlockedResponse{
			Error:    message,
			Provider: "cloudflare",
			Domain:   cfErr.Domain,
			Metadata: metadata,
		})
		return
	}

	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("url", metadata.URL).Msg("error processing request")
	}
	h.errorResponse(w, status, message)
}

func (h *CloudRunHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn().Err(err).Msg("failed to write response")
	}
}

// errorResponse creates an error response
func (h *CloudRunHandler) errorResponse(w http.ResponseWriter, statusCode int, message string) {
	h.writeJSON(w, statusCode, models.ErrorResponse{Error: message})
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(config.LogLevel()).
		With().Timestamp().Str("service", "cloudrun").Logger()

	s, err := scraper.NewScraper(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scraper")
	}
	handler := NewCloudRunHandler(s, config.DefaultCacheConfig(), log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Str("port", port).Msg("starting server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}
