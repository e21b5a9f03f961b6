package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"extract-article-reader/internal/config"
	"extract-article-reader/internal/models"
	"extract-article-reader/internal/scraper"
)

type articleScraper interface {
	ScrapeSmartWithTimeout(ctx context.Context, targetURL string, timeoutMs int) (models.ScrapeResponse, error)
}

// LambdaHandler handles AWS Lambda events
type LambdaHandler struct {
	scraper   articleScraper
	apiKey    string
	log       zerolog.Logger
	maxSoftMs int
}

func NewLambdaHandler(s articleScraper, apiKey string, log zerolog.Logger) *LambdaHandler {
	return &LambdaHandler{scraper: s, apiKey: apiKey, log: log, maxSoftMs: 70000}
}

var baseHeaders = map[string]string{
	"Content-Type":                 "application/json; charset=utf-8",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Api-Key,x-api-key",
	"Access-Control-Allow-Methods": "GET,OPTIONS",
}

// requestAPIKey reads the key from the headers, then the key parameter.
func requestAPIKey(event events.APIGatewayProxyRequest) string {
	for name, value := range event.Headers {
		if http.CanonicalHeaderKey(name) == "X-Api-Key" && value != "" {
			return value
		}
	}
	return event.QueryStringParameters["key"]
}

// softTimeout leaves a safety margin before the invocation deadline.
func (h *LambdaHandler) softTimeout(ctx context.Context) int {
	remaining := 90000
	if deadline, ok := ctx.Deadline(); ok {
		remaining = int(time.Until(deadline).Milliseconds())
	}

	softTimeoutMs := remaining - 3000
	if softTimeoutMs < 1000 {
		softTimeoutMs = 1000
	}
	if softTimeoutMs > h.maxSoftMs {
		softTimeoutMs = h.maxSoftMs
	}
	return softTimeoutMs
}

// Handler is the main Lambda handler function
func (h *LambdaHandler) Handler(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if event.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusNoContent, Headers: baseHeaders}, nil
	}

	h.log.Info().Str("method", event.HTTPMethod).Str("path", event.Path).Msg("request received")

	if h.apiKey == "" {
		h.log.Error().Msg("SCRAPE_API_KEY environment variable not set")
		return h.errorResponse(http.StatusInternalServerError, "Server misconfiguration"), nil
	}
	apiKey := requestAPIKey(event)
	if apiKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(h.apiKey)) != 1 {
		return h.errorResponse(http.StatusUnauthorized, "Invalid or missing API key"), nil
	}

	targetURL := event.QueryStringParameters["url"]
	if targetURL == "" {
		return h.errorResponse(http.StatusBadRequest, "Missing \"url\" query parameter"), nil
	}
	if _, err := scraper.ValidateURL(targetURL); err != nil {
		return h.errorResponse(http.StatusBadRequest, "Invalid URL format"), nil
	}

	softTimeoutMs := h.softTimeout(ctx)
	start := time.Now()
	result, err := h.scraper.ScrapeSmartWithTimeout(ctx, targetURL, softTimeoutMs)
	duration := time.Since(start)
	h.log.Info().Str("url", targetURL).Int64("durationMs", duration.Milliseconds()).Err(err).Msg("scrape finished")

	metadata := models.Metadata{
		URL:        targetURL,
		ScrapedAt:  time.Now(),
		DurationMs: duration.Milliseconds(),
	}

	if err != nil {
		status, message := models.StatusFor(err)
		var cfErr *models.CloudflareBlockError
		if errors.As(err, &cfErr) {
			return h.jsonResponse(status, models.BlockedResponse{
				Error:    message,
				Provider: "cloudflare",
				Domain:   cfErr.Domain,
				Metadata: metadata,
			}), nil
		}
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("url", targetURL).Msg("error processing request")
		}
		return h.errorResponse(status, message), nil
	}

	result.Metadata = metadata
	return h.jsonResponse(http.StatusOK, result), nil
}

func (h *LambdaHandler) jsonResponse(statusCode int, body any) events.APIGatewayProxyResponse {
	data, err := json.Marshal(body)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to serialize response")
		return h.errorResponse(http.StatusInternalServerError, "Failed to serialize response")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    baseHeaders,
		Body:       string(data),
	}
}

// errorResponse creates an error response
func (h *LambdaHandler) errorResponse(statusCode int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(models.ErrorResponse{Error: message})
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    baseHeaders,
		Body:       string(body),
	}
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		Level(config.LogLevel()).
		With().Timestamp().Str("service", "lambda").Logger()

	s, err := scraper.NewScraper(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scraper")
	}
	handler := NewLambdaHandler(s, os.Getenv("SCRAPE_API_KEY"), log)
	lambda.Start(handler.Handler)
}
