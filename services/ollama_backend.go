package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/itish2003/studysense/config"
	"github.com/itish2003/studysense/logger"
	"github.com/itish2003/studysense/models"
)

// OllamaGenerator calls the non-streaming /api/generate endpoint and retries
// transient HTTP statuses with linear backoff.
type OllamaGenerator struct {
	httpClient   *http.Client
	baseURL      string
	model        string
	timeout      time.Duration
	maxRetries   int
	retryBackoff time.Duration
	log          logger.Logger
}

func NewOllamaGenerator(cfg config.OllamaConfig, log logger.Logger) *OllamaGenerator {
	return &OllamaGenerator{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		model:        cfg.Model,
		timeout:      cfg.Timeout,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		log:          log,
	}
}

// statusError is a non-2xx answer from Ollama.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%d %s", e.code, http.StatusText(e.code))
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// linearBackOff waits unit, 2*unit, 3*unit... between attempts.
type linearBackOff struct {
	unit    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.unit
}

func (b *linearBackOff) Reset() {
	b.attempt = 0
}

func (g *OllamaGenerator) Generate(ctx context.Context, prompt string, options ...GenerateOption) string {
	opts := resolveOptions(options)

	reqBody, err := json.Marshal(models.OllamaGenerateRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
		Options: &models.OllamaOptions{
			Temperature: opts.Temperature,
			NumPredict:  opts.MaxTokens,
		},
	})
	if err != nil {
		return fmt.Sprintf("Error: An unexpected error occurred: %v", err)
	}

	attempt := 0
	operation := func() (string, error) {
		attempt++
		return g.send(ctx, reqBody)
	}
	notify := func(err error, wait time.Duration) {
		g.log.Warn("OLLAMA", "retrying generate request", map[string]interface{}{
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	text, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&linearBackOff{unit: g.retryBackoff}),
		backoff.WithMaxTries(uint(g.maxRetries+1)),
		backoff.WithNotify(notify),
	)
	if err != nil {
		g.log.Error("OLLAMA", "generate request failed", map[string]interface{}{
			"model":    g.model,
			"attempts": attempt,
			"error":    err,
		})
		return g.describe(err)
	}
	return text
}

func (g *OllamaGenerator) send(ctx context.Context, reqBody []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", backoff.Permanent(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		statusErr := &statusError{code: resp.StatusCode}
		if retryableStatus(resp.StatusCode) {
			return "", statusErr
		}
		return "", backoff.Permanent(statusErr)
	}

	var genResp models.OllamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", backoff.Permanent(fmt.Errorf("failed to decode ollama response: %w", err))
	}
	if genResp.Response == nil {
		return noResponseText, nil
	}
	return *genResp.Response, nil
}

// describe maps a failed request to the text handed back to callers.
func (g *OllamaGenerator) describe(err error) string {
	var (
		statusErr *statusError
		netErr    net.Error
		opErr     *net.OpError
	)
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Error: HTTP error occurred: %v", statusErr)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Sprintf("Error: Request to Ollama timed out after %g seconds", g.timeout.Seconds())
	case errors.As(err, &opErr):
		return "Error: Ollama server is not running or unreachable"
	default:
		return fmt.Sprintf("Error: An unexpected error occurred: %v", err)
	}
}
