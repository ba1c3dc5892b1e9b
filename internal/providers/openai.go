// Package providers implements LLM backends for structured extraction.
//
// The OpenAI client drives any endpoint that speaks the Responses API,
// including self-hosted gateways via a custom base URL. Every request is
// rate-limited, retried with backoff, and validated against the task's
// JSON schema before the output is handed back to the extraction engine.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/jackzampolin/paperdex/internal/extract"
	"github.com/jackzampolin/paperdex/internal/metrics"
	"github.com/jackzampolin/paperdex/internal/prompts"
)

// badOutputError marks errors caused by the model's output rather than by
// transport or server faults. After the retry budget is spent, these become
// a validation failure instead of an unexpected error.
type badOutputError struct {
	err    error
	output string
}

func (e *badOutputError) Error() string { return e.err.Error() }
func (e *badOutputError) Unwrap() error { return e.err }

// Config holds connection settings for an OpenAI-compatible endpoint.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	RateLimit int
	Timeout   time.Duration

	// HTTPClient overrides the default transport, mainly for tests.
	HTTPClient *http.Client

	// Recorder, when set, accumulates token usage across calls.
	Recorder *metrics.Recorder
}

// OpenAIClient satisfies extract.Completer using the Responses API with
// JSON schema output.
type OpenAIClient struct {
	client   openai.Client
	model    string
	limiter  *RateLimiter
	recorder *metrics.Recorder
	logger   *slog.Logger
}

// NewOpenAIClient builds a client from config. Timeout defaults to two
// minutes and rate limit to 60 requests per minute.
func NewOpenAIClient(cfg Config, logger *slog.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai: model is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIClient{
		client:   openai.NewClient(opts...),
		model:    cfg.Model,
		limiter:  NewRateLimiter(cfg.RateLimit),
		recorder: cfg.Recorder,
		logger:   logger.With("provider", "openai", "model", cfg.Model),
	}, nil
}

// SetRateLimit adjusts the request rate without rebuilding the client,
// letting a running batch pick up config changes.
func (c *OpenAIClient) SetRateLimit(requestsPerMinute int) {
	c.limiter.SetRate(requestsPerMinute)
	c.logger.Info("rate limit updated", "requests_per_minute", c.limiter.Rate())
}

// Complete sends the prompt, enforcing structured JSON output. Parse and
// schema failures trigger a repair prompt on the next retry; once the
// budget is exhausted they are reported as *extract.ValidationError.
func (c *OpenAIClient) Complete(ctx context.Context, req extract.CompletionRequest) (json.RawMessage, error) {
	requestID := uuid.NewString()
	logger := c.logger.With(
		"request_id", requestID,
		"schema", req.SchemaName,
		"prompt_hash", prompts.Hash(req.Prompt),
	)

	attempts := req.RetryBudget
	if attempts < 1 {
		attempts = 1
	}

	prompt := req.Prompt
	attempt := 0

	result, err := retry.DoWithData(
		func() (json.RawMessage, error) {
			attempt++
			raw, rErr := c.completeOnce(ctx, prompt, req, logger.With("attempt", attempt))
			if rErr != nil {
				var bad *badOutputError
				if errors.As(rErr, &bad) {
					// Switch to the repair prompt for the remaining attempts.
					prompt = repairPrompt(req.Prompt, req.Schema, bad.output, bad.err)
				}
				return nil, rErr
			}
			return raw, nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("completion attempt failed", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		var bad *badOutputError
		if errors.As(err, &bad) {
			return nil, &extract.ValidationError{Attempts: attempt, Err: bad.err}
		}
		return nil, fmt.Errorf("completion request %s: %w", requestID, err)
	}

	logger.Debug("completion succeeded", "attempts", attempt, "bytes", len(result))
	return result, nil
}

func (c *OpenAIClient) completeOnce(ctx context.Context, prompt string, req extract.CompletionRequest, logger *slog.Logger) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(prompt)},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema(req.SchemaName, req.Schema),
		},
	})
	if err != nil {
		if c.recorder != nil {
			c.recorder.RecordFailure()
		}
		return nil, fmt.Errorf("responses api: %w", err)
	}
	if c.recorder != nil {
		c.recorder.Record(metrics.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
		})
	}

	output := resp.OutputText()
	logger.Debug("received completion",
		"duration", time.Since(start).Round(time.Millisecond),
		"output_chars", len(output),
	)

	parsed, err := parseStructuredJSON(output)
	if err != nil {
		return nil, &badOutputError{err: err, output: output}
	}
	if err := validateStructuredJSON(req.Schema, parsed); err != nil {
		return nil, &badOutputError{err: err, output: output}
	}
	return parsed, nil
}
