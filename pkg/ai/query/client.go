package query

import (
	"context"
	"errors"
	"time"

	"quran-irc-bot/internal/pkg/logger"
	"quran-irc-bot/pkg/ai/reference"
	"quran-irc-bot/pkg/clock"
	"quran-irc-bot/pkg/llm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Status is the outcome of a query. Errors never leave this package.
type Status int

const (
	StatusOK Status = iota
	StatusUnavailable
	StatusTimedOut
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusTimedOut:
		return "timed_out"
	default:
		return "unavailable"
	}
}

const (
	DefaultMaxAttempts    = 10
	DefaultAttemptTimeout = 10 * time.Second
	DefaultBackoffUnit    = time.Second
)

type Config struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	// BackoffUnit is multiplied by 2^attempt between attempts.
	BackoffUnit  time.Duration
	SystemPrompt string
	// Temperature is sent with every attempt when positive.
	Temperature float64
}

// Result carries the parsed answer when Status is StatusOK.
type Result struct {
	Status   Status
	Response *reference.ParsedResponse
	RawText  string
	Attempts int
}

type Client struct {
	provider llm.LLMProvider
	sleeper  clock.Sleeper
	logger   logger.ILogger
	cfg      Config
	tracer   trace.Tracer
}

func NewClient(provider llm.LLMProvider, sleeper clock.Sleeper, log logger.ILogger, cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	if cfg.BackoffUnit <= 0 {
		cfg.BackoffUnit = DefaultBackoffUnit
	}
	if sleeper == nil {
		sleeper = clock.Real{}
	}
	return &Client{
		provider: provider,
		sleeper:  sleeper,
		logger:   log,
		cfg:      cfg,
		tracer:   otel.Tracer("quran-irc-bot/query"),
	}
}

// Backoff is the wait after a failed attempt (0-indexed): unit * 2^attempt.
func (c *Client) Backoff(attempt int) time.Duration {
	return c.cfg.BackoffUnit * time.Duration(1<<uint(attempt))
}

// Query asks the AI for references relevant to text. Every failure (bad
// status, transport error, malformed body, per-attempt timeout) is retried
// until MaxAttempts is spent, sleeping Backoff(attempt) after each failure.
// Cancelling ctx stops the retries early and yields StatusUnavailable.
func (c *Client) Query(ctx context.Context, text string) *Result {
	ctx, span := c.tracer.Start(ctx, "ai.query")
	defer span.End()

	history := []llm.Message{
		{Role: "system", Content: c.cfg.SystemPrompt},
		{Role: "user", Content: text},
	}

	c.logger.Info(logger.ModuleQuery, "Sending structured query to AI", map[string]interface{}{
		"query": text,
	})

	lastTimedOut := false
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		content, timedOut, err := c.attempt(ctx, history)
		if err == nil {
			parsed := reference.ParseResponse(content)
			c.logger.Info(logger.ModuleQuery, "Received response from AI", map[string]interface{}{
				"attempt":    attempt + 1,
				"content":    content,
				"language":   parsed.Language,
				"rtl":        parsed.RTL,
				"references": len(parsed.References),
			})
			span.SetAttributes(attribute.Int("ai.attempts", attempt+1), attribute.String("ai.status", StatusOK.String()))
			return &Result{Status: StatusOK, Response: parsed, RawText: content, Attempts: attempt + 1}
		}

		lastTimedOut = timedOut
		c.logger.Warn(logger.ModuleQuery, "AI request failed, retrying", map[string]interface{}{
			"attempt":   attempt + 1,
			"timed_out": timedOut,
			"error":     err.Error(),
		})

		if ctx.Err() != nil {
			return c.giveUp(span, StatusUnavailable, attempt+1)
		}
		if err := c.sleeper.Sleep(ctx, c.Backoff(attempt)); err != nil {
			return c.giveUp(span, StatusUnavailable, attempt+1)
		}
	}

	c.logger.Error(logger.ModuleQuery, "Failed to get a valid response after multiple attempts", map[string]interface{}{
		"attempts": c.cfg.MaxAttempts,
	})
	if lastTimedOut {
		return c.giveUp(span, StatusTimedOut, c.cfg.MaxAttempts)
	}
	return c.giveUp(span, StatusUnavailable, c.cfg.MaxAttempts)
}

func (c *Client) attempt(ctx context.Context, history []llm.Message) (string, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	var opts []llm.Option
	if c.cfg.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(c.cfg.Temperature))
	}
	content, err := c.provider.Chat(attemptCtx, history, opts...)
	if err == nil {
		return content, false, nil
	}
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil)
	return "", timedOut, err
}

func (c *Client) giveUp(span trace.Span, status Status, attempts int) *Result {
	span.SetAttributes(attribute.Int("ai.attempts", attempts), attribute.String("ai.status", status.String()))
	return &Result{Status: status, Attempts: attempts}
}
