package advisory

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/agriconnect/agriconnect/internal/infra/llm/gemini"
)

// GenerativeClient abstracts the model endpoint so pipelines are testable
// with stubs.
type GenerativeClient interface {
	Configured() bool
	GenerateContent(ctx context.Context, model string, req gemini.GenerateContentRequest) (gemini.GenerateResult, error)
}

// RetryPolicy bounds rate-limit retries. MaxAttempts counts the first call,
// so 1 means no retry. Backoff is a fixed wait between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// NoRetry treats HTTP 429 as a terminal failure.
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// Pipeline is the shared shape of the advisory flows: build a prompt, invoke
// the model, parse the reply, and degrade to a deterministic fallback on any
// failure. Run never returns an error; the fallback is a valid result.
type Pipeline[In, Out any] struct {
	Name     string
	Model    string
	Client   GenerativeClient
	Build    func(in In) gemini.GenerateContentRequest
	Parse    func(raw string, in In) (Out, error)
	Fallback func(in In, cause error) Out
	Retry    RetryPolicy
	Logger   *slog.Logger
}

// Run executes one pipeline invocation.
func (p *Pipeline[In, Out]) Run(ctx context.Context, in In) Out {
	if p.Client == nil || !p.Client.Configured() {
		p.Logger.Info("model not configured, using fallback", "pipeline", p.Name)
		return p.Fallback(in, gemini.ErrNotConfigured)
	}

	req := p.Build(in)

	attempts := p.Retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := p.Client.GenerateContent(ctx, p.Model, req)
		if err == nil {
			out, parseErr := p.Parse(result.Text, in)
			if parseErr != nil {
				p.Logger.Error("model reply unparseable, using fallback", "pipeline", p.Name, "error", parseErr)
				return p.Fallback(in, parseErr)
			}
			if !result.Usage.IsZero() {
				p.Logger.Info("model reply parsed", "pipeline", p.Name, "total_tokens", result.Usage.TotalTokens)
			}
			return out
		}

		lastErr = err
		if errors.Is(err, gemini.ErrRateLimited) && attempt < attempts {
			p.Logger.Warn("rate limited, backing off before retry", "pipeline", p.Name, "attempt", attempt, "backoff", p.Retry.Backoff)
			select {
			case <-time.After(p.Retry.Backoff):
			case <-ctx.Done():
				p.Logger.Warn("backoff cancelled, using fallback", "pipeline", p.Name)
				return p.Fallback(in, ctx.Err())
			}
			continue
		}
		break
	}

	p.Logger.Warn("model call failed, using fallback", "pipeline", p.Name, "error", lastErr)
	return p.Fallback(in, lastErr)
}
