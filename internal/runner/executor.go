package runner

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/commercelab/shopbench/internal/platform"
)

// Default retry and throttle settings for model calls.
const (
	DefaultRetryCount     = 2
	DefaultRetryBackoff   = 5 * time.Second
	DefaultClaudeThrottle = 10 * time.Second
)

// Executor runs one step's model call against one platform, with bounded
// retries and per-platform rate-limit throttling.
type Executor struct {
	registry   *platform.Registry
	retryCount int
	backoff    time.Duration
	throttle   map[string]time.Duration

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor with default retry settings and the
// default Claude throttle.
func NewExecutor(registry *platform.Registry) *Executor {
	return &Executor{
		registry:   registry,
		retryCount: DefaultRetryCount,
		backoff:    DefaultRetryBackoff,
		throttle:   map[string]time.Duration{platform.Claude: DefaultClaudeThrottle},
		sleep:      sleepContext,
	}
}

// SetRetry overrides the retry count and backoff base.
func (e *Executor) SetRetry(count int, backoff time.Duration) {
	e.retryCount = count
	e.backoff = backoff
}

// SetThrottle overrides the per-platform post-call delays.
func (e *Executor) SetThrottle(throttle map[string]time.Duration) {
	e.throttle = throttle
}

// Execute sends the prompt to the platform and returns the raw response
// payload plus its extracted text. A missing platform configuration fails
// immediately; call failures are retried retryCount times with a linearly
// increasing backoff (backoff * attempt number) and the last error surfaces
// after exhaustion. Successful calls to throttled platforms are followed by
// the platform's fixed delay.
func (e *Executor) Execute(ctx context.Context, platformID, prompt string, step Step) (string, string, error) {
	client, err := e.registry.Client(platformID)
	if err != nil {
		return "", "", err
	}

	totalAttempts := e.retryCount + 1
	var lastErr error
	for attempt := 1; attempt <= totalAttempts; attempt++ {
		raw, err := client.Send(ctx, prompt)
		if err == nil {
			text := platform.ExtractText(raw)
			e.throttleAfterCall(ctx, platformID)
			return raw, text, nil
		}
		lastErr = err
		if attempt < totalAttempts {
			slog.Warn("model call failed; retrying",
				"attempt", attempt,
				"total_attempts", totalAttempts,
				"scenario_id", step.ScenarioID,
				"platform_id", platformID,
				"step_id", step.StepID,
				"step_index", step.StepIndex,
				"error", err,
			)
			if sleepErr := e.sleep(ctx, e.backoff*time.Duration(attempt)); sleepErr != nil {
				return "", "", sleepErr
			}
		}
	}
	return "", "", lastErr
}

// throttleAfterCall applies the fixed post-call delay for rate-limited
// platforms. The step already succeeded, so a cancellation here only cuts
// the delay short.
func (e *Executor) throttleAfterCall(ctx context.Context, platformID string) {
	delay, ok := e.throttle[strings.ToUpper(strings.TrimSpace(platformID))]
	if !ok || delay <= 0 {
		return
	}
	_ = e.sleep(ctx, delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
