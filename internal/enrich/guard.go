// internal/enrich/guard.go
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Unavailable is stored instead of a summary whenever the model cannot answer in time.
const Unavailable = "AI unavailable"

// DefaultTimeout bounds a single summarization.
const DefaultTimeout = 8 * time.Second

const promptTemplate = "Classify this commit message: %s"

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Guard wraps a Generator with a wall-clock timeout and absorbs every failure.
type Guard struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewGuard returns a Guard. A nil gen disables enrichment: every call yields Unavailable.
func NewGuard(gen Generator, timeout time.Duration, logger *slog.Logger) *Guard {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Guard{gen: gen, timeout: timeout, logger: logger}
}

type generation struct {
	text string
	err  error
}

// Summarize returns the model's classification of a commit message, or Unavailable.
// It never blocks longer than the configured timeout. A call that overruns is
// abandoned; its goroutine finishes on its own once the model returns.
func (g *Guard) Summarize(ctx context.Context, message string) string {
	if g == nil || g.gen == nil {
		return Unavailable
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan generation, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generation{err: fmt.Errorf("generator panicked: %v", r)}
			}
		}()
		text, err := g.gen.Generate(ctx, fmt.Sprintf(promptTemplate, message))
		done <- generation{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			g.logger.Warn("AI enrichment failed", "error", res.err)
			return Unavailable
		}
		text := strings.TrimSpace(res.text)
		if text == "" {
			g.logger.Warn("AI enrichment returned an empty response")
			return Unavailable
		}
		return text
	case <-ctx.Done():
		g.logger.Warn("AI enrichment timed out", "timeout", g.timeout.String())
		return Unavailable
	}
}
