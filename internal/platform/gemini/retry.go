package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/vocabflow/internal/generation"
	"google.golang.org/genai"
)

// generateJSON sends prompt and decodes the JSON answer into out, retrying
// transient failures up to config.MaxRetries times.
func (g *Generator) generateJSON(ctx context.Context, prompt string, schema *genai.Schema, out any) error {
	maxRetries := g.config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := time.Duration(g.config.RetryDelaySeconds) * time.Second
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	for attempt := 0; ; attempt++ {
		g.logger.DebugContext(ctx, "calling Gemini API",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries+1))

		resp, err := g.models.GenerateContent(ctx, g.config.ModelName, genai.Text(prompt), cfg)
		if err == nil {
			err = decodeResponse(resp, out)
			if err == nil {
				return nil
			}
		}

		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
		if !isTransient(err) {
			g.logger.WarnContext(ctx, "Gemini call failed permanently",
				slog.Int("attempt", attempt+1), slog.String("error", err.Error()))
			if errors.Is(err, generation.ErrInvalidResponse) || errors.Is(err, generation.ErrContentBlocked) {
				return err
			}
			return fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
		}
		if attempt >= maxRetries {
			g.logger.WarnContext(ctx, "maximum retry attempts reached",
				slog.Int("max_retries", maxRetries), slog.String("error", err.Error()))
			return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, maxRetries, err)
		}

		delay := backoff(baseDelay, attempt)
		g.logger.InfoContext(ctx, "retrying Gemini call after delay",
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
		if err := g.wait(ctx, delay); err != nil {
			return fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		}
	}
}

// backoff returns base * 2^attempt scaled by a jitter factor in [0.5, 1).
func backoff(base time.Duration, attempt int) time.Duration {
	d := float64(base) * math.Pow(2, float64(attempt))
	return time.Duration(d * (0.5 + rand.Float64()*0.5))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// isTransient reports whether a failed call is worth retrying. Rate limits,
// server errors and transport failures are; client errors and bad model
// output are not.
func isTransient(err error) bool {
	if errors.Is(err, generation.ErrInvalidResponse) || errors.Is(err, generation.ErrContentBlocked) {
		return false
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

func decodeResponse(resp *genai.GenerateContentResponse, out any) error {
	if resp == nil {
		return fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety {
		return fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, cand.FinishReason)
	}
	if cand.Content == nil {
		return fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	if err := json.Unmarshal([]byte(text.String()), out); err != nil {
		return fmt.Errorf("%w: failed to parse JSON response: %v", generation.ErrInvalidResponse, err)
	}
	return nil
}
