package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/preyalameta02/balance-sheet-analysis/internal/llm"
)

// ErrNotConfigured means no API key was found, so callers should use the
// fallback answerer instead.
var ErrNotConfigured = errors.New("openai api key not configured")

// Available implements llm.Completer.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}

// Complete implements llm.Completer over the chat/completions endpoint and
// returns the first choice's content.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Available() {
		return "", ErrNotConfigured
	}

	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.chat.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(user),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSONWithRetry(ctx, c.http, endpoint, body, headers, c.cfg.MaxRetries, c.logger)
	if err != nil {
		c.logger.Error("llm.chat.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.chat.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.chat.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in openai response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("llm.chat.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
