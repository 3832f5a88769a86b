// Package openai is a chat-completions client for OpenAI-compatible
// endpoints. It retries transient transport failures; a malformed success
// body is returned as-is because a retry would be wasted on it.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mathsight/grader/internal/common"
	"github.com/mathsight/grader/internal/llm"
)

// Complete implements llm.Client against /chat/completions.
func (c *Client) Complete(ctx context.Context, req llm.ChatRequest) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.complete.start",
		"req_id", rid,
		"model", req.Model,
		"temp", req.Temperature,
		"messages", len(req.Messages),
		"force_json", req.ForceJSON,
	)

	body := map[string]any{
		"model":       req.Model,
		"temperature": req.Temperature,
		"messages":    req.Messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.ForceJSON {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var raw []byte
	err := c.retry.Do(ctx, c.logger, func(ctx context.Context) error {
		var sendErr error
		raw, sendErr = llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
		return sendErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.logger.Warn("llm.complete.canceled", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
			return "", ctxErr
		}
		c.logger.Error("llm.complete.exhausted",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.ServiceUnavailableError("chat completion failed", err)
	}

	// Past this point the provider answered 2xx; failures below are payload
	// defects and must not be retried.
	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.complete.no_choices",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in chat response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("llm.complete.ok",
		"req_id", rid,
		"model", req.Model,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
