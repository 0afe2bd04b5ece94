// Package ai is the client for the AI gateway — any OpenAI-compatible
// chat-completions endpoint (OpenAI itself, a proxy, or a local server).
//
// The package exposes two call shapes:
//   - Complete: one request, one full response body. Used for question
//     generation and interview feedback, where we need the whole JSON
//     payload before we can do anything with it.
//   - Stream: server-sent events, token by token. Used for interview
//     dialogue so the candidate sees the interviewer "typing".
//
// Prompt construction and response parsing live in prompts.go / parse.go as
// pure functions — they're the testable part, and keeping them off the
// Client means tests never need a network.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Message is one chat turn in the gateway's wire format.
// Role is "system", "user", or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer is the surface the service layer consumes. Tests substitute a
// scripted fake; production wires in *Client.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	// Stream sends deltas to onDelta as they arrive and returns the full
	// accumulated reply. If the upstream stream drops mid-way, the text
	// accumulated so far is returned alongside the error — callers decide
	// whether a truncated reply is worth keeping.
	Stream(ctx context.Context, messages []Message, onDelta func(delta string) error) (string, error)
}

// Config holds the gateway connection settings.
type Config struct {
	BaseURL string // e.g. "https://api.openai.com/v1"
	APIKey  string
	Model   string // e.g. "gpt-4o-mini"
	Timeout time.Duration
}

// Client talks to the chat-completions endpoint over plain net/http.
// No SDK — the wire format is three structs and an SSE loop, and owning it
// keeps us compatible with every OpenAI-workalike.
type Client struct {
	config Config
	http   *http.Client
	logger *slog.Logger
}

var _ Completer = (*Client)(nil)

// NewClient creates a Client. Timeout guards the non-streaming calls;
// streaming requests rely on the request context instead, since a healthy
// interview answer can legitimately take longer than any fixed timeout.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		config: cfg,
		// Timeout is set per-request via context so one http.Client can
		// serve both call shapes.
		http:   &http.Client{},
		logger: logger,
	}
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`
}

// chatResponse is the non-streaming response body. The gateway returns much
// more; we only unmarshal what we read.
type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// streamChunk is one SSE `data:` payload in streaming mode.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Complete sends a non-streaming chat request and returns the assistant's
// full reply text.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.send(ctx, chatRequest{
		Model:    c.config.Model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ai: reading response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ai: decoding response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("ai: response contained no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// Stream sends a streaming chat request, invoking onDelta for every content
// fragment as it arrives, and returns the accumulated reply.
//
// SSE WIRE FORMAT:
// The gateway responds with Content-Type text/event-stream. Each event is a
// line "data: {json}", events are blank-line separated, and the stream ends
// with "data: [DONE]". bufio.Scanner's default line splitting handles this —
// we just skip blank lines and strip the "data: " prefix.
//
// An onDelta error aborts the stream (the downstream client went away);
// the accumulated text is still returned so the caller can persist the
// partial transcript.
func (c *Client) Stream(ctx context.Context, messages []Message, onDelta func(delta string) error) (string, error) {
	resp, err := c.send(ctx, chatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	// A single delta is tiny, but some gateways batch — allow 1MB lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// One malformed chunk doesn't invalidate the rest of the
			// stream — log and keep reading.
			c.logger.Warn("ai: skipping malformed stream chunk", slog.String("error", err.Error()))
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		full.WriteString(delta)
		if err := onDelta(delta); err != nil {
			return full.String(), fmt.Errorf("ai: delivering delta: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		// Dropped upstream stream: hand back what we have, truncated.
		return full.String(), fmt.Errorf("ai: reading stream: %w", err)
	}

	return full.String(), nil
}

// send marshals the request and performs the HTTP call, translating
// non-2xx statuses into errors. Callers own resp.Body.
func (c *Client) send(ctx context.Context, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("ai: encoding request: %w", err)
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ai: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai: sending request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a bounded slice of the error body for the log — gateway
		// errors are short JSON, but don't trust that.
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		c.logger.Error("ai gateway returned error",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(errBody)),
		)
		return nil, fmt.Errorf("ai: gateway returned status %d", resp.StatusCode)
	}

	return resp, nil
}
