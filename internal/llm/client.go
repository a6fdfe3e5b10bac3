// internal/llm/client.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the completion gateway: an MCP-style proxy exposing an
// openrouter-gateway tool over JSON-RPC. The gateway owns model access;
// this client only builds requests, retries transient failures, and
// unwraps the assistant content from the envelope.
type Client struct {
	httpClient *http.Client
	gatewayURL string
	apiKey     string
	model      string
	maxRetries int
	retryDelay time.Duration
	log        zerolog.Logger
}

type Options struct {
	GatewayURL string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
	Logger     zerolog.Logger
}

func NewClient(opts Options) *Client {
	gatewayURL := opts.GatewayURL
	if gatewayURL == "" {
		gatewayURL = os.Getenv("MCP_PROXY_URL")
	}
	if gatewayURL == "" {
		gatewayURL = "http://mcp-compose-http-proxy:9876"
	}

	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("MCP_PROXY_API_KEY")
	}

	model := opts.Model
	if model == "" {
		model = os.Getenv("OPENROUTER_MODEL")
	}
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		model:      model,
		maxRetries: maxRetries,
		retryDelay: time.Second,
		log:        opts.Logger,
	}
}

// Complete sends one system+user prompt pair through the gateway and
// returns the assistant's message content. Transport errors and 5xx
// responses are retried with linear backoff; 4xx responses are not.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	completionRequest := map[string]interface{}{
		"model":         c.model,
		"system_prompt": systemPrompt,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": userPrompt,
			},
		},
		"max_tokens":  4000,
		"temperature": 0.2,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("retrying completion request")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}

		text, retryable, err := c.callGateway(ctx, "create_completion", completionRequest)
		if err == nil {
			return extractContent(text), nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) callGateway(ctx context.Context, toolName string, args interface{}) (string, bool, error) {
	url := fmt.Sprintf("%s/openrouter-gateway", c.gatewayURL)

	requestData := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      toolName,
			"arguments": args,
		},
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", false, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			bodyBytes = nil
		}
		retryable := resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var mcpResponse map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&mcpResponse); err != nil {
		return "", false, fmt.Errorf("failed to decode response: %w", err)
	}

	if result, ok := mcpResponse["result"].(map[string]interface{}); ok {
		if content, ok := result["content"].([]interface{}); ok && len(content) > 0 {
			if textContent, ok := content[0].(map[string]interface{}); ok {
				if text, ok := textContent["text"].(string); ok {
					return text, false, nil
				}
			}
		}
	}

	return "", false, fmt.Errorf("unexpected response format")
}

// extractContent unwraps the completion payload. The gateway returns a
// JSON object with a "content" field holding the assistant message; some
// revisions return the message text directly.
func extractContent(payload string) string {
	var completionResp map[string]interface{}
	if err := json.Unmarshal([]byte(payload), &completionResp); err != nil {
		return payload
	}
	if content, ok := completionResp["content"].(string); ok {
		return content
	}
	return payload
}
