package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const anthropicMessagesURL = "https://api.anthropic.com/v1/messages"

// AnthropicEngine completes prompts using the Anthropic Messages API
type AnthropicEngine struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewAnthropicEngine(apiKey, model string) *AnthropicEngine {
	if model == "" {
		model = "claude-3-5-sonnet-20240620"
	}
	return &AnthropicEngine{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

func (a *AnthropicEngine) Name() string {
	return "anthropic"
}

func (a *AnthropicEngine) Complete(ctx context.Context, system, user string) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("Anthropic API key not configured")
	}

	reqBody := map[string]interface{}{
		"model":       a.model,
		"max_tokens":  2000,
		"temperature": 0.2,
		"system":      system,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", anthropicMessagesURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Anthropic API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Engine: "Anthropic", Status: resp.StatusCode, Body: string(body)}
	}

	var msgResp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("empty Anthropic response")
	}

	return msgResp.Content[0].Text, nil
}
