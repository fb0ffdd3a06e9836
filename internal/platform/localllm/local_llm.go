package localllm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const recipePrompt = `以下の食材を使って作れる料理を3つ提案してください。
また、各料理に必要な追加材料も教えてください。

食材: %s

以下の形式で回答してください：
1. 【料理名】
   - 必要な追加材料: ○○
   - 作り方の概要: ○○
   - 難易度: ★☆☆☆☆
`

// Client talks to an OpenAI-compatible local chat-completion endpoint,
// used as an offline fallback for recipe suggestions.
type Client struct {
	httpClient *http.Client
	apiURL     string
	model      string
}

// NewClient creates a new client for the local LLM.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{},
		apiURL:     "http://localhost:1234/v1/chat/completions",
		model:      "gemma-3-12b-it:2",
	}
}

// Request represents the request body for the local LLM.
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message represents a message in the request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response represents the response from the local LLM.
type Response struct {
	Choices []Choice `json:"choices"`
}

// Choice represents a choice in the response.
type Choice struct {
	Message Message `json:"message"`
}

// GenerateContent sends a prompt to the local LLM and returns the
// completion text.
func (c *Client) GenerateContent(ctx context.Context, text string) (string, error) {
	reqBody := Request{
		Model: c.model,
		Messages: []Message{
			{Role: "user", Content: text},
		},
		Temperature: 1,
		MaxTokens:   1024,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK status code: %d", resp.StatusCode)
	}

	var llmResp Response
	if err := json.NewDecoder(resp.Body).Decode(&llmResp); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(llmResp.Choices) == 0 {
		return "", fmt.Errorf("no content found in response")
	}

	return llmResp.Choices[0].Message.Content, nil
}

// SuggestRecipes asks the local LLM for recipe ideas built from the
// given ingredient list text.
func (c *Client) SuggestRecipes(ctx context.Context, ingredientText string) (string, error) {
	return c.GenerateContent(ctx, fmt.Sprintf(recipePrompt, ingredientText))
}
