package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// recipePrompt is the suggestion prompt sent to Gemini. The ingredient
// list is injected as "name quantityunit, ..." text.
const recipePrompt = `以下の食材を使って作れる料理を3つ提案してください。
また、各料理に必要な追加材料も教えてください。

食材: %s

以下の形式で回答してください：
1. 【料理名】
   - 必要な追加材料: ○○
   - 作り方の概要: ○○
   - 難易度: ★☆☆☆☆
`

// Client is a client for the Gemini API.
type Client struct {
	model *genai.GenerativeModel
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Client{model: client.GenerativeModel("gemini-2.0-flash")}, nil
}

// SuggestRecipes asks Gemini for recipe ideas built from the given
// ingredient list text. The response is returned as opaque text, never
// parsed.
func (c *Client) SuggestRecipes(ctx context.Context, ingredientText string) (string, error) {
	prompt := genai.Text(fmt.Sprintf(recipePrompt, ingredientText))

	resp, err := c.model.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}

	return string(text), nil
}
