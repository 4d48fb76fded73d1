package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GeminiGenerator calls the Gemini REST API to draft a reply template.
type GeminiGenerator struct {
	ApiKey string
}

func NewGeminiGenerator(apiKey string) *GeminiGenerator {
	return &GeminiGenerator{ApiKey: apiKey}
}

func (g *GeminiGenerator) GenerateReplyTemplate(ctx context.Context, userPrompt string) (string, error) {
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key=" + g.ApiKey

	prompt := fmt.Sprintf(`You are an assistant that drafts professional auto-reply email templates.

INSTRUCTIONS:
- Output a single self-contained HTML fragment suitable as an email body.
- Use inline styles only, no <html> or <body> wrapper.
- Use the placeholders {{sender_name}} and {{subject}} where the original
  sender's name and the original subject belong. Do not invent other
  placeholders.
- No commentary before or after the HTML.

REQUEST:
%s

HTML:`, userPrompt)

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API error: %s", string(respBody))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}

	if c, ok := result["candidates"].([]interface{}); ok && len(c) > 0 {
		if cand, ok := c[0].(map[string]interface{}); ok {
			if content, ok := cand["content"].(map[string]interface{}); ok {
				if parts, ok := content["parts"].([]interface{}); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]interface{}); ok {
						if text, ok := part["text"].(string); ok && text != "" {
							return text, nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("no template returned")
}
