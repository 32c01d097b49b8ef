package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// GeminiService implements OutreachAssistant on the Gemini REST API
type GeminiService struct {
	ApiKey string
}

// NewGeminiService creates a new GeminiService
func NewGeminiService(apiKey string) *GeminiService {
	return &GeminiService{ApiKey: apiKey}
}

func (g *GeminiService) GenerateContent(ctx context.Context, lead LeadBrief, channel string) (*OutreachContent, error) {
	prompt := fmt.Sprintf(`You are a B2B sales assistant writing first-contact outreach.

LEAD:
- Business: %s
- Funnel status: %s
- Compatibility score: %d/100
- Notes: %s

CHANNEL: %s

Write the outreach content for this channel. Respond with ONLY a JSON object:
{"subject": "...", "body": "...", "talking_points": ["...", "..."]}

Rules:
- subject only matters for email, leave it empty otherwise
- body is the message text (or call script for voice)
- 2-4 short talking_points
- Professional, concise, no placeholders like [name]`,
		lead.BusinessName, lead.Status, lead.Score, lead.Notes, channel)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var content OutreachContent
	if err := json.Unmarshal([]byte(extractJSON(text)), &content); err != nil {
		return nil, fmt.Errorf("failed to parse generated content: %w", err)
	}
	if content.Body == "" {
		return nil, fmt.Errorf("Gemini returned empty body")
	}
	return &content, nil
}

func (g *GeminiService) ProposeRevisions(ctx context.Context, planJSON, instruction string) ([]RevisionProposal, error) {
	prompt := fmt.Sprintf(`You are revising an outreach plan based on an operator instruction.

CURRENT PLAN (JSON):
%s

OPERATOR INSTRUCTION:
%s

Respond with ONLY a JSON array of per-lead changes. Only include leads whose entry should change; leads you omit stay as they are. Never invent lead ids that are not in the plan.
[{"lead_id": "...", "included": true, "channel": "voice|whatsapp|email", "priority": 1, "reason": "...", "talking_points": ["..."]}]`,
		planJSON, instruction)

	text, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var proposals []RevisionProposal
	if err := json.Unmarshal([]byte(extractJSON(text)), &proposals); err != nil {
		return nil, fmt.Errorf("failed to parse revision proposals: %w", err)
	}
	return proposals, nil
}

// generate performs one text completion round trip.
func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	url := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent?key=" + g.ApiKey

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
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}
	return "", fmt.Errorf("unexpected Gemini response shape")
}

// extractJSON strips markdown code fences the model sometimes wraps
// around its JSON output.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
