package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"outreach-backend/internal/outreach/domain"
)

// WhatsAppProvider submits messages through the WhatsApp Business Cloud
// API.
type WhatsAppProvider struct {
	apiURL      string
	accessToken string
	client      *http.Client
}

// NewWhatsAppProvider creates a WhatsAppProvider. phoneNumberID is the
// registered business phone number id.
func NewWhatsAppProvider(phoneNumberID, accessToken string) *WhatsAppProvider {
	return &WhatsAppProvider{
		apiURL:      fmt.Sprintf("https://graph.facebook.com/v20.0/%s/messages", phoneNumberID),
		accessToken: accessToken,
		client:      &http.Client{},
	}
}

func (p *WhatsAppProvider) Submit(ctx context.Context, task *domain.OutreachTask) (string, error) {
	if task.TargetPhone == "" {
		return "", fmt.Errorf("task %s has no target phone", task.ID)
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                task.TargetPhone,
		"type":              "text",
		"text":              map[string]string{"body": task.ContentPreview},
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", p.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("WhatsApp API error: %s", string(respBody))
	}

	var result struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if len(result.Messages) == 0 {
		return "", fmt.Errorf("WhatsApp API returned no message id")
	}

	log.Printf("[WhatsAppProvider] sent task %s to %s", task.ID, task.TargetPhone)
	return result.Messages[0].ID, nil
}
