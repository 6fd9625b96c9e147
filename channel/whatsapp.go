package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WhatsAppAdapter delivers messages through a WhatsApp Business API
// gateway (Cloud API compatible).
type WhatsAppAdapter struct {
	GatewayURL string
	APIKey     string
	FromNumber string

	client *http.Client
}

func NewWhatsAppAdapter(gatewayURL, apiKey, fromNumber string) *WhatsAppAdapter {
	return &WhatsAppAdapter{
		GatewayURL: gatewayURL,
		APIKey:     apiKey,
		FromNumber: fromNumber,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppPayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

func (a *WhatsAppAdapter) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(whatsAppPayload{
		MessagingProduct: "whatsapp",
		To:               msg.To,
		Type:             "text",
		Text:             whatsAppText{Body: msg.Body},
	})
	if err != nil {
		return fmt.Errorf("failed to encode WhatsApp payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", a.GatewayURL, a.FromNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build WhatsApp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("WhatsApp gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("WhatsApp gateway returned status %d", resp.StatusCode)
	}
	return nil
}
