package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SMSAdapter delivers text messages through an HTTP SMS gateway.
type SMSAdapter struct {
	GatewayURL string
	APIKey     string
	FromNumber string

	client *http.Client
}

func NewSMSAdapter(gatewayURL, apiKey, fromNumber string) *SMSAdapter {
	return &SMSAdapter{
		GatewayURL: gatewayURL,
		APIKey:     apiKey,
		FromNumber: fromNumber,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

type smsPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

func (a *SMSAdapter) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(smsPayload{
		From: a.FromNumber,
		To:   msg.To,
		Body: msg.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to encode SMS payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.GatewayURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("SMS gateway returned status %d", resp.StatusCode)
	}
	return nil
}
