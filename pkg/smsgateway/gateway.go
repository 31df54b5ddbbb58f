package smsgateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Gateway represents an SMS gateway interface
type Gateway interface {
	SendSMS(phone, message string) (string, error)
}

// HTTPGateway sends SMS through a JSON-over-HTTP provider
type HTTPGateway struct {
	BaseURL    string
	APIKey     string
	httpClient *http.Client
}

// MockGateway logs messages instead of sending them, for development and
// tests
type MockGateway struct{}

// NewHTTPGateway creates a new HTTPGateway
func NewHTTPGateway(baseURL, apiKey string) Gateway {
	return &HTTPGateway{
		BaseURL: baseURL,
		APIKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() Gateway {
	return &MockGateway{}
}

// SendSMS sends an SMS through the provider and returns its message ID
func (g *HTTPGateway) SendSMS(phone, message string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"to":      phone,
		"message": message,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, g.BaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var result struct {
		MessageID string `json:"messageId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.MessageID, nil
}

// SendSMS logs the message and returns a mock message ID
func (g *MockGateway) SendSMS(phone, message string) (string, error) {
	log.Printf("[MOCK SMS] to=%s message=%q", phone, message)
	return fmt.Sprintf("MOCK-MSG-%d", time.Now().UnixNano()), nil
}
