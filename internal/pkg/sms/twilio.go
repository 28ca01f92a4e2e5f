package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioConfig holds Twilio SMS configuration
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// TwilioClient sends SMS through the Twilio Messages API
type TwilioClient struct {
	config     TwilioConfig
	httpClient *http.Client
}

// NewTwilioClient creates a new Twilio client
func NewTwilioClient(config TwilioConfig) *TwilioClient {
	return &TwilioClient{
		config: config,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send sends one SMS to the given phone number (E.164 format).
func (c *TwilioClient) Send(ctx context.Context, to, body string) error {
	if c.config.AccountSID == "" || c.config.AuthToken == "" {
		return fmt.Errorf("twilio config error: credentials are empty")
	}
	if to == "" {
		return fmt.Errorf("validation error: recipient number is empty")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.config.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", c.config.AccountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.config.AccountSID, c.config.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("twilio returned status %d", resp.StatusCode)
	}

	return nil
}
