package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioSender delivers messages through the Twilio Messages API
type TwilioSender struct {
	accountSID  string
	authToken   string
	fromNumber  string
	countryCode string
	baseURL     string
	client      *http.Client
	logger      *zap.Logger
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewTwilioSender creates a sender. countryCode is prefixed to national numbers.
func NewTwilioSender(accountSID, authToken, fromNumber, countryCode string, logger *zap.Logger) *TwilioSender {
	return &TwilioSender{
		accountSID:  accountSID,
		authToken:   authToken,
		fromNumber:  fromNumber,
		countryCode: countryCode,
		baseURL:     twilioBaseURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// WithBaseURL points the sender at another API host
func (t *TwilioSender) WithBaseURL(baseURL string) *TwilioSender {
	t.baseURL = strings.TrimRight(baseURL, "/")
	return t
}

// Send posts the message to Twilio
func (t *TwilioSender) Send(ctx context.Context, mobile, message string) error {
	to := mobile
	if !strings.HasPrefix(to, "+") {
		to = t.countryCode + to
	}

	data := url.Values{}
	data.Set("To", to)
	data.Set("From", t.fromNumber)
	data.Set("Body", message)

	apiURL := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.baseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(t.accountSID, t.authToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var body twilioResponse
	// error bodies are best effort
	_ = json.NewDecoder(resp.Body).Decode(&body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		if body.Message != "" {
			return fmt.Errorf("twilio API error (status %d, code %d): %s", resp.StatusCode, body.Code, body.Message)
		}
		return fmt.Errorf("twilio API error (status %d)", resp.StatusCode)
	}

	t.logger.Info("SMS sent",
		zap.String("sid", body.SID),
		zap.String("status", body.Status),
	)
	return nil
}
