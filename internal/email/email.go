package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultResendEndpoint = "https://api.resend.com/emails"
	defaultSender         = "PropDesk <onboarding@resend.dev>"
)

// --- LogSender (for development) ---

// LogSender writes emails to the log instead of sending them.
type LogSender struct {
	senderAddress string
	logger        *slog.Logger
}

// NewLogSender creates a LogSender. A nil logger means slog.Default().
func NewLogSender(senderAddress string, logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{senderAddress: senderAddress, logger: logger}
}

// Send logs the email content.
func (s *LogSender) Send(to, subject, htmlBody string) error {
	s.logger.Info("Email sent (logged)",
		slog.String("from", s.senderAddress),
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", htmlBody))
	return nil
}

// --- ResendSender (for production) ---

// ResendSender sends emails using the Resend API.
type ResendSender struct {
	apiKey        string
	senderAddress string
	endpoint      string
	client        *http.Client
}

// NewResendSender creates a sender for the Resend API.
func NewResendSender(apiKey, senderAddress string) *ResendSender {
	return &ResendSender{
		apiKey:        apiKey,
		senderAddress: senderAddress,
		endpoint:      defaultResendEndpoint,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

type resendPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type resendError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Send dispatches an email using the Resend API.
func (s *ResendSender) Send(to, subject, htmlBody string) error {
	sender := s.senderAddress
	if sender == "" {
		sender = defaultSender
	}

	body, err := json.Marshal(resendPayload{
		From:    sender,
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal resend payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr resendError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("resend API returned an error: status %d", resp.StatusCode)
	}

	slog.Info("Successfully sent email via Resend", "to", to, "subject", subject)
	return nil
}
