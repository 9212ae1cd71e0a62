// Package mail implements the outbound Mailer collaborator against the Brevo
// transactional email API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"marketplace/config"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
)

const requestTimeout = 10 * time.Second

// brevoMailer sends transactional mail through Brevo's HTTP API. When no API
// key is configured (local development) it logs the reset link instead of
// sending anything.
type brevoMailer struct {
	apiURL     string
	apiKey     string
	fromEmail  string
	fromName   string
	resetURL   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewBrevoMailer is the constructor for brevoMailer.
func NewBrevoMailer(cfg *config.Config, logger *slog.Logger) service.Mailer {
	return &brevoMailer{
		apiURL:     cfg.Mail.APIURL,
		apiKey:     cfg.Mail.APIKey,
		fromEmail:  cfg.Mail.FromEmail,
		fromName:   cfg.Mail.FromName,
		resetURL:   cfg.Mail.ResetURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}
}

// sendEmailReq defines the structure of a Brevo send request.
type sendEmailReq struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// SendPasswordResetEmail dispatches the reset link for the given token.
func (m *brevoMailer) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s?token=%s", m.resetURL, token)

	if m.apiKey == "" {
		m.logger.Info("Mailer not configured, logging reset link instead",
			slog.String("email", email), slog.String("link", link))

		return nil
	}

	reqBody := sendEmailReq{
		Sender:  map[string]string{"email": m.fromEmail, "name": m.fromName},
		To:      []map[string]string{{"email": email}},
		Subject: "Reset your password",
		HTMLContent: fmt.Sprintf(
			`<p>We received a request to reset your password.</p><p><a href="%s">Reset password</a></p><p>This link expires in one hour. If you did not request a reset, ignore this email.</p>`,
			link,
		),
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to marshal mail request body")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(jsonBody))
	if err != nil {
		return errors.Wrap(err, "failed to create mail request")
	}
	httpReq.Header.Set("api-key", m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, "mail send request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errorBody map[string]any
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errorBody); decodeErr != nil {
			return errors.Errorf("mail API error: status %d", resp.StatusCode)
		}

		return errors.Errorf("mail API error: status %d, body: %v", resp.StatusCode, errorBody)
	}

	return nil
}
