package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/portfolio-site/contact-backend/config"
	"github.com/portfolio-site/contact-backend/logger"
	"github.com/portfolio-site/contact-backend/types"
)

const emailJSSendPath = "/api/v1.0/email/send"

// EmailJSError is returned when EmailJS answers with a non-200 status. Text is
// the response body, which EmailJS uses for its human-readable reason.
type EmailJSError struct {
	Status int
	Text   string
}

func (e *EmailJSError) Error() string {
	return fmt.Sprintf("emailjs: status %d: %s", e.Status, e.Text)
}

type emailJSRequest struct {
	ServiceID      string             `json:"service_id"`
	TemplateID     string             `json:"template_id"`
	UserID         string             `json:"user_id"`
	AccessToken    string             `json:"accessToken,omitempty"`
	TemplateParams types.EmailPayload `json:"template_params"`
}

// EmailJSSender sends contact messages through the EmailJS REST API using a
// fixed service and template.
type EmailJSSender struct {
	baseURL    string
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
	httpClient *http.Client
}

// EmailJSOption configures an EmailJSSender.
type EmailJSOption func(*EmailJSSender)

// WithEmailJSHTTPClient sets a custom HTTP client
func WithEmailJSHTTPClient(client *http.Client) EmailJSOption {
	return func(s *EmailJSSender) {
		s.httpClient = client
	}
}

// WithEmailJSBaseURL points the sender at another API host.
func WithEmailJSBaseURL(baseURL string) EmailJSOption {
	return func(s *EmailJSSender) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func NewEmailJSSender(cfg config.EmailJSConfig, opts ...EmailJSOption) *EmailJSSender {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &EmailJSSender{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceID:  cfg.ServiceID,
		templateID: cfg.TemplateID,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	logger.GetLogger().Infow("Initializing EmailJS sender",
		"service_id", s.serviceID,
		"template_id", s.templateID,
		"public_key", logger.MaskKey(s.publicKey))

	return s
}

// SendContactEmail posts payload as the template parameters of a single send.
func (s *EmailJSSender) SendContactEmail(ctx context.Context, payload types.EmailPayload) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      s.serviceID,
		TemplateID:     s.templateID,
		UserID:         s.publicKey,
		AccessToken:    s.privateKey,
		TemplateParams: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+emailJSSendPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &EmailJSError{Status: resp.StatusCode, Text: strings.TrimSpace(string(text))}
	}

	return nil
}
