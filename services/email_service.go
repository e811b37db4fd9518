package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/portfolio-site/contact-backend/config"
	"github.com/portfolio-site/contact-backend/logger"
	"github.com/portfolio-site/contact-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/resend/resend-go/v2"
)

type EmailMetrics struct {
	sendLatency prometheus.Histogram
	errorCount  prometheus.Counter
	sentCount   prometheus.Counter
}

// EmailService delivers contact messages through Resend to the site owner.
type EmailService struct {
	config  *config.EmailConfig
	emails  resend.EmailsSvc
	tmpl    *template.Template
	metrics *EmailMetrics
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return NewEmailServiceWithRegistry(cfg, prometheus.DefaultRegisterer)
}

func NewEmailServiceWithRegistry(cfg *config.EmailConfig, reg prometheus.Registerer) *EmailService {
	logger.GetLogger().Infow("Initializing email service",
		"from", cfg.FromAddress, "to", logger.MaskEmail(cfg.ToAddress), "apikey", logger.MaskKey(cfg.ResendAPIKey))
	client := resend.NewClient(cfg.ResendAPIKey)
	metrics := &EmailMetrics{
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contact_email_send_duration_seconds",
			Help:    "Time taken to send emails",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		}),
		errorCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contact_email_errors_total",
			Help: "Total number of email sending errors",
		}),
		sentCount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contact_emails_sent_total",
			Help: "Total number of emails sent",
		}),
	}

	reg.MustRegister(metrics.sendLatency)
	reg.MustRegister(metrics.errorCount)
	reg.MustRegister(metrics.sentCount)

	return &EmailService{
		config:  cfg,
		emails:  client.Emails,
		tmpl:    template.Must(template.New("contact").Parse(contactEmailTemplate)),
		metrics: metrics,
	}
}

// SendContactEmail renders payload into the contact template and sends it to
// the configured owner address. Replies go straight to the visitor.
func (s *EmailService) SendContactEmail(ctx context.Context, payload types.EmailPayload) error {
	startTime := time.Now()
	log := logger.GetLogger()
	defer func() {
		s.metrics.sendLatency.Observe(time.Since(startTime).Seconds())
	}()

	var htmlContent bytes.Buffer
	if err := s.tmpl.Execute(&htmlContent, payload); err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to execute email template", "error", err)
		return fmt.Errorf("failed to execute template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress),
		To:      []string{s.config.ToAddress},
		Subject: fmt.Sprintf("New message from %s", payload.Name),
		ReplyTo: payload.Email,
		Html:    htmlContent.String(),
		Text:    fmt.Sprintf("%s <%s> wrote at %s:\n\n%s", payload.Name, payload.Email, payload.Time, payload.Message),
	}

	resp, err := s.emails.SendWithContext(ctx, params)
	if err != nil {
		s.metrics.errorCount.Inc()
		log.Errorw("Failed to send email",
			"error", err,
			"reply_to", logger.MaskEmail(payload.Email))
		return fmt.Errorf("email send failed: %w", err)
	}

	s.metrics.sentCount.Inc()
	log.Infow("Email sent successfully",
		"id", resp.Id,
		"reply_to", logger.MaskEmail(payload.Email))

	return nil
}

const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>New contact message</title>
    <style>
        body {
            font-family: 'sans-serif';
            background-color: #f7f7f7;
            color: #333333;
            margin: 0;
            padding: 20px;
        }
        .container {
            max-width: 600px;
            margin: 20px auto;
            background-color: #ffffff;
            padding: 30px;
            border-radius: 12px;
        }
        .meta {
            font-size: 14px;
            color: #777777;
        }
        .message {
            font-size: 16px;
            line-height: 1.6;
            white-space: pre-wrap;
        }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Name}} sent you a message</h1>
        <p class="meta">{{.Email}} &middot; {{.Time}}</p>
        <p class="message">{{.Message}}</p>
    </div>
</body>
</html>`
