package email

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"github.com/rs/zerolog/log"
)

// Sender interface for sending emails
type Sender interface {
	Send(ctx context.Context, msg *EmailMessage) error
	SendTemplate(ctx context.Context, to, toName, templateName, subject string, data interface{}) error
}

// Service handles email sending with templates
type Service struct {
	client       *SendGridClient
	templates    map[string]*template.Template
	baseTemplate *template.Template
	queue        chan *QueuedEmail
	wg           sync.WaitGroup
}

// QueuedEmail represents an email in the send queue
type QueuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// NewService creates email service
func NewService(config SendGridConfig) *Service {
	s := &Service{
		client:    NewSendGridClient(config),
		templates: make(map[string]*template.Template),
		queue:     make(chan *QueuedEmail, 100),
	}

	// Load base template
	s.baseTemplate, _ = template.New("base").Parse(BaseTemplate)

	// Load all templates
	s.loadTemplates()

	// Start async worker
	s.wg.Add(1)
	go s.worker()

	return s
}

// loadTemplates loads all email templates. Template names follow the
// notification type they announce.
func (s *Service) loadTemplates() {
	templates := map[string]string{
		"low_balance":      LowBalanceTemplate,
		"deposit_depleted": DepositDepletedTemplate,
		"auto_recharge":    AutoRechargeTemplate,
		"campaign_paused":  CampaignPausedTemplate,
		"lead_received":    LeadReceivedTemplate,
		"lead_validated":   LeadValidatedTemplate,
		"lead_rejected":    LeadRejectedTemplate,
		"daily_report":     DailyReportTemplate,
	}

	for name, content := range templates {
		tmpl, err := template.New(name).Parse(content)
		if err != nil {
			log.Error().Err(err).Str("template", name).Msg("Failed to parse email template")
			continue
		}
		s.templates[name] = tmpl
	}
}

// worker processes queued emails asynchronously
func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		ctx := context.Background()
		if err := s.send(ctx, email); err != nil {
			log.Error().Err(err).
				Str("to", email.To).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
	}
}

// send actually sends the email
func (s *Service) send(ctx context.Context, email *QueuedEmail) error {
	// Render template
	tmpl, ok := s.templates[email.TemplateName]
	if !ok {
		log.Warn().Str("template", email.TemplateName).Msg("Template not found")
		return nil
	}

	var contentBuf bytes.Buffer
	if err := tmpl.Execute(&contentBuf, email.Data); err != nil {
		return err
	}

	// Wrap in base template
	var htmlBuf bytes.Buffer
	if err := s.baseTemplate.Execute(&htmlBuf, map[string]interface{}{
		"Content": template.HTML(contentBuf.String()),
	}); err != nil {
		return err
	}

	return s.client.Send(ctx, &EmailMessage{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: htmlBuf.String(),
	})
}

// Send renders nothing and sends the message as-is.
func (s *Service) Send(ctx context.Context, msg *EmailMessage) error {
	return s.client.Send(ctx, msg)
}

// SendTemplate sends a templated email synchronously (blocking).
func (s *Service) SendTemplate(ctx context.Context, to, toName, templateName, subject string, data interface{}) error {
	return s.send(ctx, &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	})
}

// Queue adds an email to the async send queue
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("to", to).Msg("Email queue full, dropping email")
	}
}

// Close stops the email worker
func (s *Service) Close() {
	close(s.queue)
	s.wg.Wait()
}

// --- Convenience methods for specific emails ---

// SendLowBalance warns the merchant about a deposit entering an alert tier
func (s *Service) SendLowBalance(to, toName, depositID, balance, tier, rechargeURL string) {
	s.Queue(to, toName, "low_balance", "⚠️ Баланс депозита на исходе", map[string]string{
		"DepositID":      depositID,
		"CurrentBalance": balance,
		"Tier":           tier,
		"RechargeURL":    rechargeURL,
	})
}

// SendDepositDepleted notifies the merchant that the deposit hit zero
func (s *Service) SendDepositDepleted(to, toName, rechargeURL string) {
	s.Queue(to, toName, "deposit_depleted", "🛑 Депозит исчерпан", map[string]string{
		"RechargeURL": rechargeURL,
	})
}

// SendLeadReceived notifies the merchant about a fresh lead
func (s *Service) SendLeadReceived(to, toName, contactName, leadURL string) {
	s.Queue(to, toName, "lead_received", "📩 Новый лид", map[string]string{
		"ContactName": contactName,
		"LeadURL":     leadURL,
	})
}
