package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow-api/internal/domain/deposit"
)

// EmailSender delivers templated email. Satisfied by the email package.
type EmailSender interface {
	SendTemplate(ctx context.Context, to, toName, templateName, subject string, data interface{}) error
}

// SMSSender delivers a short text message.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// PushSender delivers push notifications to device tokens.
type PushSender interface {
	SendMultiple(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// ContactDirectory resolves a merchant's delivery endpoints.
type ContactDirectory interface {
	Contact(ctx context.Context, merchantID uuid.UUID) (*MerchantContact, error)
}

// MerchantContact holds a merchant's delivery endpoints.
type MerchantContact struct {
	Email        string
	Name         string
	Phone        string
	DeviceTokens []string
}

// Service persists notifications and dispatches them over the requested
// channels. Channel delivery is fire-and-forget: failures are logged, the
// in-app record always remains.
type Service struct {
	repo      Repository
	hub       *Hub
	email     EmailSender
	sms       SMSSender
	push      PushSender
	directory ContactDirectory
}

// NewService creates notification service. hub and any sender may be nil.
func NewService(repo Repository, hub *Hub, email EmailSender, sms SMSSender, push PushSender, directory ContactDirectory) *Service {
	return &Service{
		repo:      repo,
		hub:       hub,
		email:     email,
		sms:       sms,
		push:      push,
		directory: directory,
	}
}

// Notify persists the notification and dispatches it over its channels.
func (s *Service) Notify(ctx context.Context, n *Notification) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if err := s.repo.Create(ctx, n); err != nil {
		log.Error().Err(err).
			Str("merchant_id", n.MerchantID.String()).
			Str("type", string(n.Type)).
			Msg("failed to persist notification")
		return
	}

	s.dispatch(ctx, n)
}

func (s *Service) dispatch(ctx context.Context, n *Notification) {
	var contact *MerchantContact
	if s.directory != nil {
		c, err := s.directory.Contact(ctx, n.MerchantID)
		if err != nil {
			log.Error().Err(err).
				Str("merchant_id", n.MerchantID.String()).
				Msg("failed to resolve merchant contact")
		} else {
			contact = c
		}
	}

	body := ""
	if n.Message.Valid {
		body = n.Message.String
	}

	for _, channel := range n.Channels {
		switch deposit.Channel(channel) {
		case deposit.ChannelDashboard:
			s.publishDashboard(n)
		case deposit.ChannelEmail:
			if s.email != nil && contact != nil && contact.Email != "" {
				if err := s.email.SendTemplate(ctx, contact.Email, contact.Name, string(n.Type), n.Title, n.GetData()); err != nil {
					log.Error().Err(err).Str("merchant_id", n.MerchantID.String()).Msg("email alert delivery failed")
				}
			}
		case deposit.ChannelSMS:
			if s.sms != nil && contact != nil && contact.Phone != "" {
				if err := s.sms.Send(ctx, contact.Phone, n.Title+": "+body); err != nil {
					log.Error().Err(err).Str("merchant_id", n.MerchantID.String()).Msg("sms alert delivery failed")
				}
			}
		case deposit.ChannelPush:
			if s.push != nil && contact != nil && len(contact.DeviceTokens) > 0 {
				if err := s.push.SendMultiple(ctx, contact.DeviceTokens, n.Title, body, map[string]string{"type": string(n.Type)}); err != nil {
					log.Error().Err(err).Str("merchant_id", n.MerchantID.String()).Msg("push alert delivery failed")
				}
			}
		}
	}
}

func (s *Service) publishDashboard(n *Notification) {
	if s.hub == nil {
		return
	}

	unread, _ := s.repo.CountUnread(context.Background(), n.MerchantID)
	payload := map[string]interface{}{
		"type": "notification:new",
		"data": map[string]interface{}{
			"notification": ToResponse(n),
			"unread_count": unread,
		},
	}
	if err := s.hub.Publish(n.MerchantID, payload); err != nil {
		log.Error().Err(err).Str("merchant_id", n.MerchantID.String()).Msg("dashboard alert delivery failed")
	}
}

// LowBalance satisfies the deposit engine's notifier contract.
func (s *Service) LowBalance(ctx context.Context, d *deposit.Deposit, tier deposit.Tier, channels []deposit.Channel) {
	level := LevelWarning
	if tier == deposit.TierCritical {
		level = LevelCritical
	}

	n := &Notification{
		MerchantID: d.MerchantID,
		Type:       TypeLowBalance,
		Level:      level,
		Title:      fmt.Sprintf("Deposit balance is %s", tier),
		Channels:   channelStrings(channels),
	}
	n.Message.String = fmt.Sprintf("Your deposit balance is %s. Recharge to keep receiving leads.", d.CurrentBalance)
	n.Message.Valid = true
	n.SetData(&NotificationData{
		DepositID:      &d.ID,
		Tier:           string(tier),
		CurrentBalance: d.CurrentBalance.String(),
	})

	s.Notify(ctx, n)
}

// Depleted satisfies the deposit engine's notifier contract.
func (s *Service) Depleted(ctx context.Context, d *deposit.Deposit, campaignPaused bool) {
	n := &Notification{
		MerchantID: d.MerchantID,
		Type:       TypeDepositDepleted,
		Level:      LevelCritical,
		Title:      "Deposit depleted",
		Channels:   channelStrings(deposit.ChannelsFor(deposit.TierDepleted)),
	}

	msg := "Your deposit has run out. New leads are no longer routed to you."
	if campaignPaused {
		msg += " Affected campaigns have been paused."
	}
	n.Message.String = msg
	n.Message.Valid = true

	data := &NotificationData{DepositID: &d.ID, Tier: string(deposit.TierDepleted)}
	if d.CampaignID.Valid {
		id := d.CampaignID.UUID
		data.CampaignID = &id
	}
	n.SetData(data)

	s.Notify(ctx, n)
}

// AutoRechargeApplied records an automatic top-up.
func (s *Service) AutoRechargeApplied(ctx context.Context, merchantID, depositID uuid.UUID, amount string) {
	n := &Notification{
		MerchantID: merchantID,
		Type:       TypeAutoRecharge,
		Level:      LevelInfo,
		Title:      "Automatic recharge applied",
		Channels:   []string{string(deposit.ChannelEmail), string(deposit.ChannelDashboard)},
	}
	n.Message.String = fmt.Sprintf("Your deposit was automatically topped up by %s.", amount)
	n.Message.Valid = true
	n.SetData(&NotificationData{DepositID: &depositID, Amount: amount})

	s.Notify(ctx, n)
}

// LeadReceived records a newly routed lead.
func (s *Service) LeadReceived(ctx context.Context, merchantID, leadID uuid.UUID, amount string) {
	n := &Notification{
		MerchantID: merchantID,
		Type:       TypeLeadReceived,
		Level:      LevelInfo,
		Title:      "New lead received",
		Channels:   []string{string(deposit.ChannelDashboard), string(deposit.ChannelPush)},
	}
	n.Message.String = fmt.Sprintf("A new lead was routed to you. %s has been reserved from your deposit.", amount)
	n.Message.Valid = true
	n.SetData(&NotificationData{LeadID: &leadID, Amount: amount})

	s.Notify(ctx, n)
}

// LeadValidated records a charged lead.
func (s *Service) LeadValidated(ctx context.Context, merchantID, leadID uuid.UUID, amount string) {
	n := &Notification{
		MerchantID: merchantID,
		Type:       TypeLeadValidated,
		Level:      LevelInfo,
		Title:      "Lead validated",
		Channels:   []string{string(deposit.ChannelDashboard)},
	}
	n.Message.String = fmt.Sprintf("A lead was validated and %s was charged to your deposit.", amount)
	n.Message.Valid = true
	n.SetData(&NotificationData{LeadID: &leadID, Amount: amount})

	s.Notify(ctx, n)
}

// LeadRejected records a released lead.
func (s *Service) LeadRejected(ctx context.Context, merchantID, leadID uuid.UUID, amount string) {
	n := &Notification{
		MerchantID: merchantID,
		Type:       TypeLeadRejected,
		Level:      LevelInfo,
		Title:      "Lead rejected",
		Channels:   []string{string(deposit.ChannelDashboard)},
	}
	n.Message.String = fmt.Sprintf("A lead was rejected and %s was returned to your available balance.", amount)
	n.Message.Valid = true
	n.SetData(&NotificationData{LeadID: &leadID, Amount: amount})

	s.Notify(ctx, n)
}

// List returns the merchant's notifications, newest first.
func (s *Service) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByMerchant(ctx, merchantID, limit, offset)
}

// UnreadCount returns the merchant's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, merchantID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, merchantID)
}

// MarkAsRead marks one notification read.
func (s *Service) MarkAsRead(ctx context.Context, id, merchantID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, merchantID)
}

// MarkAllAsRead marks all of the merchant's notifications read.
func (s *Service) MarkAllAsRead(ctx context.Context, merchantID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, merchantID)
}

func channelStrings(channels []deposit.Channel) []string {
	out := make([]string, 0, len(channels))
	for _, c := range channels {
		out = append(out, string(c))
	}
	return out
}
