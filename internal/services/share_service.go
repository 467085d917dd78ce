package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/sms"
	"jobcard-backend/internal/whatsapp"
)

// ShareLinks is what the share menu offers for one job card.
type ShareLinks struct {
	Summary  string `json:"summary"`
	WhatsApp string `json:"whatsapp"`
	Email    string `json:"email"`
	Provider string `json:"provider,omitempty"`
	SMS      string `json:"smsProvider,omitempty"`
}

// MessageSender delivers a text message to one phone number.
type MessageSender interface {
	Send(ctx context.Context, phone, message string) error
	Name() string
}

// ShareService builds share text for job cards and, when a WhatsApp or
// SMS provider is configured, sends it directly.
type ShareService struct {
	JobCards *JobCardService
	Provider whatsapp.Provider
	SMS      MessageSender
}

func NewShareService(jobCards *JobCardService, provider whatsapp.Provider) *ShareService {
	return &ShareService{JobCards: jobCards, Provider: provider}
}

// ShareSummary is the plain text message shared for a card.
func ShareSummary(card models.JobCard) string {
	status := "Pending"
	if card.IsCompleted {
		status = "Completed"
	}
	var b strings.Builder
	b.WriteString("Job Card Summary:\n")
	fmt.Fprintf(&b, "Customer: %s\n", card.CustomerName)
	fmt.Fprintf(&b, "Charge No: %s\n", card.ChargeNo)
	fmt.Fprintf(&b, "Parts: %d part(s)\n", len(card.Parts))
	fmt.Fprintf(&b, "Weight: %s KGS\n", jobcard.FormatKGS(jobcard.TotalWeight(card)))
	fmt.Fprintf(&b, "Status: %s", status)
	return b.String()
}

// encodeText escapes text for a query value, with spaces as %20 so the
// message survives apps that do not decode '+'.
func encodeText(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func WhatsAppLink(text string) string {
	return "https://wa.me/?text=" + encodeText(text)
}

func MailtoLink(subject, body string) string {
	return "mailto:?subject=" + encodeText(subject) + "&body=" + encodeText(body)
}

func (s *ShareService) Links(ctx context.Context, id string) (ShareLinks, error) {
	card, err := s.JobCards.Store.Get(ctx, id)
	if err != nil {
		return ShareLinks{}, err
	}
	text := ShareSummary(card)
	links := ShareLinks{
		Summary:  text,
		WhatsApp: WhatsAppLink(text),
		Email:    MailtoLink("Job Card - "+card.CustomerName, text),
	}
	if s.Provider != nil {
		links.Provider = s.Provider.Name()
	}
	if s.SMS != nil {
		links.SMS = s.SMS.Name()
	}
	return links, nil
}

// SendWhatsApp sends the summary through the configured provider.
func (s *ShareService) SendWhatsApp(ctx context.Context, id, phone string) error {
	if s.Provider == nil {
		return whatsapp.ErrNotConfigured
	}
	return s.send(ctx, s.Provider, id, phone)
}

func (s *ShareService) SendSMS(ctx context.Context, id, phone string) error {
	if s.SMS == nil {
		return sms.ErrNotConfigured
	}
	return s.send(ctx, s.SMS, id, phone)
}

func (s *ShareService) send(ctx context.Context, via MessageSender, id, phone string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("%w: phone is required", jobcard.ErrInvalidValue)
	}
	card, err := s.JobCards.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := via.Send(ctx, phone, ShareSummary(card)); err != nil {
		return fmt.Errorf("send via %s: %w", via.Name(), err)
	}
	log.Printf("[Share] Job card %s sent to %s via %s", id, whatsapp.FormatPhoneNumber(phone), via.Name())
	return nil
}
