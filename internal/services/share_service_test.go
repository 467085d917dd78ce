package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/sms"
	"jobcard-backend/internal/whatsapp"
)

type fakeProvider struct {
	phone, message string
	err            error
}

func (f *fakeProvider) Send(_ context.Context, phone, message string) error {
	f.phone, f.message = phone, message
	return f.err
}

func (f *fakeProvider) Name() string { return "fake" }

func TestShareSummary(t *testing.T) {
	card := models.JobCard{
		CustomerName: "Acme",
		ChargeNo:     "CH-1",
		Parts: []models.PartEntry{
			{PartName: "Gear", TotalWeight: 5},
			{PartName: "Pin", TotalWeight: 0.25},
		},
		IsCompleted: true,
	}
	want := "Job Card Summary:\nCustomer: Acme\nCharge No: CH-1\nParts: 2 part(s)\nWeight: 5.250 KGS\nStatus: Completed"
	if got := ShareSummary(card); got != want {
		t.Errorf("summary =\n%s\nwant\n%s", got, want)
	}
}

func TestShareLinksEncoding(t *testing.T) {
	link := WhatsAppLink("Job Card Summary:\nCustomer: A & B")
	if !strings.HasPrefix(link, "https://wa.me/?text=") {
		t.Fatalf("link = %s", link)
	}
	if strings.Contains(link, "+") || !strings.Contains(link, "%20") || !strings.Contains(link, "%26") || !strings.Contains(link, "%0A") {
		t.Errorf("bad encoding: %s", link)
	}
	mail := MailtoLink("Job Card - Acme", "x y")
	if mail != "mailto:?subject=Job%20Card%20-%20Acme&body=x%20y" {
		t.Errorf("mailto = %s", mail)
	}
}

func TestShareSendWhatsApp(t *testing.T) {
	ctx := context.Background()
	jobs := newJobCardService(t)
	card, _ := jobs.Create(ctx, sampleCard("Acme"))

	if err := NewShareService(jobs, nil).SendWhatsApp(ctx, card.ID, "9876543210"); !errors.Is(err, whatsapp.ErrNotConfigured) {
		t.Errorf("err = %v", err)
	}

	p := &fakeProvider{}
	svc := NewShareService(jobs, p)
	if err := svc.SendWhatsApp(ctx, card.ID, "9876543210"); err != nil {
		t.Fatal(err)
	}
	if p.phone != "9876543210" || !strings.Contains(p.message, "Customer: Acme") {
		t.Errorf("sent %q to %q", p.message, p.phone)
	}

	links, err := svc.Links(ctx, card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if links.Provider != "fake" || links.Summary != p.message {
		t.Errorf("links = %+v", links)
	}
}

func TestShareSendSMS(t *testing.T) {
	ctx := context.Background()
	jobs := newJobCardService(t)
	card, _ := jobs.Create(ctx, sampleCard("Acme"))

	svc := NewShareService(jobs, nil)
	if err := svc.SendSMS(ctx, card.ID, "9876543210"); !errors.Is(err, sms.ErrNotConfigured) {
		t.Errorf("unconfigured err = %v", err)
	}

	p := &fakeProvider{}
	svc.SMS = p
	if err := svc.SendSMS(ctx, card.ID, "  "); !errors.Is(err, jobcard.ErrInvalidValue) {
		t.Errorf("blank phone err = %v", err)
	}
	if err := svc.SendSMS(ctx, card.ID, "9876543210"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(p.message, "Job Card Summary:") {
		t.Errorf("message = %q", p.message)
	}

	p.err = errors.New("gateway down")
	if err := svc.SendSMS(ctx, card.ID, "9876543210"); err == nil || !strings.Contains(err.Error(), "send via fake") {
		t.Errorf("provider failure err = %v", err)
	}

	links, _ := svc.Links(ctx, card.ID)
	if links.SMS != "fake" || links.Provider != "" {
		t.Errorf("links = %+v", links)
	}
}
