package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("sms provider is not configured")

// Config holds Fast2SMS settings.
type Config struct {
	APIKey   string
	Route    string // "q" (quick), "dlt" or "v3" (promotional)
	SenderID string // DLT and v3 routes
	BaseURL  string
}

// Fast2SMSService sends text messages through Fast2SMS (India).
type Fast2SMSService struct {
	apiKey   string
	route    string
	senderID string
	baseURL  string
	client   *http.Client
}

// NewFast2SMSService returns nil and ErrNotConfigured when no API key is set.
func NewFast2SMSService(cfg Config) (*Fast2SMSService, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	route := strings.ToLower(cfg.Route)
	switch route {
	case "":
		route = "q"
	case "q", "dlt", "v3":
	default:
		return nil, fmt.Errorf("unknown sms route %q", cfg.Route)
	}
	if route != "q" && cfg.SenderID == "" {
		return nil, fmt.Errorf("%w: sender id required for route %s", ErrNotConfigured, route)
	}
	base := cfg.BaseURL
	if base == "" {
		base = "https://www.fast2sms.com/dev/bulkV2"
	}
	return &Fast2SMSService{
		apiKey:   cfg.APIKey,
		route:    route,
		senderID: cfg.SenderID,
		baseURL:  base,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *Fast2SMSService) Name() string {
	return "Fast2SMS"
}

// requestURL builds the GET url for one message. Fast2SMS wants bare ten
// digit Indian numbers.
func (s *Fast2SMSService) requestURL(phone, message string) string {
	q := url.Values{}
	q.Set("authorization", s.apiKey)
	q.Set("route", s.route)
	q.Set("message", message)
	q.Set("numbers", LocalNumber(phone))
	q.Set("flash", "0")
	if s.route != "q" {
		q.Set("sender_id", s.senderID)
	}
	if s.route != "dlt" {
		q.Set("language", "english")
	}
	return s.baseURL + "?" + q.Encode()
}

func (s *Fast2SMSService) Send(ctx context.Context, phone, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.requestURL(phone, message), nil)
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("SMS API error (status %d): %s", resp.StatusCode, string(body))
	}

	// A 200 can still carry "return": false.
	var apiResp struct {
		Return  bool            `json:"return"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("SMS API returned unreadable body: %s", string(body))
	}
	if !apiResp.Return {
		return fmt.Errorf("SMS API error: %s", string(apiResp.Message))
	}
	return nil
}

// LocalNumber keeps the last ten digits of phone.
func LocalNumber(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}
