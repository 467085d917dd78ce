package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("whatsapp provider is not configured")

// Provider sends a plain text message to one phone number.
type Provider interface {
	Send(ctx context.Context, phone, message string) error
	Name() string
}

// Config selects and configures a provider.
type Config struct {
	Provider      string // "cloud" or "aisensy"
	APIKey        string
	PhoneNumberID string // Cloud API sender number id
	BaseURL       string
	TemplateName  string // AiSensy campaign name
}

// NewProvider returns the configured provider, or ErrNotConfigured.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	switch strings.ToLower(cfg.Provider) {
	case "cloud", "generic", "meta":
		if cfg.PhoneNumberID == "" {
			return nil, fmt.Errorf("%w: phone number id missing", ErrNotConfigured)
		}
		return NewCloudService(cfg.APIKey, cfg.PhoneNumberID, cfg.BaseURL), nil
	case "aisensy":
		return NewAiSensyService(cfg.APIKey, cfg.TemplateName, cfg.BaseURL), nil
	case "":
		return nil, ErrNotConfigured
	}
	return nil, fmt.Errorf("unknown whatsapp provider %q", cfg.Provider)
}

// CloudService talks to the WhatsApp Business Cloud API, which most BSPs proxy.
type CloudService struct {
	apiKey        string
	phoneNumberID string
	baseURL       string
	client        *http.Client
}

func NewCloudService(apiKey, phoneNumberID, baseURL string) *CloudService {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v18.0"
	}
	return &CloudService{
		apiKey:        apiKey,
		phoneNumberID: phoneNumberID,
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts a text message. Outside the 24 hour customer window the API
// rejects free text and the error is returned as is.
func (s *CloudService) Send(ctx context.Context, phone, message string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                FormatPhoneNumber(phone),
		"type":              "text",
		"text": map[string]string{
			"preview_url": "false",
			"body":        message,
		},
	}
	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	body, status, err := postJSON(ctx, s.client, url, "Bearer "+s.apiKey, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
			return fmt.Errorf("WhatsApp API error: %s", errResp.Error.Message)
		}
		return fmt.Errorf("WhatsApp API error (status %d): %s", status, string(body))
	}
	return nil
}

func (s *CloudService) Name() string {
	return "WhatsApp Cloud"
}

// AiSensyService sends through an AiSensy campaign whose single template
// parameter is the message text.
type AiSensyService struct {
	apiKey   string
	campaign string
	baseURL  string
	client   *http.Client
}

func NewAiSensyService(apiKey, campaign, baseURL string) *AiSensyService {
	if baseURL == "" || strings.Contains(baseURL, "graph.facebook.com") {
		baseURL = "https://backend.aisensy.com/campaign/t1/api/v2"
	}
	if campaign == "" {
		campaign = "job_card_summary"
	}
	return &AiSensyService{
		apiKey:   apiKey,
		campaign: campaign,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *AiSensyService) Send(ctx context.Context, phone, message string) error {
	payload := map[string]interface{}{
		"apiKey":         s.apiKey,
		"campaignName":   s.campaign,
		"destination":    FormatPhoneNumber(phone),
		"userName":       "Customer",
		"templateParams": []string{message},
	}
	body, status, err := postJSON(ctx, s.client, s.baseURL, "", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("AiSensy API error: %s", string(body))
	}
	return nil
}

func (s *AiSensyService) Name() string {
	return "AiSensy"
}

func postJSON(ctx context.Context, client *http.Client, url, auth string, payload interface{}) ([]byte, int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode, nil
}

// FormatPhoneNumber keeps the digits and adds the 91 country code to bare
// ten digit numbers.
func FormatPhoneNumber(phone string) string {
	var b strings.Builder
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	cleaned := b.String()
	if len(cleaned) == 10 {
		return "91" + cleaned
	}
	return cleaned
}
