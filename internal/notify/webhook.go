package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"maqraa/internal/booking"
	"maqraa/internal/slots"
)

// WebhookConfig selects the delivery endpoint. Test mode is explicit
// constructor configuration, not ambient global state: when set, every
// notification goes to the test endpoint instead of the production one.
type WebhookConfig struct {
	URL      string
	TestURL  string
	TestMode bool
}

// WebhookSender posts booking confirmations to the platform's webhook
// endpoint. The payload carries weekdays in the meeting-scheduler encoding
// (1=Sunday..7=Saturday); the translation happens here and nowhere else.
type WebhookSender struct {
	config     WebhookConfig
	httpClient *http.Client
}

type webhookPayload struct {
	ConfirmationID string `json:"confirmation_id"`
	SlotID         string `json:"slot_id"`
	Mode           string `json:"mode"`
	MeetingDays    []int  `json:"meeting_days,omitempty"`
	ConflictDays   []int  `json:"conflict_days,omitempty"`
	CreatedAt      string `json:"created_at"`
	Test           bool   `json:"test,omitempty"`
}

// NewWebhookSender constructs a sender with a bounded-timeout client.
func NewWebhookSender(config WebhookConfig) *WebhookSender {
	return &WebhookSender{
		config:     config,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSender) endpoint() string {
	if s.config.TestMode && s.config.TestURL != "" {
		return s.config.TestURL
	}
	return s.config.URL
}

// Send posts the confirmation.
func (s *WebhookSender) Send(ctx context.Context, c booking.Confirmation) error {
	payload := webhookPayload{
		ConfirmationID: c.ID,
		SlotID:         c.SlotID,
		Mode:           string(c.Mode),
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		Test:           s.config.TestMode,
	}
	for _, d := range c.BookedDays {
		payload.MeetingDays = append(payload.MeetingDays, slots.MeetingAPIDay(d))
	}
	for _, d := range c.ConflictDays {
		payload.ConflictDays = append(payload.ConflictDays, slots.MeetingAPIDay(d))
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook http %d", resp.StatusCode)
	}
	return nil
}
