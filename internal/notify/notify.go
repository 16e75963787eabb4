// Package notify delivers booking confirmations to the platform webhook
// and admin alerts to Telegram.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"maqraa/internal/booking"
)

// Sender delivers one notification about a completed submission.
type Sender interface {
	Send(ctx context.Context, c booking.Confirmation) error
}

// RetryConfig holds retry delays for failed deliveries.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// Service fans a booking confirmation out to all configured senders, rate
// limited and retried. Delivery is best effort: a failed notification is
// logged, never surfaced to the user whose booking already committed.
type Service struct {
	senders []Sender
	limiter *rate.Limiter
	retry   RetryConfig
	logger  *zerolog.Logger
}

// NewService creates the notification service. ratePerSecond bounds
// outbound deliveries across all senders.
func NewService(senders []Sender, ratePerSecond float64, retry RetryConfig, logger *zerolog.Logger) *Service {
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &Service{
		senders: senders,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), int(ratePerSecond)+1),
		retry:   retry,
		logger:  logger,
	}
}

// BookingCreated implements booking.Notifier. Delivery runs on the calling
// goroutine; callers that must not block should spawn.
func (s *Service) BookingCreated(ctx context.Context, c booking.Confirmation) {
	for _, sender := range s.senders {
		if err := s.sendWithRetry(ctx, sender, c); err != nil {
			s.logger.Error().Err(err).
				Str("confirmation", c.ID).
				Str("slot", c.SlotID).
				Msg("notification delivery failed")
		}
	}
}

func (s *Service) sendWithRetry(ctx context.Context, sender Sender, c booking.Confirmation) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		lastErr = sender.Send(ctx, c)
		if lastErr == nil {
			return nil
		}

		if attempt < s.retry.MaxRetries && attempt < len(s.retry.RetryDelays) {
			delay := s.retry.RetryDelays[attempt]
			s.logger.Info().
				Err(lastErr).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Msg("retrying notification")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
