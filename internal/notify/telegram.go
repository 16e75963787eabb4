package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"maqraa/internal/booking"
	"maqraa/internal/slots"
)

// TelegramSender alerts the school's admins about new reservations.
type TelegramSender struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
}

// NewTelegramSender creates a sender for the given bot token and admin
// chats.
func NewTelegramSender(token string, chatIDs []int64) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot, chatIDs: chatIDs}, nil
}

// Send delivers the admin alert to every configured chat.
func (s *TelegramSender) Send(_ context.Context, c booking.Confirmation) error {
	text := formatAdminAlert(c)
	for _, chatID := range s.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := s.bot.Send(msg); err != nil {
			return fmt.Errorf("send to chat %d: %w", chatID, err)
		}
	}
	return nil
}

func formatAdminAlert(c booking.Confirmation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New reservation %s\n", c.ID)
	fmt.Fprintf(&b, "Slot: %s\n", c.SlotID)
	fmt.Fprintf(&b, "Mode: %s\n", c.Mode)
	if len(c.BookedDays) > 0 {
		names := make([]string, 0, len(c.BookedDays))
		for _, d := range c.BookedDays {
			names = append(names, slots.WeekdayName(d))
		}
		fmt.Fprintf(&b, "Days: %s\n", strings.Join(names, ", "))
	}
	if len(c.ConflictDays) > 0 {
		names := make([]string, 0, len(c.ConflictDays))
		for _, d := range c.ConflictDays {
			names = append(names, slots.WeekdayName(d))
		}
		fmt.Fprintf(&b, "Not booked (taken): %s\n", strings.Join(names, ", "))
	}
	return b.String()
}
