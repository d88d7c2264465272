package telegram

import (
	"context"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// MissingChannels returns the active channels the user has not joined.
// A channel whose membership cannot be checked counts as missing.
func MissingChannels(ctx context.Context, api API, channels ports.ChannelRepository, userID int64, logger *slog.Logger) ([]domain.Channel, error) {
	active, err := channels.ActiveChannels(ctx)
	if err != nil {
		return nil, err
	}
	var missing []domain.Channel
	for _, ch := range active {
		member, err := api.ChatMemberOf(&tele.Chat{ID: ch.ChannelID}, &tele.User{ID: userID})
		if err != nil {
			logger.Warn("Membership check failed", "channel_id", ch.ChannelID, "user_id", userID, "err", err)
			missing = append(missing, ch)
			continue
		}
		if member.Role == tele.Left || member.Role == tele.Kicked {
			missing = append(missing, ch)
		}
	}
	return missing, nil
}

// subscriptionView lists the channels to join as link buttons.
func subscriptionView(missing []domain.Channel) (string, *tele.ReplyMarkup) {
	rows := make([][]tele.InlineButton, 0, len(missing))
	for _, ch := range missing {
		if ch.Link == "" {
			continue
		}
		rows = append(rows, []tele.InlineButton{{Text: ch.Name, URL: ch.Link}})
	}
	return "To use the bot, please subscribe to our channels:", &tele.ReplyMarkup{InlineKeyboard: rows}
}

// RequireSubscription stops updates from users missing a required channel
// and tells them what to join.
func (b *Bot) RequireSubscription(channels ports.ChannelRepository) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}
			missing, err := MissingChannels(b.ctx, b.api, channels, sender.ID, b.logger)
			if err != nil {
				b.logger.Error("Channel list unavailable, letting update through", "err", err)
				return next(c)
			}
			if len(missing) == 0 {
				return next(c)
			}
			if c.Callback() != nil {
				_ = c.Respond()
			}
			text, markup := subscriptionView(missing)
			return c.Send(text, markup)
		}
	}
}
