// Package telegram connects the scene machine to the Telegram Bot API with
// telebot: updates become machine events and views become messages.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/internal/scene"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// DefaultPollTimeout is the long polling timeout.
const DefaultPollTimeout = 10 * time.Second

// Bot receives Telegram updates for a scene machine.
type Bot struct {
	bot      *tele.Bot
	api      API
	renderer *Renderer

	pollTimeout  time.Duration
	paymentToken string
	channels     ports.ChannelRepository
	logger       *slog.Logger

	ctx context.Context
}

// Option configures a Bot.
type Option func(*Bot)

// WithPollTimeout sets the long polling timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.pollTimeout = d
		}
	}
}

// WithPaymentToken sets the payment provider token used for invoices.
func WithPaymentToken(token string) Option {
	return func(b *Bot) {
		b.paymentToken = token
	}
}

// WithSubscriptionGate requires users to join every active channel.
func WithSubscriptionGate(channels ports.ChannelRepository) Option {
	return func(b *Bot) {
		b.channels = channels
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New connects to the Bot API. The bot does not poll until Serve is called.
func New(token string, opts ...Option) (*Bot, error) {
	b := &Bot{
		pollTimeout: DefaultPollTimeout,
		logger:      logging.NewNop(),
		ctx:         context.Background(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "telegram")

	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: b.pollTimeout},
		OnError: func(err error, c tele.Context) {
			b.logger.Error("Update handler failed", "err", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	b.bot = bot
	b.api = bot
	b.renderer = NewRenderer(bot, b.paymentToken, b.logger)
	return b, nil
}

// Renderer returns the renderer and invoice sender backed by this bot.
func (b *Bot) Renderer() *Renderer {
	return b.renderer
}

// Serve routes updates to m until ctx is done.
func (b *Bot) Serve(ctx context.Context, m *scene.Machine) error {
	b.ctx = ctx
	b.routes(m)

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.bot.Start()
	}()
	b.logger.Info("Polling for updates")

	select {
	case <-ctx.Done():
		b.bot.Stop()
		<-done
		return nil
	case <-done:
		return errors.New("telegram: poller stopped")
	}
}

func (b *Bot) routes(m *scene.Machine) {
	var gate []tele.MiddlewareFunc
	if b.channels != nil {
		gate = append(gate, b.RequireSubscription(b.channels))
	}

	b.bot.Handle("/start", func(c tele.Context) error {
		return m.Start(b.ctx, target(c), user(c))
	}, gate...)

	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		return m.HandleText(b.ctx, target(c), c.Text())
	}, gate...)

	b.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		if err := c.Respond(); err != nil {
			b.logger.Debug("Callback not acknowledged", "err", err)
		}
		return m.HandleCallback(b.ctx, target(c), c.Callback().Data)
	}, gate...)

	b.bot.Handle(tele.OnCheckout, func(c tele.Context) error {
		q := c.PreCheckoutQuery()
		err := m.PreCheckout(b.ctx, q.Sender.ID, q.Currency, int64(q.Total))
		if errors.Is(err, scene.ErrCheckoutRejected) {
			return c.Accept(err.Error())
		}
		if err != nil {
			b.logger.Error("Pre-checkout validation failed", "user_id", q.Sender.ID, "err", err)
			return c.Accept(scene.NoticeRetry)
		}
		return c.Accept()
	})

	b.bot.Handle(tele.OnPayment, func(c tele.Context) error {
		p := c.Message().Payment
		address, err := json.Marshal(p.Order.Address)
		if err != nil {
			return err
		}
		return m.Paid(b.ctx, target(c), scene.Payment{
			Currency:         p.Currency,
			Total:            int64(p.Total),
			Payload:          p.Payload,
			TelegramChargeID: p.TelegramChargeID,
			ProviderChargeID: p.ProviderChargeID,
			DeliveryAddress:  string(address),
		})
	})
}

// target addresses the chat of an update. Button presses also carry the
// message to edit.
func target(c tele.Context) domain.Target {
	var t domain.Target
	if chat := c.Chat(); chat != nil {
		t.ChatID = chat.ID
	}
	if sender := c.Sender(); sender != nil {
		t.UserID = sender.ID
		if t.ChatID == 0 {
			t.ChatID = sender.ID
		}
	}
	if cb := c.Callback(); cb != nil && cb.Message != nil {
		t.MessageID = cb.Message.ID
		t.HasImage = cb.Message.Photo != nil
	}
	return t
}

func user(c tele.Context) domain.User {
	s := c.Sender()
	if s == nil {
		return domain.User{}
	}
	return domain.User{ID: s.ID, Username: s.Username, FirstName: s.FirstName}
}
