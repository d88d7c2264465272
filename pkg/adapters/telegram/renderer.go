package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/cthstore/storefront/internal/logging"
	"github.com/cthstore/storefront/pkg/domain"
	"github.com/cthstore/storefront/pkg/ports"
)

// API is the part of the Bot API the adapter uses. *tele.Bot implements it.
type API interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
	Edit(msg tele.Editable, what any, opts ...any) (*tele.Message, error)
	EditMedia(msg tele.Editable, media tele.Inputtable, opts ...any) (*tele.Message, error)
	Delete(msg tele.Editable) error
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Renderer delivers views as Telegram messages. A button press edits the
// message it came from; when that is impossible the old message is replaced.
type Renderer struct {
	api          API
	paymentToken string
	logger       *slog.Logger
}

var (
	_ ports.Renderer = (*Renderer)(nil)
	_ ports.Checkout = (*Renderer)(nil)
)

// NewRenderer creates a renderer on top of the Bot API.
func NewRenderer(api API, paymentToken string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Renderer{api: api, paymentToken: paymentToken, logger: logger}
}

// Render edits the target message when possible, otherwise sends a new one.
func (r *Renderer) Render(ctx context.Context, target domain.Target, view domain.View) (domain.MessageRef, error) {
	text, entities := toEntities(view.Text)
	opts := &tele.SendOptions{
		ReplyMarkup: Markup(view.Keyboard),
		Entities:    entities,
	}

	if target.MessageID != 0 {
		stored := tele.StoredMessage{ChatID: target.ChatID, MessageID: strconv.Itoa(target.MessageID)}
		if (view.Image != "") == target.HasImage {
			msg, err := r.edit(stored, view.Image, text, opts)
			switch {
			case err == nil:
				return ref(msg, target), nil
			case isNotModified(err):
				return domain.MessageRef{ChatID: target.ChatID, MessageID: target.MessageID}, nil
			case !isUneditable(err):
				return domain.MessageRef{}, err
			}
			r.logger.Debug("Message not editable, sending new", "chat_id", target.ChatID, "err", err)
		} else if err := r.api.Delete(stored); err != nil {
			// Text and photo messages cannot be edited into each other.
			r.logger.Debug("Old message not deleted", "chat_id", target.ChatID, "err", err)
		}
	}

	msg, err := r.send(&tele.Chat{ID: target.ChatID}, view.Image, text, opts)
	if err != nil {
		return domain.MessageRef{}, err
	}
	return ref(msg, target), nil
}

func (r *Renderer) edit(msg tele.Editable, image, text string, opts *tele.SendOptions) (*tele.Message, error) {
	if image == "" {
		return r.api.Edit(msg, text, opts)
	}
	return r.api.EditMedia(msg, &tele.Photo{File: photoFile(image), Caption: text}, opts)
}

func (r *Renderer) send(to tele.Recipient, image, text string, opts *tele.SendOptions) (*tele.Message, error) {
	if image == "" {
		return r.api.Send(to, text, opts)
	}
	return r.api.Send(to, &tele.Photo{File: photoFile(image), Caption: text}, opts)
}

// Notify sends a standalone message.
func (r *Renderer) Notify(ctx context.Context, target domain.Target, msg string) error {
	text, entities := toEntities(msg)
	_, err := r.api.Send(&tele.Chat{ID: target.ChatID}, text, &tele.SendOptions{Entities: entities})
	return err
}

// SendInvoice sends a payment invoice to the chat.
func (r *Renderer) SendInvoice(ctx context.Context, target domain.Target, inv ports.Invoice) error {
	invoice := &tele.Invoice{
		Title:               inv.Title,
		Description:         inv.Description,
		Payload:             inv.Payload,
		Currency:            inv.Currency,
		Token:               r.paymentToken,
		NeedShippingAddress: true,
	}
	for _, l := range inv.Lines {
		invoice.Prices = append(invoice.Prices, tele.Price{Label: l.Label, Amount: int(l.Amount)})
	}
	_, err := r.api.Send(&tele.Chat{ID: target.ChatID}, invoice)
	return err
}

// Markup turns a keyboard into an inline keyboard carrying encoded actions.
func Markup(kb domain.Keyboard) *tele.ReplyMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]tele.InlineButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tele.InlineButton{Text: b.Label, Data: b.Action.Encode()})
		}
		rows = append(rows, buttons)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}

// photoFile accepts a URL or a Telegram file id.
func photoFile(image string) tele.File {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return tele.FromURL(image)
	}
	return tele.File{FileID: image}
}

func ref(msg *tele.Message, target domain.Target) domain.MessageRef {
	if msg == nil {
		return domain.MessageRef{ChatID: target.ChatID}
	}
	out := domain.MessageRef{MessageID: msg.ID, ChatID: target.ChatID}
	if msg.Chat != nil {
		out.ChatID = msg.Chat.ID
	}
	return out
}

// isNotModified reports an edit that would not change the message.
func isNotModified(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}

// isUneditable reports edits Telegram refuses for the target message.
func isUneditable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"message to edit not found",
		"message can't be edited",
		"there is no text in the message to edit",
		"there is no caption in the message to edit",
		"there is no media in the message to edit",
		"message_id_invalid",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
