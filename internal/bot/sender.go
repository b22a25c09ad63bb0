package bot

import (
	"context"
	"fmt"
	"strings"

	"bot-variantes/internal/notifier"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const openPrefix = "open:"

// Sender entrega os alertas no chat configurado, com um botão que abre o link do alerta
type Sender struct {
	client        Client
	chatID        int64
	publicBaseURL string
}

// NewSender cria o Sender. Com publicBaseURL, o botão abre /n/{id} no servidor HTTP;
// sem ele, o clique volta ao bot como callback.
func NewSender(client Client, chatID int64, publicBaseURL string) *Sender {
	return &Sender{
		client:        client,
		chatID:        chatID,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Send implementa notifier.Sender
func (s *Sender) Send(ctx context.Context, n notifier.Notification) error {
	text := fmt.Sprintf("<b>%s</b>\n\n%s", escapeHTML(n.Title), escapeHTML(n.Message))

	var button tgbotapi.InlineKeyboardButton
	if s.publicBaseURL != "" {
		button = tgbotapi.NewInlineKeyboardButtonURL("🔗 Abrir", s.publicBaseURL+"/n/"+n.ID)
	} else {
		button = tgbotapi.NewInlineKeyboardButtonData("🔗 Abrir", openPrefix+n.ID)
	}

	msg := tgbotapi.NewMessage(s.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(button))

	if _, err := s.client.Send(msg); err != nil {
		return fmt.Errorf("erro ao enviar alerta ao Telegram: %w", err)
	}
	return nil
}
