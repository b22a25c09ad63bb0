package bot

import (
	"context"
	"fmt"
	"strings"

	"bot-variantes/internal/logger"
	"bot-variantes/internal/models"
	"bot-variantes/internal/monitor"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Client é a parte da API do Telegram usada pelo bot
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Engine são as operações do monitor expostas pelos comandos
type Engine interface {
	Items(ctx context.Context) ([]models.TrackedItem, error)
	TrackItem(ctx context.Context, req monitor.TrackRequest) monitor.TrackResult
	UntrackItem(ctx context.Context, index int) monitor.TrackResult
	SetTrackNewColors(ctx context.Context, index int, enabled bool) monitor.TrackResult
	ClearChangeMarkers(ctx context.Context) error
	CheckAll(ctx context.Context) monitor.CycleResult
	OpenNotification(ctx context.Context, id string) (string, error)
}

// Init inicializa o bot do Telegram
func Init(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN não configurado. Verifique o arquivo .env")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		if err.Error() == "Unauthorized" {
			return nil, fmt.Errorf("token do Telegram inválido ou expirado. Verifique o TELEGRAM_BOT_TOKEN no arquivo .env. Para obter um token, fale com @BotFather no Telegram")
		}
		return nil, fmt.Errorf("erro ao conectar com Telegram: %w", err)
	}

	api.Debug = false
	logger.Component("bot").Info().Str("username", api.Self.UserName).Msg("Bot autorizado")
	return api, nil
}

// Bot atende os comandos e os cliques nos alertas
type Bot struct {
	client Client
	engine Engine
	chatID int64
}

// New cria o bot. chatID restringe os comandos ao chat autorizado (0 libera todos).
func New(client Client, engine Engine, chatID int64) *Bot {
	return &Bot{client: client, engine: engine, chatID: chatID}
}

// Listen recebe atualizações do Telegram até o contexto ser cancelado
func (b *Bot) Listen(ctx context.Context, api *tgbotapi.BotAPI) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// escapeHTML escapa caracteres especiais do HTML
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.client.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Component("bot").Error().Err(err).Msg("Erro ao enviar mensagem")
	}
}

// replyHTML envia com formatação e, se o Telegram recusar, sem formatação
func (b *Bot) replyHTML(chatID int64, text string) {
	log := logger.Component("bot")
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := b.client.Send(msg); err != nil {
		log.Warn().Err(err).Msg("Erro ao enviar mensagem com HTML")
		msg.ParseMode = ""
		if _, err := b.client.Send(msg); err != nil {
			log.Error().Err(err).Msg("Erro ao enviar mensagem sem formatação")
		}
	}
}
