package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bot-variantes/internal/logger"
	"bot-variantes/internal/models"
	"bot-variantes/internal/monitor"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleUpdate trata uma mensagem ou um clique em botão
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message
	parts := strings.Fields(message.Text)
	if len(parts) == 0 {
		return
	}

	command := strings.ToLower(parts[0])
	// Remover @botname se presente
	if idx := strings.Index(command, "@"); idx > 0 {
		command = command[:idx]
	}

	// Comandos públicos (não precisam de autorização)
	isPublicCommand := command == "/start" || command == "/help"
	if !isPublicCommand && !b.authorized(message.Chat.ID) {
		b.reply(message.Chat.ID, "Você não está autorizado a usar este bot.")
		return
	}

	args := parts[1:]
	switch command {
	case "/start", "/help":
		b.handleHelp(message.Chat.ID)
	case "/add":
		b.handleAdd(ctx, message.Chat.ID, args)
	case "/list":
		b.handleList(ctx, message.Chat.ID)
	case "/remove":
		b.handleRemove(ctx, message.Chat.ID, args)
	case "/verificar", "/check":
		b.handleCheck(ctx, message.Chat.ID)
	case "/limpar":
		b.handleClear(ctx, message.Chat.ID)
	case "/cores":
		b.handleColors(ctx, message.Chat.ID, args)
	default:
		b.reply(message.Chat.ID, "Comando não reconhecido. Use /help para ver os comandos disponíveis.")
	}
}

func (b *Bot) authorized(chatID int64) bool {
	return b.chatID == 0 || chatID == b.chatID
}

func (b *Bot) handleHelp(chatID int64) {
	helpText := `🤖 <b>Bot de Monitoramento de Variantes</b>

<b>Comandos disponíveis:</b>

<b>/add</b> - Monitorar uma cor e tamanho de um produto
Uso: /add &lt;URL&gt; [cor] [tamanho]
Exemplo: /add https://shop.example.com/p/align/_/prod1001?color=0001&amp;sz=6
Exemplo: /add https://shop.example.com.hk/products/define Black M

<b>/list</b> - Listar as variantes monitoradas

<b>/remove &lt;n&gt;</b> - Parar de monitorar o item n da lista

<b>/cores &lt;n&gt; on|off</b> - Avisar quando o produto ganhar cores novas

<b>/verificar</b> - Verificar todos os itens agora

<b>/limpar</b> - Marcar todos os alertas como vistos

<b>/help</b> - Mostrar esta mensagem de ajuda
`
	b.replyHTML(chatID, helpText)
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /add <URL> [cor] [tamanho]\n\nSem cor e tamanho, uso a variante selecionada na URL.")
		return
	}

	req := monitor.TrackRequest{URL: args[0]}
	switch len(args) {
	case 1:
	case 2:
		req.Color = args[1]
	default:
		// o tamanho é a última palavra; a cor pode ter várias
		req.Color = strings.Join(args[1:len(args)-1], " ")
		req.Size = args[len(args)-1]
	}

	b.reply(chatID, "⏳ Carregando produto...")
	res := b.engine.TrackItem(ctx, req)
	if !res.Success {
		b.reply(chatID, "❌ "+res.Reason)
		return
	}

	item := res.Item
	var response strings.Builder
	response.WriteString("✅ <b>Item adicionado!</b>\n\n")
	writeItem(&response, *item)
	b.replyHTML(chatID, response.String())
}

func (b *Bot) handleList(ctx context.Context, chatID int64) {
	items, err := b.engine.Items(ctx)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao listar itens: %v", err))
		return
	}
	if len(items) == 0 {
		b.reply(chatID, "📋 Nenhum item sendo monitorado no momento.")
		return
	}

	var response strings.Builder
	response.WriteString("📋 <b>Variantes em Monitoramento:</b>\n\n")
	for i, item := range items {
		response.WriteString(fmt.Sprintf("<b>%d.</b> ", i+1))
		writeItem(&response, item)
		response.WriteString("\n")
	}
	b.replyHTML(chatID, response.String())
}

func writeItem(w *strings.Builder, item models.TrackedItem) {
	currency := item.Region.Currency()

	marker := ""
	if item.LastChange != nil {
		marker = " 🔔"
	}
	w.WriteString(fmt.Sprintf("📦 %s (%s, %s)%s\n", escapeHTML(item.Name), escapeHTML(item.Color), escapeHTML(item.Size), marker))
	w.WriteString(fmt.Sprintf("%s %s\n", stockIcon(item.StockStatus), stockLabel(item.StockStatus)))

	if item.CurrentPrice != nil {
		if item.OnSale && item.OriginalPrice != nil {
			w.WriteString(fmt.Sprintf("💰 <b>%s %.2f</b> (de %s %.2f) 🏷️\n", currency, *item.CurrentPrice, currency, *item.OriginalPrice))
		} else {
			w.WriteString(fmt.Sprintf("💰 <b>%s %.2f</b>\n", currency, *item.CurrentPrice))
		}
	} else {
		w.WriteString("💰 Preço: não verificado ainda\n")
	}
	if item.MarkdownURL != "" {
		w.WriteString("🔻 Na liquidação\n")
	}
	if item.TrackNewColors {
		w.WriteString(fmt.Sprintf("🎨 Acompanhando cores novas (%d conhecidas)\n", len(item.AvailableColors)))
	}
	if !item.LastChecked.IsZero() {
		w.WriteString(fmt.Sprintf("🕐 Última verificação: %s\n", item.LastChecked.Format("02/01/2006 15:04")))
	} else {
		w.WriteString("🕐 Última verificação: Nunca\n")
	}
	w.WriteString(fmt.Sprintf("🔗 %s\n", escapeHTML(item.SourceURL())))
}

func stockIcon(s models.StockStatus) string {
	switch s {
	case models.SoldOut:
		return "❌"
	case models.LowStock:
		return "⚠️"
	}
	return "✅"
}

func stockLabel(s models.StockStatus) string {
	switch s {
	case models.SoldOut:
		return "Esgotado"
	case models.LowStock:
		return "Estoque baixo"
	}
	return "Em estoque"
}

// parseIndex converte a posição da lista (base um) em índice
func parseIndex(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

func (b *Bot) handleRemove(ctx context.Context, chatID int64, args []string) {
	if len(args) < 1 {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /remove <n>\n\nExemplo: /remove 1")
		return
	}
	index, ok := parseIndex(args[0])
	if !ok {
		b.reply(chatID, "❌ Número inválido.")
		return
	}

	res := b.engine.UntrackItem(ctx, index)
	if !res.Success {
		b.reply(chatID, "❌ "+res.Reason)
		return
	}
	b.reply(chatID, fmt.Sprintf("✅ Item removido: %s (%s, %s)", res.Item.Name, res.Item.Color, res.Item.Size))
}

func (b *Bot) handleColors(ctx context.Context, chatID int64, args []string) {
	if len(args) < 2 {
		b.reply(chatID, "❌ Formato incorreto.\n\nUso: /cores <n> on|off")
		return
	}
	index, ok := parseIndex(args[0])
	if !ok {
		b.reply(chatID, "❌ Número inválido.")
		return
	}

	var enabled bool
	switch strings.ToLower(args[1]) {
	case "on", "sim", "1":
		enabled = true
	case "off", "nao", "não", "0":
		enabled = false
	default:
		b.reply(chatID, "❌ Use on ou off.")
		return
	}

	res := b.engine.SetTrackNewColors(ctx, index, enabled)
	if !res.Success {
		b.reply(chatID, "❌ "+res.Reason)
		return
	}
	if enabled {
		b.reply(chatID, fmt.Sprintf("🎨 Avisarei sobre cores novas de %s.", res.Item.Name))
	} else {
		b.reply(chatID, fmt.Sprintf("🎨 Não vou mais avisar sobre cores novas de %s.", res.Item.Name))
	}
}

func (b *Bot) handleCheck(ctx context.Context, chatID int64) {
	log := logger.Component("bot")

	// Enviar mensagem de "verificando"
	sent, err := b.client.Send(tgbotapi.NewMessage(chatID, "⏳ Verificando itens..."))
	sentMessageID := 0
	if err == nil {
		sentMessageID = sent.MessageID
	}

	res := b.engine.CheckAll(ctx)
	summary := fmt.Sprintf(
		"✅ Verificação concluída\n\nItens verificados: %d\nFalhas: %d\nMudanças: %d\nPedem atenção: %d",
		res.Checked, res.Failed, res.Events, res.Attention,
	)

	if sentMessageID != 0 {
		if _, err := b.client.Send(tgbotapi.NewEditMessageText(chatID, sentMessageID, summary)); err == nil {
			return
		}
		log.Warn().Msg("Erro ao editar mensagem de verificação")
	}
	b.reply(chatID, summary)
}

func (b *Bot) handleClear(ctx context.Context, chatID int64) {
	if err := b.engine.ClearChangeMarkers(ctx); err != nil {
		b.reply(chatID, fmt.Sprintf("❌ Erro ao limpar alertas: %v", err))
		return
	}
	b.reply(chatID, "✅ Alertas marcados como vistos.")
}

// handleCallback trata o clique no botão de um alerta
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	log := logger.Component("bot")
	if !strings.HasPrefix(query.Data, openPrefix) {
		return
	}

	answer := ""
	target, err := b.engine.OpenNotification(ctx, strings.TrimPrefix(query.Data, openPrefix))
	switch {
	case errors.Is(err, monitor.ErrNotificationNotFound):
		answer = "Este alerta já foi aberto ou expirou."
	case err != nil:
		log.Error().Err(err).Msg("Erro ao abrir notificação")
		answer = "Erro ao abrir o alerta."
	}

	if _, err := b.client.Request(tgbotapi.NewCallback(query.ID, answer)); err != nil {
		log.Warn().Err(err).Msg("Erro ao responder callback")
	}
	if target != "" && query.Message != nil {
		b.reply(query.Message.Chat.ID, "🔗 "+target)
	}
}
