package notifier

import (
	"fmt"

	"bot-variantes/internal/models"
)

// Render monta título e mensagem de um evento
func Render(item models.TrackedItem, event models.ChangeEvent) (string, string, bool) {
	variant := fmt.Sprintf("%s (%s, %s)", item.Name, item.Color, item.Size)
	currency := item.Region.Currency()

	switch event.Type {
	case models.EventStatusChange:
		switch event.ToStatus {
		case models.SoldOut:
			return "❌ Esgotado", fmt.Sprintf("%s esgotou.", variant), true
		case models.LowStock:
			return "⚠️ Estoque baixo", fmt.Sprintf("%s está com poucas unidades.", variant), true
		default:
			return "✅ De volta ao estoque", fmt.Sprintf("%s está disponível novamente.", variant), true
		}

	case models.EventPriceChange:
		if event.ToPrice < event.FromPrice {
			return "📉 Preço caiu", fmt.Sprintf("%s\n⬇️ %s %.2f → %s %.2f", variant, currency, event.FromPrice, currency, event.ToPrice), true
		}
		return "📈 Preço subiu", fmt.Sprintf("%s\n⬆️ %s %.2f → %s %.2f", variant, currency, event.FromPrice, currency, event.ToPrice), true

	case models.EventWentOnSale:
		message := fmt.Sprintf("%s entrou em promoção!", variant)
		if item.CurrentPrice != nil && item.OriginalPrice != nil {
			message = fmt.Sprintf("%s entrou em promoção: %s %.2f (de %s %.2f)", variant, currency, *item.CurrentPrice, currency, *item.OriginalPrice)
		}
		return "🏷️ Em promoção", message, true

	case models.EventNewColor:
		return "🎨 Nova cor disponível", fmt.Sprintf("%s agora também em %s.", item.Name, event.Color.Label()), true

	case models.EventMovedToMarkdown:
		sale := "preço a confirmar"
		if event.SalePrice != nil {
			sale = fmt.Sprintf("%s %.2f", currency, *event.SalePrice)
		}
		message := fmt.Sprintf("%s foi para a liquidação: %s", variant, sale)
		if event.ListPrice != nil {
			message += fmt.Sprintf(" (de %s %.2f)", currency, *event.ListPrice)
		}
		return "🔻 Movido para liquidação", message, true
	}

	return "", "", false
}
