// Package changes compara o estado salvo de um item com um Snapshot novo.
package changes

import "bot-variantes/internal/models"

// Diff devolve os eventos entre o item salvo e o Snapshot, sempre na ordem
// status, preço, promoção, cores novas. Não tem efeitos colaterais.
func Diff(previous models.TrackedItem, fresh models.Snapshot) []models.ChangeEvent {
	events := make([]models.ChangeEvent, 0, 2)

	if previous.StockStatus != fresh.StockStatus {
		events = append(events, models.StatusChange(previous.StockStatus, fresh.StockStatus))
	}

	// preço desconhecido -> conhecido é preenchimento, não mudança
	if previous.CurrentPrice != nil && fresh.CurrentPrice != nil && *previous.CurrentPrice != *fresh.CurrentPrice {
		events = append(events, models.PriceChange(*previous.CurrentPrice, *fresh.CurrentPrice))
	}

	if !previous.OnSale && fresh.OnSale {
		events = append(events, models.WentOnSale())
	}

	events = append(events, NewColors(previous, fresh)...)
	return events
}

// NewColors devolve um evento por cor presente no Snapshot e ausente no item. Só roda
// com trackNewColors ativo e com as duas listas preenchidas.
func NewColors(previous models.TrackedItem, fresh models.Snapshot) []models.ChangeEvent {
	if !previous.TrackNewColors || len(previous.AvailableColors) == 0 {
		return nil
	}
	if !fresh.ColorData || len(fresh.AvailableColors) == 0 {
		return nil
	}

	known := make(map[models.ColorKey]bool, len(previous.AvailableColors))
	for _, c := range previous.AvailableColors {
		known[c.Key(previous.Region)] = true
	}

	var events []models.ChangeEvent
	for _, c := range models.DedupeColors(previous.Region, fresh.AvailableColors) {
		if !known[c.Key(previous.Region)] {
			events = append(events, models.NewColor(c))
		}
	}
	return events
}
