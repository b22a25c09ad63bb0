package monitor

import (
	"context"

	"bot-variantes/internal/models"
	"bot-variantes/internal/scraper"
)

// Transition descreve a migração de uma cor para a listagem de liquidação
type Transition struct {
	DestinationURL string
	SalePrice      *float64
	ListPrice      *float64
	Snapshot       models.Snapshot
}

// Event devolve o evento moved_to_markdown correspondente
func (t Transition) Event() models.ChangeEvent {
	return models.MovedToMarkdown(t.SalePrice, t.ListPrice, t.DestinationURL)
}

// Resolver procura a cor desaparecida na listagem de liquidação da loja
type Resolver struct {
	fetcher  scraper.Fetcher
	registry *scraper.Registry
}

// NewResolver cria um Resolver
func NewResolver(fetcher scraper.Fetcher, registry *scraper.Registry) *Resolver {
	return &Resolver{fetcher: fetcher, registry: registry}
}

// ShouldResolve decide se vale buscar a listagem de liquidação: a cor monitorada sumiu da
// página normal, o item acabou de esgotar ou acompanha cores, e ainda não está na liquidação
func (r *Resolver) ShouldResolve(item models.TrackedItem, fresh models.Snapshot, events []models.ChangeEvent) bool {
	if item.MarkdownURL != "" || scraper.IsMarkdownURL(item.URL) {
		return false
	}
	if !r.registry.SupportsMarkdown(item.URL) {
		return false
	}
	if !fresh.ColorData || fresh.HasColor(item.Region, item.TrackedColor()) {
		return false
	}
	if item.TrackNewColors {
		return true
	}
	for _, e := range events {
		if e.IsSoldOut() {
			return true
		}
	}
	return false
}

// Resolve busca a listagem de liquidação. Qualquer falha equivale a "sem transição".
func (r *Resolver) Resolve(ctx context.Context, c *cycle, item models.TrackedItem) (*Transition, bool) {
	log := componentLog().With().Str("product_id", item.ProductID).Str("color", item.Color).Logger()

	mdURL, ok := scraper.MarkdownURL(item.URL)
	if !ok {
		return nil, false
	}

	page, err := c.page(ctx, r.fetcher, mdURL, item.Region)
	if err != nil {
		log.Debug().Err(err).Str("url", mdURL).Msg("Listagem de liquidação indisponível")
		return nil, false
	}

	hints := scraper.HintsFor(item)
	snap := scraper.Extract(page, hints, scraper.StructuredOnly(), scraper.IdentityURL(mdURL))
	if !snap.ColorData || !snap.HasColor(item.Region, item.TrackedColor()) {
		return nil, false
	}

	t := &Transition{
		DestinationURL: scraper.DestinationURL(mdURL, snap.ProductID, snap.ColorCode, snap.Size),
		Snapshot:       snap,
	}
	if snap.OnSale {
		t.SalePrice = snap.CurrentPrice
		t.ListPrice = snap.OriginalPrice
	} else {
		t.ListPrice = snap.CurrentPrice
	}

	log.Info().Str("url", t.DestinationURL).Msg("Cor encontrada na liquidação")
	return t, true
}

// applyTransition troca o status_change pelo moved_to_markdown, na mesma posição
func applyTransition(events []models.ChangeEvent, t *Transition) []models.ChangeEvent {
	out := make([]models.ChangeEvent, 0, len(events)+1)
	replaced := false
	for _, e := range events {
		if e.Type == models.EventStatusChange {
			if !replaced {
				out = append(out, t.Event())
				replaced = true
			}
			continue
		}
		out = append(out, e)
	}
	if !replaced {
		out = append(out, t.Event())
	}
	return out
}

// markdownSnapshot é o estado incorporado ao item após a transição: o item continua com
// a mesma identidade, mas passa a refletir a página de liquidação
func markdownSnapshot(t *Transition) models.Snapshot {
	snap := t.Snapshot
	snap.StockStatus = models.InStock
	return snap
}
