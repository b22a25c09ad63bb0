package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bot-variantes/internal/metrics"
	"bot-variantes/internal/models"
	"bot-variantes/internal/scraper"
)

var (
	ErrIdentityConflict     = errors.New("esta cor e tamanho já estão sendo monitorados")
	ErrIndexOutOfRange      = errors.New("índice fora do intervalo")
	ErrInvalidURL           = errors.New("URL inválida")
	ErrNotificationNotFound = errors.New("notificação não encontrada")
)

// TrackRequest são os dados de uma nova variante. Cor e tamanho vazios são lidos da
// própria página (variante selecionada na URL).
type TrackRequest struct {
	URL            string
	Color          string
	ColorCode      string
	Size           string
	TrackNewColors bool
}

// TrackResult é a resposta das operações que alteram a lista
type TrackResult struct {
	Success bool
	Reason  string
	Item    *models.TrackedItem
}

func rejected(err error) TrackResult {
	return TrackResult{Success: false, Reason: err.Error()}
}

// Items devolve a lista de itens monitorados
func (m *Monitor) Items(ctx context.Context) ([]models.TrackedItem, error) {
	return m.store.LoadItems(ctx)
}

// TrackItem busca a página, monta o estado inicial e adiciona a variante, desde que
// a tripla produto/cor/tamanho ainda não esteja na lista
func (m *Monitor) TrackItem(ctx context.Context, req TrackRequest) TrackResult {
	rawURL := strings.TrimSpace(req.URL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return rejected(ErrInvalidURL)
	}

	log := componentLog().With().Str("url", rawURL).Logger()

	region := m.registry.RegionFor(rawURL)
	hints := scraper.Hints{
		ColorCode: strings.TrimSpace(req.ColorCode),
		ColorName: strings.TrimSpace(req.Color),
		Size:      strings.TrimSpace(req.Size),
		Region:    region,
	}

	// A busca inicial é só um ponto de partida: sem ela, o item nasce com o estado
	// padrão e o primeiro ciclo completa o resto
	var snap models.Snapshot
	page, fetchErr := m.seeder.Fetch(ctx, rawURL)
	if fetchErr != nil {
		log.Warn().Err(fetchErr).Msg("Erro ao buscar página do novo item, usando estado padrão")
		snap = scraper.Baseline(rawURL, hints)
	} else {
		snap = scraper.Extract(page, hints, scraper.IdentityURL(rawURL))
	}

	item := newTrackedItem(rawURL, region, snap, req.TrackNewColors, m.now())
	identified := (item.Color != "" || item.ColorCode != "") && item.Size != ""
	if !identified && fetchErr != nil {
		return TrackResult{Reason: fmt.Sprintf("não foi possível carregar a página: %v", fetchErr)}
	}
	if item.Color == "" && item.ColorCode == "" {
		return TrackResult{Reason: "cor não identificada; informe a cor"}
	}
	if item.Size == "" {
		return TrackResult{Reason: "tamanho não identificado; informe o tamanho"}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.store.LoadItems(ctx)
	if err != nil {
		return TrackResult{Reason: fmt.Sprintf("erro ao carregar itens: %v", err)}
	}
	for _, existing := range items {
		if existing.SameIdentity(item) {
			return rejected(ErrIdentityConflict)
		}
	}

	items = append(items, item)
	if err := m.store.SaveItems(ctx, items); err != nil {
		return TrackResult{Reason: fmt.Sprintf("erro ao salvar item: %v", err)}
	}
	metrics.SetTracked(len(items))

	log.Info().Str("product_id", item.ProductID).Str("color", item.Color).Str("size", item.Size).Msg("Item adicionado")
	return TrackResult{Success: true, Item: &item}
}

func newTrackedItem(rawURL string, region models.Region, snap models.Snapshot, trackNewColors bool, now time.Time) models.TrackedItem {
	item := models.TrackedItem{
		ProductID:       snap.ProductID,
		Color:           snap.ColorName,
		ColorCode:       snap.ColorCode,
		Size:            snap.Size,
		Name:            snap.Name,
		URL:             rawURL,
		Region:          region,
		Image:           snap.Image,
		CurrentPrice:    snap.CurrentPrice,
		OriginalPrice:   snap.OriginalPrice,
		OnSale:          snap.OnSale,
		StockStatus:     snap.StockStatus,
		AvailableColors: snap.AvailableColors,
		TrackNewColors:  trackNewColors,
		AddedAt:         now,
		LastChecked:     now,
	}
	if item.ProductID == "" {
		item.ProductID = scraper.PageKey(rawURL)
	}
	if item.Name == "" {
		item.Name = item.ProductID
	}
	if item.Color == "" {
		// sem nome, o código serve de rótulo
		item.Color = item.ColorCode
	}
	if item.AvailableColors == nil {
		item.AvailableColors = []models.Color{}
	}
	return item
}

// UntrackItem remove o item da posição index (base zero)
func (m *Monitor) UntrackItem(ctx context.Context, index int) TrackResult {
	return m.mutate(ctx, index, func(items []models.TrackedItem) []models.TrackedItem {
		return append(items[:index], items[index+1:]...)
	})
}

// SetTrackNewColors liga ou desliga o acompanhamento de cores novas do item
func (m *Monitor) SetTrackNewColors(ctx context.Context, index int, enabled bool) TrackResult {
	return m.mutate(ctx, index, func(items []models.TrackedItem) []models.TrackedItem {
		items[index].TrackNewColors = enabled
		return items
	})
}

func (m *Monitor) mutate(ctx context.Context, index int, fn func([]models.TrackedItem) []models.TrackedItem) TrackResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.store.LoadItems(ctx)
	if err != nil {
		return TrackResult{Reason: fmt.Sprintf("erro ao carregar itens: %v", err)}
	}
	if index < 0 || index >= len(items) {
		return rejected(ErrIndexOutOfRange)
	}

	target := items[index]
	items = fn(items)
	if err := m.store.SaveItems(ctx, items); err != nil {
		return TrackResult{Reason: fmt.Sprintf("erro ao salvar itens: %v", err)}
	}
	metrics.SetTracked(len(items))
	return TrackResult{Success: true, Item: &target}
}

// ClearChangeMarkers zera lastChange de todos os itens (alertas revisados)
func (m *Monitor) ClearChangeMarkers(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items, err := m.store.LoadItems(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		items[i].LastChange = nil
	}
	return m.store.SaveItems(ctx, items)
}

// OpenNotification devolve a URL do alerta clicado e descarta o registro
func (m *Monitor) OpenNotification(ctx context.Context, id string) (string, error) {
	target, ok, err := m.store.TakeNotification(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotificationNotFound
	}
	return target, nil
}
