package monitor

import (
	"context"
	"sync"
	"time"

	"bot-variantes/internal/changes"
	"bot-variantes/internal/logger"
	"bot-variantes/internal/metrics"
	"bot-variantes/internal/models"
	"bot-variantes/internal/scraper"

	"github.com/rs/zerolog"
)

// Store é o armazenamento persistente usado pelo monitor
type Store interface {
	LoadItems(ctx context.Context) ([]models.TrackedItem, error)
	SaveItems(ctx context.Context, items []models.TrackedItem) error
	SaveCycle(ctx context.Context, items []models.TrackedItem, records []models.NotificationRecord) error
	TakeNotification(ctx context.Context, id string) (string, bool, error)
}

// Notifier envia um alerta por evento e devolve o registro de clique
type Notifier interface {
	Notify(ctx context.Context, item models.TrackedItem, event models.ChangeEvent) (*models.NotificationRecord, error)
}

// Options configura o monitor
type Options struct {
	Interval time.Duration
	Workers  int
	// Seeder busca a página de um item novo; sem ele, usa o fetcher do ciclo
	Seeder scraper.Fetcher
}

// CycleResult resume um ciclo de verificação
type CycleResult struct {
	Checked       int
	Failed        int
	Fetches       int
	Events        int
	Notifications int
	Attention     int
}

// Monitor gerencia o monitoramento periódico das variantes
type Monitor struct {
	store    Store
	fetcher  scraper.Fetcher
	seeder   scraper.Fetcher
	registry *scraper.Registry
	resolver *Resolver
	notifier Notifier
	interval time.Duration
	workers  int
	now      func() time.Time

	// mu protege o ciclo ler-alterar-gravar da lista de itens
	mu sync.Mutex
	// cycleMu impede dois ciclos simultâneos; um pedido manual espera o anterior
	cycleMu sync.Mutex
}

// New cria uma nova instância do monitor
func New(store Store, fetcher scraper.Fetcher, registry *scraper.Registry, notifier Notifier, opts Options) *Monitor {
	seeder := opts.Seeder
	if seeder == nil {
		seeder = fetcher
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 60 * time.Minute
	}
	return &Monitor{
		store:    store,
		fetcher:  fetcher,
		seeder:   seeder,
		registry: registry,
		resolver: NewResolver(fetcher, registry),
		notifier: notifier,
		interval: interval,
		workers:  opts.Workers,
		now:      time.Now,
	}
}

func componentLog() *zerolog.Logger {
	return logger.Component("monitor")
}

// Start inicia o monitoramento e bloqueia até o contexto ser cancelado
func (m *Monitor) Start(ctx context.Context) {
	componentLog().Info().Dur("interval", m.interval).Msg("Monitor iniciado")

	// Verificar imediatamente na primeira execução
	m.CheckAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			componentLog().Info().Msg("Monitor encerrado")
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

type itemResult struct {
	original models.TrackedItem
	updated  models.TrackedItem
	events   []models.ChangeEvent
	records  []models.NotificationRecord
	ok       bool
}

// CheckAll executa um ciclo completo. Falhas de um item nunca interrompem os demais e
// nada é propagado: o resultado resume o que aconteceu.
func (m *Monitor) CheckAll(ctx context.Context) CycleResult {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	log := componentLog()
	started := time.Now()

	items, err := m.store.LoadItems(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Erro ao carregar itens")
		return CycleResult{}
	}

	c := newCycle()
	results := make([]itemResult, len(items))
	pool := NewWorkerPool(m.workers)
	for i := range items {
		i := i
		pool.Submit(func() {
			results[i] = m.checkItem(ctx, c, items[i])
		})
	}
	pool.Wait()

	res := CycleResult{Fetches: c.fetches()}
	var records []models.NotificationRecord
	for _, r := range results {
		if !r.ok {
			res.Failed++
			continue
		}
		res.Checked++
		res.Events += len(r.events)
		res.Notifications += len(r.records)
		records = append(records, r.records...)
	}

	attention, err := m.persist(ctx, results, records)
	if err != nil {
		log.Error().Err(err).Msg("Erro ao gravar resultado do ciclo")
	}
	res.Attention = attention

	metrics.RecordCycle(time.Since(started).Seconds())
	log.Info().
		Int("checked", res.Checked).
		Int("failed", res.Failed).
		Int("fetches", res.Fetches).
		Int("events", res.Events).
		Int("notifications", res.Notifications).
		Int("attention", res.Attention).
		Msg("Ciclo de verificação concluído")
	return res
}

// checkItem verifica um item. Em caso de falha, ok fica falso e o estado anterior é mantido.
func (m *Monitor) checkItem(ctx context.Context, c *cycle, item models.TrackedItem) itemResult {
	res := itemResult{original: item}
	log := componentLog().With().
		Str("product_id", item.ProductID).
		Str("color", item.Color).
		Str("size", item.Size).
		Logger()

	source := item.SourceURL()
	page, err := c.page(ctx, m.fetcher, source, item.Region)
	if err != nil {
		log.Warn().Err(err).Str("url", source).Msg("Erro ao buscar página")
		metrics.RecordItem(false)
		return res
	}

	fresh := scraper.Extract(page, scraper.HintsFor(item), scraper.IdentityURL(source))
	events := changes.Diff(item, fresh)

	markdownURL := ""
	if m.resolver.ShouldResolve(item, fresh, events) {
		if t, ok := m.resolver.Resolve(ctx, c, item); ok {
			events = applyTransition(events, t)
			fresh = markdownSnapshot(t)
			markdownURL = t.DestinationURL
		}
	}

	now := m.now()
	updated := mergeSnapshot(item, fresh, now)
	if markdownURL != "" {
		updated.MarkdownURL = markdownURL
	}

	kept := make([]models.ChangeEvent, 0, len(events))
	for _, event := range events {
		event := event
		send := func() error {
			rec, err := m.notify(ctx, &log, updated, event)
			if rec != nil {
				res.records = append(res.records, *rec)
			}
			return err
		}
		if event.Type == models.EventNewColor {
			// cor já anunciada por uma variante irmã neste ciclo
			if announced, _ := c.announceNewColor(item, event.Color, send); !announced {
				continue
			}
		} else {
			_ = send()
		}
		kept = append(kept, event)
	}
	events = kept

	if len(events) > 0 {
		updated.LastChange = &models.LastChange{Type: events[0].Type, Timestamp: now}
	}

	metrics.RecordItem(true)
	res.updated, res.events, res.ok = updated, events, true
	return res
}

// notify envia o alerta de um evento; a falha é registrada e devolvida
func (m *Monitor) notify(ctx context.Context, log *zerolog.Logger, item models.TrackedItem, event models.ChangeEvent) (*models.NotificationRecord, error) {
	metrics.RecordEvent(string(event.Type))
	log.Info().Str("event", event.String()).Msg("Mudança detectada")

	rec, err := m.notifier.Notify(ctx, item, event)
	if err != nil {
		log.Error().Err(err).Str("event", string(event.Type)).Msg("Erro ao enviar notificação")
		metrics.RecordNotification(false)
		return nil, err
	}
	if rec != nil {
		metrics.RecordNotification(true)
	}
	return rec, nil
}

// mergeSnapshot incorpora o Snapshot ao item. Campos desconhecidos no Snapshot mantêm
// o valor anterior.
func mergeSnapshot(item models.TrackedItem, fresh models.Snapshot, now time.Time) models.TrackedItem {
	item.StockStatus = fresh.StockStatus
	if fresh.CurrentPrice != nil {
		item.CurrentPrice = fresh.CurrentPrice
		item.OriginalPrice = fresh.OriginalPrice
		item.OnSale = fresh.OnSale
	}
	if fresh.ColorData {
		item.AvailableColors = fresh.AvailableColors
	}
	if item.Name == "" {
		item.Name = fresh.Name
	}
	if item.Image == "" {
		item.Image = fresh.Image
	}
	item.LastChecked = now
	return item
}

// applyCheck copia para o item salvo apenas os campos que o ciclo controla, preservando
// o que o usuário alterou enquanto o ciclo rodava
func applyCheck(dst *models.TrackedItem, r itemResult) {
	u := r.updated
	dst.CurrentPrice = u.CurrentPrice
	dst.OriginalPrice = u.OriginalPrice
	dst.OnSale = u.OnSale
	dst.StockStatus = u.StockStatus
	dst.AvailableColors = u.AvailableColors
	dst.MarkdownURL = u.MarkdownURL
	dst.Name = u.Name
	dst.Image = u.Image
	dst.LastChecked = u.LastChecked
	if len(r.events) > 0 {
		dst.LastChange = u.LastChange
	}
}

// persist relê a lista, aplica os resultados por identidade e grava tudo numa única
// transação junto com as notificações
func (m *Monitor) persist(ctx context.Context, results []itemResult, records []models.NotificationRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.store.LoadItems(ctx)
	if err != nil {
		return 0, err
	}

	for i := range current {
		for _, r := range results {
			if r.ok && current[i].SameIdentity(r.original) {
				applyCheck(&current[i], r)
				break
			}
		}
	}

	if err := m.store.SaveCycle(ctx, current, records); err != nil {
		return 0, err
	}

	attention := AttentionCount(current)
	metrics.SetAttention(attention)
	metrics.SetTracked(len(current))
	return attention, nil
}

// AttentionCount conta os itens esgotados, com estoque baixo ou em promoção
func AttentionCount(items []models.TrackedItem) int {
	n := 0
	for _, item := range items {
		if item.NeedsAttention() {
			n++
		}
	}
	return n
}
