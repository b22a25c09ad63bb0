package monitor

import (
	"context"
	"sync"

	"bot-variantes/internal/metrics"
	"bot-variantes/internal/models"
	"bot-variantes/internal/scraper"
)

// cycle guarda o estado de uma única execução de CheckAll: o cache de páginas e o
// conjunto de cores novas já anunciadas. Nunca é compartilhado entre ciclos.
type cycle struct {
	mu        sync.Mutex
	pages     map[string]*pageEntry
	announced map[string]*announcement
}

// announcement é a vaga de aviso de uma cor nova de um produto
type announcement struct {
	mu        sync.Mutex
	delivered bool
}

type pageEntry struct {
	once sync.Once
	page *scraper.Page
	err  error
}

func newCycle() *cycle {
	return &cycle{
		pages:     make(map[string]*pageEntry),
		announced: make(map[string]*announcement),
	}
}

// page busca a página subjacente da URL uma única vez por ciclo. A primeira busca vence,
// inclusive quando falha: variantes irmãs recebem o mesmo erro.
func (c *cycle) page(ctx context.Context, f scraper.Fetcher, rawURL string, region models.Region) (*scraper.Page, error) {
	key := scraper.PageKey(rawURL)

	c.mu.Lock()
	entry, ok := c.pages[key]
	if !ok {
		entry = &pageEntry{}
		c.pages[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.page, entry.err = f.Fetch(ctx, rawURL)
		metrics.RecordFetch(string(region), entry.err == nil)
	})
	return entry.page, entry.err
}

// fetches devolve quantas páginas distintas foram pedidas no ciclo
func (c *cycle) fetches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

// announceNewColor entrega o aviso de cor nova uma única vez por produto no ciclo.
// A vaga só fica ocupada depois de um envio bem-sucedido: variantes irmãs esperam o envio
// em curso e tentam de novo se ele falhar. announced é falso quando outra variante já
// entregou o aviso.
func (c *cycle) announceNewColor(item models.TrackedItem, color models.Color, send func() error) (announced bool, err error) {
	key := item.ProductID + "|" + string(color.Key(item.Region))

	c.mu.Lock()
	a, ok := c.announced[key]
	if !ok {
		a = &announcement{}
		c.announced[key] = a
	}
	c.mu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.delivered {
		return false, nil
	}
	if err := send(); err != nil {
		return true, err
	}
	a.delivered = true
	return true, nil
}
