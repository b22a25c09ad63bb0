package scraper

import (
	"errors"

	"bot-variantes/internal/logger"
	"bot-variantes/internal/models"
)

// partial é o resultado de uma estratégia. Campos nil não foram resolvidos por ela.
type partial struct {
	// preço atual, original e flag de promoção são resolvidos juntos
	price *priceInfo
	stock *models.StockStatus
	// variantAvailable indica que o payload achou a variante e a declarou disponível
	variantAvailable bool

	colors    []models.Color
	colorData bool

	productID string
	name      string
	image     string
	colorCode string
	colorName string
	size      string
}

type priceInfo struct {
	current  float64
	original *float64
	onSale   bool
}

// newPriceInfo aplica a regra de promoção: só há promoção com preço de venda
// estritamente menor que o preço de lista
func newPriceInfo(list, sale float64) *priceInfo {
	switch {
	case list > 0 && sale > 0 && sale < list:
		return &priceInfo{current: sale, original: models.Price(list), onSale: true}
	case list > 0:
		return &priceInfo{current: list}
	case sale > 0:
		return &priceInfo{current: sale}
	}
	return nil
}

func stockPtr(s models.StockStatus) *models.StockStatus {
	return &s
}

// merge incorpora next em p campo a campo: o primeiro a resolver cada campo vence,
// exceto o estoque, que nunca é rebaixado depois de sold_out
func (p *partial) merge(next partial) {
	if p.price == nil {
		p.price = next.price
	}
	switch {
	case p.stock == nil:
		p.stock = next.stock
	case next.stock != nil:
		p.stock = stockPtr(models.Stronger(*p.stock, *next.stock))
	}
	p.variantAvailable = p.variantAvailable || next.variantAvailable
	if !p.colorData && next.colorData {
		p.colors = next.colors
		p.colorData = true
	}
	fill(&p.productID, next.productID)
	fill(&p.name, next.name)
	fill(&p.image, next.image)
	fill(&p.colorCode, next.colorCode)
	fill(&p.colorName, next.colorName)
	fill(&p.size, next.size)
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

type strategy interface {
	name() string
	extract(page *Page, hints Hints) (partial, error)
}

var structuredStrategies = []strategy{
	catalogStrategy{},
	linkedDataStrategy{},
}

var fallbackMarkup strategy = markupStrategy{}

type extractOptions struct {
	structuredOnly bool
	identityURL    string
}

// Option ajusta uma chamada de Extract
type Option func(*extractOptions)

// StructuredOnly desativa o fallback por texto visível
func StructuredOnly() Option {
	return func(o *extractOptions) {
		o.structuredOnly = true
	}
}

// IdentityURL lê cor e tamanho da URL informada em vez da URL da página. Usado quando a
// mesma página atende várias variantes no ciclo.
func IdentityURL(rawURL string) Option {
	return func(o *extractOptions) {
		o.identityURL = rawURL
	}
}

// Extract transforma o conteúdo de uma página num Snapshot. Cada estratégia é isolada:
// payload ausente ou malformado apenas passa a vez para a próxima. Sempre devolve um
// Snapshot, com padrões in_stock, preços nil e cores vazias.
func Extract(page *Page, hints Hints, opts ...Option) models.Snapshot {
	var o extractOptions
	for _, opt := range opts {
		opt(&o)
	}

	log := logger.Component("extractor")
	identity := page.URL
	if o.identityURL != "" {
		identity = o.identityURL
	}
	hints = hints.withURLIdentity(identity)

	var acc partial
	for _, s := range structuredStrategies {
		p, err := s.extract(page, hints)
		if err != nil {
			if !errors.Is(err, errNoPayload) {
				log.Debug().Err(err).Str("url", page.URL).Str("strategy", s.name()).Msg("Estratégia ignorada")
			}
			continue
		}
		acc.merge(p)
	}

	// sem payload estruturado, o markup da página ainda pode trazer nome e preço
	if !o.structuredOnly && acc.productID == "" && !acc.colorData {
		p, err := fallbackMarkup.extract(page, hints)
		if err == nil {
			acc.merge(p)
		} else if !errors.Is(err, errNoPayload) {
			log.Debug().Err(err).Str("url", page.URL).Str("strategy", fallbackMarkup.name()).Msg("Estratégia ignorada")
		}
	}

	if !o.structuredOnly && acc.stock == nil {
		if status, ok := visibleTextStock(page); ok {
			// o texto da página fala de todos os tamanhos; com a variante disponível no
			// payload, só o aviso de estoque baixo é aproveitado
			if !acc.variantAvailable || status == models.LowStock {
				acc.stock = stockPtr(status)
			}
		}
	}

	return acc.snapshot(hints)
}

// Baseline é o Snapshot padrão de uma variante cuja página não pôde ser lida: só a
// identidade vinda das dicas e da URL
func Baseline(rawURL string, hints Hints) models.Snapshot {
	return partial{}.snapshot(hints.withURLIdentity(rawURL))
}

func (p partial) snapshot(hints Hints) models.Snapshot {
	snap := models.Snapshot{
		StockStatus:     models.InStock,
		AvailableColors: p.colors,
		ColorData:       p.colorData,
		ProductID:       p.productID,
		Name:            p.name,
		Image:           p.image,
		ColorCode:       p.colorCode,
		ColorName:       p.colorName,
		Size:            p.size,
	}
	if snap.AvailableColors == nil {
		snap.AvailableColors = []models.Color{}
	}
	if p.stock != nil {
		snap.StockStatus = *p.stock
	}
	if p.price != nil {
		snap.CurrentPrice = models.Price(p.price.current)
		snap.OriginalPrice = p.price.original
		snap.OnSale = p.price.onSale
	}
	fill(&snap.ColorCode, hints.ColorCode)
	fill(&snap.ColorName, hints.ColorName)
	fill(&snap.Size, hints.Size)
	return snap
}
