package scraper

import (
	"encoding/json"
	"strings"

	"bot-variantes/internal/models"

	"github.com/PuerkitoBio/goquery"
)

type catalogColor struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type catalogSKU struct {
	SKUID     string       `json:"skuId"`
	Color     catalogColor `json:"color"`
	Size      string       `json:"size"`
	Available bool         `json:"available"`
	ListPrice flexPrice    `json:"listPrice"`
	SalePrice flexPrice    `json:"salePrice"`
}

type catalogSizes struct {
	Color string   `json:"color"`
	Sizes []string `json:"sizes"`
}

// catalogProduct é o documento JSON que enumera todos os SKUs (cor x tamanho) da página
type catalogProduct struct {
	ProductID    string         `json:"productId"`
	Name         string         `json:"name"`
	Image        string         `json:"image"`
	Colors       []catalogColor `json:"colors"`
	SizesByColor []catalogSizes `json:"sizesByColor"`
	SKUs         []catalogSKU   `json:"skus"`
}

// catalogStrategy lê o payload de catálogo embutido em <script type="application/json">
type catalogStrategy struct{}

func (catalogStrategy) name() string { return "catalog" }

func (s catalogStrategy) extract(page *Page, hints Hints) (partial, error) {
	doc, err := page.Document()
	if err != nil {
		return partial{}, &ParseError{Strategy: s.name(), Err: err}
	}

	product, err := findCatalog(doc)
	if err != nil {
		return partial{}, err
	}

	p := partial{
		productID: product.ProductID,
		name:      product.Name,
		image:     product.Image,
		colors:    product.colorSet(),
		colorData: true,
	}

	if !hints.hasColor() {
		return p, nil
	}

	sku := product.match(hints)
	if sku == nil {
		// sem SKU do tamanho, a identidade da cor ainda vem do próprio payload
		if col, ok := product.findColor(hints); ok {
			p.colorCode = col.Code
			p.colorName = col.Name
		}
		// Tamanho fora da lista declarada para a cor também significa esgotado
		if sizes, ok := product.declaredSizes(hints); ok && hints.Size != "" && !containsFold(sizes, hints.Size) {
			p.stock = stockPtr(models.SoldOut)
		}
		return p, nil
	}

	p.colorCode = sku.Color.Code
	p.colorName = sku.Color.Name
	p.size = sku.Size
	p.price = newPriceInfo(sku.ListPrice.priceOrZero(), sku.SalePrice.priceOrZero())
	if !sku.Available {
		p.stock = stockPtr(models.SoldOut)
	} else {
		p.variantAvailable = true
	}
	return p, nil
}

func (p flexPrice) priceOrZero() float64 {
	if !p.Valid {
		return 0
	}
	return p.Value
}

func findCatalog(doc *goquery.Document) (*catalogProduct, error) {
	var (
		product *catalogProduct
		lastErr error
	)
	doc.Find("script[type='application/json']").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			lastErr = &ParseError{Strategy: "catalog", Err: err}
			return true
		}
		node := findObjectWithKey(raw, "skus")
		if node == nil {
			return true
		}
		encoded, err := json.Marshal(node)
		if err != nil {
			lastErr = &ParseError{Strategy: "catalog", Err: err}
			return true
		}
		var candidate catalogProduct
		if err := json.Unmarshal(encoded, &candidate); err != nil {
			lastErr = &ParseError{Strategy: "catalog", Err: err}
			return true
		}
		product = &candidate
		return false
	})

	if product != nil {
		return product, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errNoPayload
}

// findObjectWithKey procura em profundidade um objeto que tenha key como array
func findObjectWithKey(v any, key string) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if _, ok := t[key].([]any); ok {
			return t
		}
		for _, child := range t {
			if found := findObjectWithKey(child, key); found != nil {
				return found
			}
		}
	case []any:
		for _, child := range t {
			if found := findObjectWithKey(child, key); found != nil {
				return found
			}
		}
	}
	return nil
}

func (c *catalogProduct) colorSet() []models.Color {
	colors := make([]models.Color, 0, len(c.Colors))
	for _, col := range c.Colors {
		colors = append(colors, models.Color{Code: col.Code, Name: col.Name})
	}
	if len(colors) == 0 {
		for _, sku := range c.SKUs {
			colors = append(colors, models.Color{Code: sku.Color.Code, Name: sku.Color.Name})
		}
	}
	// o catálogo sempre traz códigos, então a deduplicação é pela regra de código
	return models.DedupeColors(models.RegionUS, colors)
}

func (c *catalogProduct) colorMatches(col catalogColor, hints Hints) bool {
	if hints.ColorCode != "" {
		return strings.EqualFold(strings.TrimSpace(col.Code), strings.TrimSpace(hints.ColorCode))
	}
	return models.FoldName(col.Name) == models.FoldName(hints.ColorName)
}

// findColor devolve a cor do payload que corresponde às dicas
func (c *catalogProduct) findColor(hints Hints) (catalogColor, bool) {
	for _, col := range c.Colors {
		if c.colorMatches(col, hints) {
			return col, true
		}
	}
	for _, sku := range c.SKUs {
		if c.colorMatches(sku.Color, hints) {
			return sku.Color, true
		}
	}
	return catalogColor{}, false
}

// match encontra o SKU da cor e tamanho pedidos; sem tamanho, prefere um SKU disponível
func (c *catalogProduct) match(hints Hints) *catalogSKU {
	var fallback *catalogSKU
	for i := range c.SKUs {
		sku := &c.SKUs[i]
		if !c.colorMatches(sku.Color, hints) {
			continue
		}
		if hints.Size != "" {
			if strings.EqualFold(strings.TrimSpace(sku.Size), strings.TrimSpace(hints.Size)) {
				return sku
			}
			continue
		}
		if sku.Available {
			return sku
		}
		if fallback == nil {
			fallback = sku
		}
	}
	return fallback
}

func (c *catalogProduct) declaredSizes(hints Hints) ([]string, bool) {
	for _, entry := range c.SizesByColor {
		col := catalogColor{Code: entry.Color}
		if hints.ColorCode == "" {
			// sizesByColor é indexado por código; resolve o nome pela lista de cores
			for _, known := range c.Colors {
				if known.Code == entry.Color {
					col.Name = known.Name
				}
			}
		}
		if c.colorMatches(col, hints) {
			return entry.Sizes, true
		}
	}
	return nil, false
}

func containsFold(list []string, target string) bool {
	target = strings.TrimSpace(target)
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return true
		}
	}
	return false
}
