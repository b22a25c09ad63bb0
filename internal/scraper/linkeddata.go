package scraper

import (
	"encoding/json"
	"strconv"
	"strings"

	"bot-variantes/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// ldVariant é uma variante {cor, tamanho, preço, disponibilidade} do JSON-LD
type ldVariant struct {
	color        string
	size         string
	availability string
	price        float64
	listPrice    float64
}

type ldProduct struct {
	productID string
	name      string
	image     string
	variants  []ldVariant
}

// linkedDataStrategy lê Product/ProductGroup de <script type="application/ld+json">.
// Essas lojas identificam as variantes pelo nome da cor, sem código estável.
type linkedDataStrategy struct{}

func (linkedDataStrategy) name() string { return "linked-data" }

func (s linkedDataStrategy) extract(page *Page, hints Hints) (partial, error) {
	doc, err := page.Document()
	if err != nil {
		return partial{}, &ParseError{Strategy: s.name(), Err: err}
	}

	product, err := findLinkedProduct(doc)
	if err != nil {
		return partial{}, err
	}

	p := partial{
		productID: product.productID,
		name:      product.name,
		image:     product.image,
		colors:    product.colorSet(),
		colorData: true,
	}

	wanted := models.FoldName(hints.ColorName)
	if wanted == "" {
		return p, nil
	}

	var (
		sameColor []ldVariant
		matched   *ldVariant
	)
	for i, v := range product.variants {
		if models.FoldName(v.color) != wanted {
			continue
		}
		sameColor = append(sameColor, v)
		if matched == nil && (hints.Size == "" || strings.EqualFold(strings.TrimSpace(v.size), strings.TrimSpace(hints.Size))) {
			matched = &product.variants[i]
		}
	}
	if len(sameColor) == 0 {
		return p, nil
	}

	// Cor inteira esgotada vale mesmo se o registro do tamanho for ambíguo
	allSoldOut := true
	for _, v := range sameColor {
		if !availabilitySoldOut(v.availability) {
			allSoldOut = false
			break
		}
	}
	if allSoldOut {
		p.stock = stockPtr(models.SoldOut)
	}

	if matched != nil {
		p.colorName = matched.color
		p.size = matched.size
		p.price = newPriceInfo(matched.listOrPrice(), matched.price)
		switch {
		case availabilitySoldOut(matched.availability):
			p.stock = stockPtr(models.SoldOut)
		case p.stock == nil && strings.Contains(strings.ToLower(matched.availability), "limitedavailability"):
			p.stock = stockPtr(models.LowStock)
		case p.stock == nil && matched.availability != "":
			p.variantAvailable = true
		}
	}
	return p, nil
}

func (v ldVariant) listOrPrice() float64 {
	if v.listPrice > 0 {
		return v.listPrice
	}
	return v.price
}

func availabilitySoldOut(availability string) bool {
	a := strings.ToLower(availability)
	return strings.Contains(a, "outofstock") || strings.Contains(a, "soldout") || strings.Contains(a, "discontinued")
}

func (p *ldProduct) colorSet() []models.Color {
	colors := make([]models.Color, 0, len(p.variants))
	for _, v := range p.variants {
		colors = append(colors, models.Color{Name: v.color})
	}
	return models.DedupeColors(models.RegionOther, colors)
}

func findLinkedProduct(doc *goquery.Document) (*ldProduct, error) {
	var (
		product *ldProduct
		lastErr error
	)
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			lastErr = &ParseError{Strategy: "linked-data", Err: err}
			return true
		}
		for _, node := range ldNodes(raw) {
			if !ldIsType(node, "ProductGroup") && !ldIsType(node, "Product") {
				continue
			}
			candidate := parseLinkedProduct(node)
			if len(candidate.variants) > 0 {
				product = candidate
				return false
			}
		}
		return true
	})

	if product != nil {
		return product, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errNoPayload
}

// ldNodes achata documentos JSON-LD: objeto único, array ou @graph
func ldNodes(raw any) []map[string]any {
	var nodes []map[string]any
	switch t := raw.(type) {
	case map[string]any:
		if graph, ok := t["@graph"].([]any); ok {
			for _, g := range graph {
				nodes = append(nodes, ldNodes(g)...)
			}
		} else {
			nodes = append(nodes, t)
		}
	case []any:
		for _, item := range t {
			nodes = append(nodes, ldNodes(item)...)
		}
	}
	return nodes
}

func ldIsType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return t == want
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

func parseLinkedProduct(node map[string]any) *ldProduct {
	p := &ldProduct{
		productID: firstString(node, "productGroupID", "productID", "sku"),
		name:      ldString(node["name"]),
		image:     ldImage(node["image"]),
	}

	if variants, ok := node["hasVariant"].([]any); ok {
		for _, raw := range variants {
			if v, ok := raw.(map[string]any); ok {
				p.variants = append(p.variants, variantsFromProduct(v)...)
			}
		}
		return p
	}
	p.variants = variantsFromProduct(node)
	return p
}

// variantsFromProduct lê as ofertas de um Product. Sem color/size no produto, tenta o
// nome da oferta no formato "Cor / Tamanho".
func variantsFromProduct(node map[string]any) []ldVariant {
	color := ldString(node["color"])
	size := ldString(node["size"])

	var variants []ldVariant
	for _, offer := range ldOffers(node["offers"]) {
		v := ldVariant{
			color:        color,
			size:         size,
			availability: ldString(offer["availability"]),
		}
		v.price, _ = priceFromAny(offer["price"])
		v.listPrice = ldListPrice(offer["priceSpecification"])

		if item, ok := offer["itemOffered"].(map[string]any); ok {
			fill(&v.color, ldString(item["color"]))
			fill(&v.size, ldString(item["size"]))
		}
		if v.color == "" || v.size == "" {
			if c, s, ok := splitOfferName(ldString(offer["name"])); ok {
				fill(&v.color, c)
				fill(&v.size, s)
			}
		}
		if v.color == "" {
			continue
		}
		variants = append(variants, v)
	}
	return variants
}

func ldOffers(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		if nested, ok := t["offers"]; ok && ldIsType(t, "AggregateOffer") {
			return ldOffers(nested)
		}
		return []map[string]any{t}
	case []any:
		var out []map[string]any
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func ldListPrice(v any) float64 {
	var entries []any
	switch t := v.(type) {
	case map[string]any:
		entries = []any{t}
	case []any:
		entries = t
	}
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		kind := ldString(entry["priceType"])
		if strings.Contains(kind, "ListPrice") || strings.Contains(kind, "StrikethroughPrice") {
			if price, ok := priceFromAny(entry["price"]); ok {
				return price
			}
		}
	}
	return 0
}

func splitOfferName(name string) (string, string, bool) {
	parts := strings.Split(name, " / ")
	if len(parts) < 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

func ldString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case map[string]any:
		return ldString(t["name"])
	}
	return ""
}

func ldImage(v any) string {
	switch t := v.(type) {
	case []any:
		if len(t) > 0 {
			return ldImage(t[0])
		}
	case map[string]any:
		return ldString(t["url"])
	}
	return ldString(v)
}

func firstString(node map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := ldString(node[k]); s != "" {
			return s
		}
	}
	return ""
}
