package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// markupStrategy lê nome, imagem e preços das meta tags e dos seletores de preço comuns.
// Só roda quando nenhum payload estruturado identificou o produto, porque o preço da
// página não diz a qual variante pertence.
type markupStrategy struct{}

func (markupStrategy) name() string { return "markup" }

var (
	nameSelectors = []string{
		"meta[property='og:title']",
		"h1[itemprop='name']",
		"h1[data-testid*='title']",
		"h1[class*='title']",
		"h1",
	}

	salePriceSelectors = []string{
		"meta[property='product:sale_price:amount']",
		"[class*='price'] [class*='sale']",
		"[class*='sale-price']",
		"[class*='price--sale']",
	}

	priceSelectors = []string{
		"meta[property='product:price:amount']",
		"meta[property='og:price:amount']",
		"[itemprop='price']",
		"[data-testid*='price']",
		"[class*='price'] [class*='current']",
		"[class*='current-price']",
	}

	listPriceSelectors = []string{
		"meta[property='product:original_price:amount']",
		"[class*='price'] s",
		"[class*='price'] del",
		"[class*='list-price']",
		"[class*='original-price']",
		"[class*='compare-at']",
	}
)

func (s markupStrategy) extract(page *Page, hints Hints) (partial, error) {
	doc, err := page.Document()
	if err != nil {
		return partial{}, &ParseError{Strategy: s.name(), Err: err}
	}

	p := partial{
		name:  firstText(doc, nameSelectors),
		image: firstText(doc, []string{"meta[property='og:image']"}),
	}

	current, ok := firstPrice(doc, salePriceSelectors)
	if !ok {
		current, ok = firstPrice(doc, priceSelectors)
	}
	list, hasList := firstPrice(doc, listPriceSelectors)

	switch {
	case ok && hasList:
		p.price = newPriceInfo(list, current)
	case ok:
		p.price = newPriceInfo(current, 0)
	case hasList:
		p.price = newPriceInfo(list, 0)
	}

	if p.name == "" && p.image == "" && p.price == nil {
		return partial{}, errNoPayload
	}
	return p, nil
}

// firstText devolve o conteúdo do primeiro seletor encontrado (atributo content nas meta tags)
func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var text string
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			text = selectionValue(s)
			return text == ""
		})
		if text != "" {
			return text
		}
	}
	return ""
}

func firstPrice(doc *goquery.Document, selectors []string) (float64, bool) {
	for _, selector := range selectors {
		var (
			price float64
			found bool
		)
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if !isRendered(s) && goquery.NodeName(s) != "meta" {
				return true
			}
			price, found = parsePrice(selectionValue(s))
			return !found
		})
		if found {
			return price, true
		}
	}
	return 0, false
}

func selectionValue(s *goquery.Selection) string {
	if goquery.NodeName(s) == "meta" {
		content, _ := s.Attr("content")
		return strings.TrimSpace(content)
	}
	if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(s.Text())
}
