package scraper

import (
	"regexp"
	"strings"

	"bot-variantes/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Elementos que costumam carregar a mensagem de estoque
var stockMessageSelectors = []string{
	"[data-testid*='stock']",
	"[data-testid*='inventory']",
	"[class*='stock']",
	"[class*='inventory']",
	"[class*='availability']",
	"button[name='add']",
	"[class*='add-to-bag']",
	"[class*='add-to-cart']",
}

var (
	soldOutText  = regexp.MustCompile(`(?i)sold\s*out|out\s+of\s+stock|currently\s+unavailable|no\s+longer\s+available|售罄|已售完|已售罄|缺貨|缺货`)
	lowStockText = regexp.MustCompile(`(?i)only\s+\d+\s+left|few\s+left|low\s+stock|almost\s+gone|selling\s+fast|last\s+(one|\d+)\b|僅餘|仅剩|只剩|庫存緊張|库存紧张|少量現貨|少量现货`)
)

var hiddenClasses = map[string]bool{
	"hidden":          true,
	"is-hidden":       true,
	"visually-hidden": true,
	"visuallyhidden":  true,
	"sr-only":         true,
	"d-none":          true,
	"hide":            true,
}

// visibleTextStock procura frases de estoque baixo/esgotado apenas em texto renderizado.
// Com texto vindo de navegador, ele é usado direto; no HTML estático, elementos ocultos
// (atributos, estilos inline, classes utilitárias, <template>) são ignorados.
func visibleTextStock(page *Page) (models.StockStatus, bool) {
	if page.VisibleText != "" {
		return classifyStockText(page.VisibleText)
	}

	doc, err := page.Document()
	if err != nil {
		return "", false
	}

	var (
		status models.StockStatus
		found  bool
	)
	for _, selector := range stockMessageSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			if !isRendered(s) {
				return
			}
			if st, ok := classifyStockText(s.Text()); ok {
				if found {
					status = models.Stronger(status, st)
				} else {
					status, found = st, true
				}
			}
		})
		if found && status == models.SoldOut {
			break
		}
	}
	return status, found
}

// classifyStockText reconhece frases de esgotado e estoque baixo (inglês e chinês).
// Esgotado sempre prevalece.
func classifyStockText(text string) (models.StockStatus, bool) {
	if soldOutText.MatchString(text) {
		return models.SoldOut, true
	}
	if lowStockText.MatchString(text) {
		return models.LowStock, true
	}
	return "", false
}

// isRendered sobe pelos ancestrais procurando qualquer marca de ocultação
func isRendered(s *goquery.Selection) bool {
	for n := s; n.Length() > 0; n = n.Parent() {
		switch goquery.NodeName(n) {
		case "template", "noscript", "script", "style":
			return false
		}
		if _, ok := n.Attr("hidden"); ok {
			return false
		}
		if strings.EqualFold(n.AttrOr("aria-hidden", ""), "true") {
			return false
		}
		style := strings.ToLower(strings.ReplaceAll(n.AttrOr("style", ""), " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
		for _, class := range strings.Fields(n.AttrOr("class", "")) {
			if hiddenClasses[strings.ToLower(class)] {
				return false
			}
		}
	}
	return true
}
