package scraper

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"sync"

	"bot-variantes/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher busca o conteúdo bruto de uma URL
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Page, error)
}

// Page é o conteúdo de uma página buscada. O documento HTML é analisado uma única vez,
// mesmo quando a página é compartilhada por várias variantes no mesmo ciclo.
type Page struct {
	URL  string
	Body []byte
	// VisibleText é o texto realmente renderizado, quando a página veio de um navegador
	VisibleText string

	once   sync.Once
	doc    *goquery.Document
	docErr error
}

// NewPage cria uma página a partir do corpo bruto
func NewPage(rawURL string, body []byte) *Page {
	return &Page{URL: rawURL, Body: body}
}

// Document devolve o documento goquery da página
func (p *Page) Document() (*goquery.Document, error) {
	p.once.Do(func() {
		p.doc, p.docErr = goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	})
	return p.doc, p.docErr
}

// Hints identifica a variante desejada dentro de uma página com várias variantes
type Hints struct {
	ColorCode string
	ColorName string
	Size      string
	Region    models.Region
}

// HintsFor monta as dicas de identidade de um item monitorado
func HintsFor(item models.TrackedItem) Hints {
	return Hints{
		ColorCode: item.ColorCode,
		ColorName: item.Color,
		Size:      item.Size,
		Region:    item.Region,
	}
}

func (h Hints) color() models.Color {
	return models.Color{Code: h.ColorCode, Name: h.ColorName}
}

func (h Hints) hasColor() bool {
	return strings.TrimSpace(h.ColorCode) != "" || strings.TrimSpace(h.ColorName) != ""
}

// Storefront descreve uma vitrine regional suportada
type Storefront struct {
	Region   models.Region
	Suffixes []string
	// Markdown indica se a loja publica cores descontinuadas numa listagem de liquidação
	Markdown bool
}

// CanHandle verifica se a vitrine atende a URL fornecida
func (s Storefront) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, suffix := range s.Suffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// Registry mantém as vitrines regionais conhecidas
type Registry struct {
	storefronts []Storefront
}

// NewRegistry cria o registro padrão de vitrines
func NewRegistry() *Registry {
	return &Registry{
		storefronts: []Storefront{
			{Region: models.RegionHK, Suffixes: []string{".com.hk", ".hk"}},
			{Region: models.RegionAU, Suffixes: []string{".com.au", ".au"}},
			{Region: models.RegionUS, Suffixes: []string{".com"}, Markdown: true},
		},
	}
}

// FindStorefront encontra a vitrine apropriada para uma URL
func (r *Registry) FindStorefront(rawURL string) (Storefront, bool) {
	for _, s := range r.storefronts {
		if s.CanHandle(rawURL) {
			return s, true
		}
	}
	return Storefront{}, false
}

// RegionFor devolve a região da URL, ou OTHER quando nenhuma vitrine atende
func (r *Registry) RegionFor(rawURL string) models.Region {
	if s, ok := r.FindStorefront(rawURL); ok {
		return s.Region
	}
	return models.RegionOther
}

// SupportsMarkdown informa se a loja da URL tem listagem de liquidação
func (r *Registry) SupportsMarkdown(rawURL string) bool {
	s, ok := r.FindStorefront(rawURL)
	return ok && s.Markdown
}
