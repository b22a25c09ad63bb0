package models

import (
	"strings"
	"time"
)

// StockStatus é o estado de estoque normalizado de uma variante
type StockStatus string

const (
	InStock  StockStatus = "in_stock"
	LowStock StockStatus = "low_stock"
	SoldOut  StockStatus = "sold_out"
)

// Valid informa se o status é um dos três valores permitidos
func (s StockStatus) Valid() bool {
	switch s {
	case InStock, LowStock, SoldOut:
		return true
	}
	return false
}

func (s StockStatus) rank() int {
	switch s {
	case LowStock:
		return 1
	case SoldOut:
		return 2
	}
	return 0
}

// Stronger devolve o status mais restritivo entre os dois (sold_out > low_stock > in_stock)
func Stronger(a, b StockStatus) StockStatus {
	a, b = NormalizeStock(string(a)), NormalizeStock(string(b))
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// NormalizeStock converte qualquer sinal de estoque (badge, texto, valor legado) para o enum.
// Sinais desconhecidos viram in_stock.
func NormalizeStock(signal string) StockStatus {
	s := strings.ToLower(strings.TrimSpace(signal))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "in_stock", "instock", "available", "":
		return InStock
	case "low_stock", "lowstock", "limited", "limitedavailability", "few_left":
		return LowStock
	case "sold_out", "soldout", "out_of_stock", "outofstock", "unavailable", "discontinued":
		return SoldOut
	}
	return InStock
}

// Region identifica a vitrine regional de uma loja
type Region string

const (
	RegionUS    Region = "US"
	RegionHK    Region = "HK"
	RegionAU    Region = "AU"
	RegionOther Region = "OTHER"
)

// ParseRegion normaliza o código de região
func ParseRegion(s string) Region {
	switch Region(strings.ToUpper(strings.TrimSpace(s))) {
	case RegionUS:
		return RegionUS
	case RegionHK:
		return RegionHK
	case RegionAU:
		return RegionAU
	}
	return RegionOther
}

// UsesColorCodes informa se a vitrine expõe códigos de cor estáveis
func (r Region) UsesColorCodes() bool {
	return r == RegionUS
}

// Currency devolve o rótulo de moeda usado nas mensagens
func (r Region) Currency() string {
	switch r {
	case RegionUS:
		return "US$"
	case RegionHK:
		return "HK$"
	case RegionAU:
		return "A$"
	}
	return "$"
}

// LastChange resume o evento mais recente de um item
type LastChange struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackedItem representa uma variante (produto, cor, tamanho) sendo monitorada
type TrackedItem struct {
	ProductID   string `json:"productId"`
	Color       string `json:"color"`
	ColorCode   string `json:"colorCode,omitempty"`
	Size        string `json:"size"`
	Name        string `json:"name"`
	ProductLine string `json:"productLine,omitempty"`
	URL         string `json:"url"`
	Region      Region `json:"region"`
	Image       string `json:"image,omitempty"`

	CurrentPrice    *float64    `json:"currentPrice"`
	OriginalPrice   *float64    `json:"originalPrice"` // só presente enquanto em promoção
	OnSale          bool        `json:"onSale"`
	StockStatus     StockStatus `json:"stockStatus"`
	AvailableColors []Color     `json:"availableColors"`
	MarkdownURL     string      `json:"markdownUrl,omitempty"`

	TrackNewColors bool `json:"trackNewColors"`

	AddedAt     time.Time   `json:"addedAt"`
	LastChecked time.Time   `json:"lastChecked"`
	LastChange  *LastChange `json:"lastChange"`
}

// TrackedColor devolve a cor monitorada como Color
func (i TrackedItem) TrackedColor() Color {
	return Color{Code: i.ColorCode, Name: i.Color}
}

// SameIdentity compara a tripla produto/cor/tamanho
func (i TrackedItem) SameIdentity(other TrackedItem) bool {
	if i.ProductID != other.ProductID {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(i.Size), strings.TrimSpace(other.Size)) {
		return false
	}
	return i.TrackedColor().Key(i.Region) == other.TrackedColor().Key(i.Region)
}

// SourceURL é a página consultada no ciclo: a de liquidação, se o item já migrou para ela
func (i TrackedItem) SourceURL() string {
	if i.MarkdownURL != "" {
		return i.MarkdownURL
	}
	return i.URL
}

// NeedsAttention informa se o item conta para o badge
func (i TrackedItem) NeedsAttention() bool {
	return i.StockStatus == LowStock || i.StockStatus == SoldOut || i.OnSale
}

// Snapshot é o estado extraído de uma página, ainda não incorporado ao item.
// Preços nil significam "desconhecido".
type Snapshot struct {
	CurrentPrice    *float64
	OriginalPrice   *float64
	OnSale          bool
	StockStatus     StockStatus
	AvailableColors []Color
	// ColorData distingue "nenhuma informação de cor" de "lista confirmada vazia"
	ColorData bool

	ProductID string
	Name      string
	Image     string
	ColorCode string
	ColorName string
	Size      string
}

// HasColor informa se a cor aparece no conjunto extraído
func (s Snapshot) HasColor(region Region, c Color) bool {
	return ContainsColor(region, s.AvailableColors, c)
}

// NotificationRecord associa um alerta à URL aberta no clique
type NotificationRecord struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Price devolve um ponteiro para o valor
func Price(v float64) *float64 {
	return &v
}

// SamePrice compara dois preços opcionais
func SamePrice(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
