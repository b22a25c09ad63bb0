package models

import "fmt"

// EventType identifica a variante de um ChangeEvent
type EventType string

const (
	EventStatusChange    EventType = "status_change"
	EventPriceChange     EventType = "price_change"
	EventWentOnSale      EventType = "went_on_sale"
	EventNewColor        EventType = "new_color"
	EventMovedToMarkdown EventType = "moved_to_markdown"
)

// ChangeEvent é um fato tipado sobre uma diferença entre o estado salvo e o extraído.
// Apenas os campos da variante indicada por Type são preenchidos.
type ChangeEvent struct {
	Type EventType `json:"type"`

	// status_change
	FromStatus StockStatus `json:"fromStatus,omitempty"`
	ToStatus   StockStatus `json:"toStatus,omitempty"`

	// price_change
	FromPrice float64 `json:"fromPrice,omitempty"`
	ToPrice   float64 `json:"toPrice,omitempty"`

	// new_color
	Color Color `json:"color,omitempty"`

	// moved_to_markdown; SalePrice nil quando a loja não informa o preço de liquidação
	SalePrice      *float64 `json:"salePrice,omitempty"`
	ListPrice      *float64 `json:"listPrice,omitempty"`
	DestinationURL string   `json:"destinationUrl,omitempty"`
}

func StatusChange(from, to StockStatus) ChangeEvent {
	return ChangeEvent{Type: EventStatusChange, FromStatus: from, ToStatus: to}
}

func PriceChange(from, to float64) ChangeEvent {
	return ChangeEvent{Type: EventPriceChange, FromPrice: from, ToPrice: to}
}

func WentOnSale() ChangeEvent {
	return ChangeEvent{Type: EventWentOnSale}
}

func NewColor(c Color) ChangeEvent {
	return ChangeEvent{Type: EventNewColor, Color: c}
}

func MovedToMarkdown(sale, list *float64, destination string) ChangeEvent {
	return ChangeEvent{Type: EventMovedToMarkdown, SalePrice: sale, ListPrice: list, DestinationURL: destination}
}

// IsSoldOut informa se o evento é a transição para esgotado
func (e ChangeEvent) IsSoldOut() bool {
	return e.Type == EventStatusChange && e.ToStatus == SoldOut
}

func (e ChangeEvent) String() string {
	switch e.Type {
	case EventStatusChange:
		return fmt.Sprintf("%s{%s->%s}", e.Type, e.FromStatus, e.ToStatus)
	case EventPriceChange:
		return fmt.Sprintf("%s{%.2f->%.2f}", e.Type, e.FromPrice, e.ToPrice)
	case EventNewColor:
		return fmt.Sprintf("%s{%s}", e.Type, e.Color.Label())
	}
	return string(e.Type)
}
