package notifier

import (
	"context"
	"fmt"
	"time"

	"bot-variantes/internal/models"

	"github.com/google/uuid"
)

// Notification é um alerta pronto para entrega
type Notification struct {
	ID      string
	Title   string
	Message string
	URL     string
	Image   string
}

// Sender entrega o alerta ao usuário (no bot, uma mensagem do Telegram)
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Notifier transforma eventos em alertas
type Notifier struct {
	sender Sender
	newID  func() string
	now    func() time.Time
}

// New cria um Notifier que entrega pelo sender informado
func New(sender Sender) *Notifier {
	return &Notifier{
		sender: sender,
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

// Notify envia exatamente um alerta para o evento e devolve o par id -> URL para ser
// gravado em lote pelo chamador. Eventos desconhecidos devolvem nil, sem envio.
func (n *Notifier) Notify(ctx context.Context, item models.TrackedItem, event models.ChangeEvent) (*models.NotificationRecord, error) {
	title, message, ok := Render(item, event)
	if !ok {
		return nil, nil
	}

	target := item.SourceURL()
	if event.DestinationURL != "" {
		target = event.DestinationURL
	}

	notification := Notification{
		ID:      n.newID(),
		Title:   title,
		Message: message,
		URL:     target,
		Image:   item.Image,
	}
	if err := n.sender.Send(ctx, notification); err != nil {
		return nil, fmt.Errorf("erro ao enviar notificação: %w", err)
	}

	return &models.NotificationRecord{
		ID:        notification.ID,
		URL:       target,
		CreatedAt: n.now(),
	}, nil
}
