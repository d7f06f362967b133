package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
)

// EventType определяет тип события терминала.
type EventType string

const (
	// EventTypeOrderFinalized — заказ успешно принят сервисом заказов.
	EventTypeOrderFinalized EventType = "pedido.finalizado"
	// EventTypeOrderRejected — сервис заказов отклонил заказ.
	EventTypeOrderRejected EventType = "pedido.rejeitado"
)

// Topics для Kafka.
const (
	TopicOrderEvents = "caixa.pedido.events"
)

// OrderEvent представляет событие заказа терминала.
// Панель acompanhamento подписывается на эти события вместо опроса зеркала.
type OrderEvent struct {
	EventType   EventType  `json:"event_type"`
	JournalID   string     `json:"journal_id"`
	ClienteNome string     `json:"cliente_nome"`
	Tipo        string     `json:"tipo"`
	QRCode      string     `json:"qr_code,omitempty"`
	Erro        string     `json:"erro,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	Itens       []itemView `json:"itens,omitempty"`
}

type itemView struct {
	ProdutoID  string  `json:"produto_id"`
	Nome       string  `json:"nome"`
	Quantidade int     `json:"quantidade"`
	Preco      float64 `json:"preco"`
}

// NewOrderFinalizedEvent создает событие успешно отправленного заказа.
func NewOrderFinalizedEvent(journalID string, payload domain.OrderPayload, qrCode string) *OrderEvent {
	items := make([]itemView, 0, len(payload.Itens))
	for _, it := range payload.Itens {
		items = append(items, itemView{
			ProdutoID:  it.ProductID,
			Nome:       it.Name,
			Quantidade: it.Quantity,
			Preco:      it.UnitPrice,
		})
	}

	return &OrderEvent{
		EventType:   EventTypeOrderFinalized,
		JournalID:   journalID,
		ClienteNome: payload.ClienteNome,
		Tipo:        payload.Tipo,
		QRCode:      qrCode,
		Timestamp:   time.Now(),
		Itens:       items,
	}
}

// NewOrderRejectedEvent создает событие отклонённого заказа.
func NewOrderRejectedEvent(payload domain.OrderPayload, errMessage string) *OrderEvent {
	return &OrderEvent{
		EventType:   EventTypeOrderRejected,
		ClienteNome: payload.ClienteNome,
		Tipo:        payload.Tipo,
		Erro:        errMessage,
		Timestamp:   time.Now(),
	}
}
