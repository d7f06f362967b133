package domain

import "context"

// MirrorStore публикует снимок корзины для панели покупателя.
// Хранит единственный слот; записи last-write-wins.
type MirrorStore interface {
	// Set перезаписывает снимок под MirrorKey.
	Set(ctx context.Context, snapshot CartSnapshot) error
	// Get возвращает текущий снимок или ErrMirrorEmpty, если ключа нет.
	Get(ctx context.Context) (CartSnapshot, error)
	// Delete удаляет ключ. Отсутствие ключа не является ошибкой.
	Delete(ctx context.Context) error
}

// OrderGateway — клиент удалённого сервиса заказов.
type OrderGateway interface {
	// CreateOrder отправляет заказ. Транспортные сбои возвращаются как
	// ErrGatewayUnavailable, бизнес-отказ сервера — как *OrderRejectedError.
	CreateOrder(ctx context.Context, payload OrderPayload) (OrderConfirmation, error)
}

// JournalRepository хранит локальный журнал отправленных заказов.
type JournalRepository interface {
	Append(ctx context.Context, entry JournalEntry) error
	// List возвращает записи от новых к старым, не более limit (если > 0).
	List(ctx context.Context, limit int) ([]JournalEntry, error)
}

// KitchenOrderItem — позиция заказа в ленте кухни.
type KitchenOrderItem struct {
	Produto     string `json:"produto"`
	Quantidade  int    `json:"quantidade"`
	Observacoes string `json:"observacoes"`
}

// KitchenOrder — активный заказ, как его отдаёт кухонный сервис.
type KitchenOrder struct {
	ID           int64              `json:"id"`
	NumeroPedido string             `json:"numero_pedido"`
	Tipo         string             `json:"tipo"`
	Mesa         string             `json:"mesa"`
	Status       string             `json:"status"`
	Itens        []KitchenOrderItem `json:"itens"`
	CriadoEm     string             `json:"criado_em"`
}

// KitchenGateway — клиент кухонного сервиса.
type KitchenGateway interface {
	// UpdateStatus переводит заказ в новый статус.
	UpdateStatus(ctx context.Context, orderID int64, status string) error
	// ListActive возвращает активные заказы для ленты кухни.
	ListActive(ctx context.Context) ([]KitchenOrder, error)
}

// EventPublisher публикует события терминала во внешний брокер.
type EventPublisher interface {
	Publish(topic string, key string, event any) error
}
