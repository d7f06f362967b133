package domain

import "time"

// MirrorKey — общий ключ, под которым публикуется снимок корзины
// для панели покупателя. Контракт с внешним читателем: ключ отсутствует,
// когда корзина пуста (а не хранит пустую структуру).
const MirrorKey = "caixa_carrinho_temp"

// CartSnapshot — производный снимок корзины для внешнего отображения.
// Не является источником истины: перезаписывается на каждую мутацию
// корзины и на каждое изменение полей формы.
type CartSnapshot struct {
	ClienteNome string     `json:"cliente_nome"`
	Tipo        string     `json:"tipo"`
	Pagamento   string     `json:"pagamento"`
	Itens       []LineItem `json:"itens"`
	// Timestamp — момент снятия снимка в миллисекундах unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// NewCartSnapshot собирает снимок из корзины и текущих полей формы.
func NewCartSnapshot(cart *Cart, clienteNome, tipo, pagamento string, at time.Time) CartSnapshot {
	return CartSnapshot{
		ClienteNome: clienteNome,
		Tipo:        tipo,
		Pagamento:   pagamento,
		Itens:       cart.Items(),
		Timestamp:   at.UnixMilli(),
	}
}

// OrderPayload — тело запроса на создание заказа.
// Имя клиента передаётся обрезанным, наблюдения (observacoes) — как есть.
type OrderPayload struct {
	Tipo           string     `json:"tipo"`
	ClienteNome    string     `json:"cliente_nome"`
	FormaPagamento string     `json:"forma_pagamento"`
	Observacoes    string     `json:"observacoes"`
	Itens          []LineItem `json:"itens"`
}

// OrderConfirmation — успешный ответ сервиса заказов.
type OrderConfirmation struct {
	// QRCode — подтверждение заказа для клиента (непрозрачный payload).
	QRCode string
}

// JournalEntry — запись локального журнала успешно отправленных заказов.
// Журнал служит для сверки в конце смены; сервер остаётся источником истины.
type JournalEntry struct {
	ID        string
	Payload   OrderPayload
	QRCode    string
	CreatedAt time.Time
}
