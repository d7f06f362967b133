package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отправки пустой корзины.
	ErrCartEmpty = errors.New("cart must contain at least one item")
	// Ошибка отсутствующего имени клиента (после trim).
	ErrCustomerNameRequired = errors.New("customer name is required")
	// Ошибка невыбранной формы оплаты.
	ErrPaymentMethodRequired = errors.New("payment method is required")
	// Ошибка нечислового или отрицательного текста цены.
	ErrPriceInvalid = errors.New("price must be a non-negative number")
	// ErrSubmitInFlight возвращается при повторной отправке, пока первая не завершилась.
	ErrSubmitInFlight = errors.New("order submission already in flight")
	// ErrGatewayUnavailable — транспортная ошибка или нечитаемый ответ сервиса заказов.
	ErrGatewayUnavailable = errors.New("order service unavailable")
	// ErrMirrorEmpty возвращается, когда ключ зеркала отсутствует в хранилище.
	ErrMirrorEmpty = errors.New("cart mirror is empty")
	// ErrKitchenUpdateFailed — кухня отклонила смену статуса.
	ErrKitchenUpdateFailed = errors.New("kitchen status update failed")
)

// OrderRejectedError — бизнес-отказ сервиса заказов (success=false).
// Message содержит текст сервера либо fallback "Erro desconhecido".
type OrderRejectedError struct {
	Message string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected: %s", e.Message)
}

// IsRejected проверяет, является ли ошибка бизнес-отказом сервера.
func IsRejected(err error) bool {
	var rejected *OrderRejectedError
	return errors.As(err, &rejected)
}

// FocusTarget возвращает поле формы, на которое нужно вернуть фокус
// после ошибки валидации, либо пустую строку.
func FocusTarget(err error) string {
	switch {
	case errors.Is(err, ErrCustomerNameRequired):
		return "cliente-nome"
	case errors.Is(err, ErrPaymentMethodRequired):
		return "forma-pagamento"
	default:
		return ""
	}
}
