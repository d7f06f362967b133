package domain

import (
	"strconv"
	"strings"
)

// LineItem представляет одну позицию корзины.
// Имя и цена фиксируются в момент добавления и дальше не обновляются.
type LineItem struct {
	// ProductID — внешний идентификатор товара, ключ уникальности в корзине.
	ProductID string `json:"produto_id"`
	// Name — отображаемое название, копия из каталога на момент добавления.
	Name string `json:"nome"`
	// UnitPrice — цена за единицу, неотрицательная.
	UnitPrice float64 `json:"preco"`
	// Quantity — количество, строго положительное; позиция с qty <= 0 удаляется.
	Quantity int `json:"quantidade"`
	// Notes — свободный комментарий к позиции. Пока не заполняется
	// ни одной операцией, но присутствует в wire-формате заказа.
	Notes string `json:"observacoes"`
}

// Subtotal возвращает стоимость позиции: цена * количество.
func (i LineItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Cart — упорядоченный список позиций, уникальных по ProductID.
// Порядок добавления сохраняется и является порядком отображения.
type Cart struct {
	items []LineItem
}

// Add разбирает priceText и добавляет товар в корзину.
// Если товар уже есть, увеличивает количество на 1; имя и цена
// существующей позиции при этом не обновляются (побеждают первые значения).
func (c *Cart) Add(productID, name, priceText string) error {
	price, err := strconv.ParseFloat(strings.TrimSpace(priceText), 64)
	if err != nil {
		return ErrPriceInvalid
	}
	if price < 0 {
		return ErrPriceInvalid
	}

	for idx := range c.items {
		if c.items[idx].ProductID == productID {
			c.items[idx].Quantity++
			return nil
		}
	}

	c.items = append(c.items, LineItem{
		ProductID: productID,
		Name:      name,
		UnitPrice: price,
		Quantity:  1,
		Notes:     "",
	})
	return nil
}

// Remove удаляет позицию по индексу в текущем порядке отображения.
// Индекс вне диапазона — no-op.
func (c *Cart) Remove(index int) {
	if index < 0 || index >= len(c.items) {
		return
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
}

// ChangeQuantity прибавляет delta к количеству позиции.
// Если итог <= 0, позиция удаляется целиком вместо обнуления.
func (c *Cart) ChangeQuantity(index, delta int) {
	if index < 0 || index >= len(c.items) {
		return
	}
	c.items[index].Quantity += delta
	if c.items[index].Quantity <= 0 {
		c.Remove(index)
	}
}

// Items возвращает копию позиций в порядке добавления.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len возвращает число различных позиций (не сумму количеств).
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty сообщает, пуста ли корзина.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Total возвращает общую сумму корзины.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// Reset опустошает корзину.
func (c *Cart) Reset() {
	c.items = nil
}
