package render

import (
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/caixa-terminal/internal/domain"
)

// EmptyPlaceholder — текст заглушки пустой корзины.
const EmptyPlaceholder = "Carrinho vazio"

// Line — строка корзины для отображения.
type Line struct {
	Index        int     `json:"index"`
	Nome         string  `json:"nome"`
	Quantidade   int     `json:"quantidade"`
	PrecoUnit    string  `json:"preco_unitario"`
	Subtotal     string  `json:"subtotal"`
	SubtotalReal float64 `json:"-"`
}

// ViewModel — модель отображения корзины, чистая функция от её состояния.
type ViewModel struct {
	Empty bool `json:"vazio"`
	// Placeholder заполнен только в пустом состоянии.
	Placeholder string `json:"placeholder,omitempty"`
	Lines       []Line `json:"itens"`
	// Total — общая сумма, всегда ровно с двумя десятичными знаками.
	Total string `json:"total"`
	// ItemCount — число различных позиций, не сумма количеств.
	ItemCount     int  `json:"itens_count"`
	SubmitEnabled bool `json:"finalizar_habilitado"`
}

// Render строит модель отображения из текущего состояния корзины.
func Render(cart *domain.Cart) ViewModel {
	if cart.IsEmpty() {
		return ViewModel{
			Empty:       true,
			Placeholder: EmptyPlaceholder,
			Total:       FormatAmount(0),
		}
	}

	items := cart.Items()
	lines := make([]Line, 0, len(items))
	for idx, item := range items {
		sub := item.Subtotal()
		lines = append(lines, Line{
			Index:        idx,
			Nome:         item.Name,
			Quantidade:   item.Quantity,
			PrecoUnit:    FormatAmount(item.UnitPrice),
			Subtotal:     FormatAmount(sub),
			SubtotalReal: sub,
		})
	}

	return ViewModel{
		Lines:         lines,
		Total:         FormatAmount(cart.Total()),
		ItemCount:     cart.Len(),
		SubmitEnabled: true,
	}
}

// FormatAmount форматирует сумму ровно с двумя десятичными знаками.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatBRL форматирует сумму как бразильскую валюту: "R$ 1.234,56".
// Тысячи разделяются точкой, десятичная часть — запятой.
func FormatBRL(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}

	s := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + fracPart
	if neg {
		out = "-" + out
	}
	return out
}
