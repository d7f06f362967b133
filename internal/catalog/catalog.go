package catalog

import "strings"

// Product — карточка товара в cardápio терминала.
type Product struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Codigo    string `json:"codigo"`
	Descricao string `json:"descricao"`
	Preco     string `json:"preco"`
	Categoria string `json:"categoria"`
}

// MatchesSearch проверяет, попадает ли товар под строку поиска.
// Поиск регистронезависимый, по подстроке имени ИЛИ кода товара.
func MatchesSearch(p Product, termo string) bool {
	termo = strings.ToLower(termo)
	return strings.Contains(strings.ToLower(p.Nome), termo) ||
		strings.Contains(strings.ToLower(p.Codigo), termo)
}

// MatchesCategory проверяет фильтр категории: точное совпадение
// идентификатора, пустой фильтр показывает всё.
func MatchesCategory(p Product, categoriaID string) bool {
	return categoriaID == "" || p.Categoria == categoriaID
}

// FilterSearch возвращает товары, видимые при данной строке поиска.
func FilterSearch(products []Product, termo string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if MatchesSearch(p, termo) {
			out = append(out, p)
		}
	}
	return out
}

// Filter применяет оба фильтра сразу: сначала категорию, потом поиск.
func Filter(products []Product, termo, categoriaID string) []Product {
	return FilterSearch(FilterCategory(products, categoriaID), termo)
}

// FilterCategory возвращает товары, видимые при данном фильтре категории.
func FilterCategory(products []Product, categoriaID string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if MatchesCategory(p, categoriaID) {
			out = append(out, p)
		}
	}
	return out
}
