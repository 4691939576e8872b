// Package catalog contém a lógica pura da listagem: filtragem de produtos e
// classificação do nível de estoque. Nada aqui faz I/O.
package catalog

import (
	"strings"

	"stockui/internal/domain"
	"stockui/internal/pkg/validation"
)

// Apply retorna os produtos que satisfazem todos os critérios, na ordem original.
// A entrada não é modificada. Limites inconsistentes (min > max) resultam em lista vazia.
func Apply(products []domain.Product, c domain.FilterCriteria) []domain.Product {
	needle := strings.ToLower(c.NameSubstring)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, c, needle) {
			out = append(out, p)
		}
	}
	return out
}

// Matches avalia os cinco predicados para um produto. needle é o nome já em minúsculas.
func Matches(p domain.Product, c domain.FilterCriteria, needle string) bool {
	if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
		return false
	}
	if c.MinPrice != nil && p.Price < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && p.Price > *c.MaxPrice {
		return false
	}
	if c.MinStock != nil && p.Stock < *c.MinStock {
		return false
	}
	if c.MaxStock != nil && p.Stock > *c.MaxStock {
		return false
	}
	return true
}

// ParseCriteria converte o texto dos filtros em critérios.
// Texto vazio ou malformado vira "sem restrição", nunca erro.
// Limites de estoque com decimais são truncados ("5.5" vira 5).
func ParseCriteria(raw domain.RawFilters) domain.FilterCriteria {
	c := domain.FilterCriteria{NameSubstring: raw.Name}

	if f, ok := validation.ParseFloat(raw.MinPrice); ok {
		c.MinPrice = &f
	}
	if f, ok := validation.ParseFloat(raw.MaxPrice); ok {
		c.MaxPrice = &f
	}
	if n, ok := validation.ParseLeadingInt(raw.MinStock); ok {
		c.MinStock = &n
	}
	if n, ok := validation.ParseLeadingInt(raw.MaxStock); ok {
		c.MaxStock = &n
	}
	return c
}
