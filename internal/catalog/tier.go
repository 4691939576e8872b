package catalog

import (
	"fmt"
	"unicode/utf8"

	"stockui/internal/domain"
)

// Tier é a faixa de estoque usada para destacar produtos na listagem.
type Tier int

const (
	Critical Tier = iota // estoque <= 5
	Warning              // 5 < estoque <= 10
	Healthy              // estoque > 10
)

// Classify mapeia a quantidade em estoque para a faixa correspondente.
// Valores negativos (que o backend não deveria enviar) caem em Critical.
func Classify(stock int) Tier {
	switch {
	case stock > 10:
		return Healthy
	case stock > 5:
		return Warning
	default:
		return Critical
	}
}

func (t Tier) String() string {
	switch t {
	case Healthy:
		return "healthy"
	case Warning:
		return "warning"
	default:
		return "critical"
	}
}

// Badge é a variante visual do indicador de estoque.
func (t Tier) Badge() string {
	switch t {
	case Healthy:
		return "success"
	case Warning:
		return "warning"
	default:
		return "danger"
	}
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

const descriptionPreviewLen = 100

// ListedProduct é a linha da listagem pronta para exibição.
type ListedProduct struct {
	domain.Product
	Tier               Tier   `json:"tier"`
	Badge              string `json:"badge"`
	PriceLabel         string `json:"price_label"`
	DescriptionPreview string `json:"description_preview"`
}

// NewListedProduct deriva os campos de exibição de um produto.
func NewListedProduct(p domain.Product) ListedProduct {
	tier := Classify(p.Stock)
	return ListedProduct{
		Product:            p,
		Tier:               tier,
		Badge:              tier.Badge(),
		PriceLabel:         fmt.Sprintf("$%.2f", p.Price),
		DescriptionPreview: Preview(p.Description),
	}
}

// Preview corta a descrição em 100 caracteres, acrescentando "...".
func Preview(s string) string {
	if utf8.RuneCountInString(s) <= descriptionPreviewLen {
		return s
	}
	r := []rune(s)
	return string(r[:descriptionPreviewLen]) + "..."
}

// Rows converte produtos em linhas de listagem, preservando a ordem.
func Rows(products []domain.Product) []ListedProduct {
	out := make([]ListedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, NewListedProduct(p))
	}
	return out
}
