package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ProductID é o identificador opaco de um Produto atribuído pelo backend.
// O backend pode enviá-lo como número ou como string; guardamos sempre como string.
type ProductID string

// UnmarshalJSON aceita tanto `7` quanto `"7"`.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id de produto inválido %s: %w", string(data), err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string { return string(id) }

// Product representa o item do catálogo tal como o backend o devolve.
// O estoque só muda através de movimentações de inventário, nunca por edição direta.
type Product struct {
	ID          ProductID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
}

// UnmarshalJSON aceita price e stock como número ou como texto ("19.90", "42"),
// já que o backend pode serializar decimais como string.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var raw struct {
		plain
		Price flexNumber `json:"price"`
		Stock flexNumber `json:"stock"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	stock := float64(raw.Stock)
	if stock != math.Trunc(stock) {
		return fmt.Errorf("estoque não inteiro: %v", stock)
	}

	*p = Product(raw.plain)
	p.Price = float64(raw.Price)
	p.Stock = int(stock)
	return nil
}

// flexNumber decodifica `19.9`, `"19.90"` ou null (zero).
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	text := string(data)
	if text == "null" {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = strings.TrimSpace(s)
		if text == "" {
			*n = 0
			return nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("número inválido %s", string(data))
	}
	*n = flexNumber(f)
	return nil
}

// ProductFields são os dados enviados na criação de um Produto (o backend atribui o ID).
type ProductFields struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// ProductUpdate são os dados enviados na edição. Não existe campo de estoque aqui:
// editar um produto nunca altera o estoque.
type ProductUpdate struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// --- Interfaces de Contrato ---

// ProductRepository é o contrato de acesso à API de inventário.
// A implementação concreta (internal/repository/productrepo) fala HTTP com o backend.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id ProductID) (Product, error)
	CreateProduct(ctx context.Context, fields ProductFields) error
	UpdateProduct(ctx context.Context, id ProductID, update ProductUpdate) error
	DeleteProduct(ctx context.Context, id ProductID) error
	RecordMovement(ctx context.Context, movement InventoryMovement) error
}
