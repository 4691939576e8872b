package domain

import (
	"fmt"
	"strings"
)

// MovementType indica a direção de uma movimentação de inventário.
// Os valores são os do contrato do backend.
type MovementType string

const (
	MovementIncrease MovementType = "entrada"
	MovementDecrease MovementType = "salida"
)

// ParseMovementType converte o texto do formulário em MovementType.
func ParseMovementType(s string) (MovementType, error) {
	switch MovementType(strings.ToLower(strings.TrimSpace(s))) {
	case MovementIncrease:
		return MovementIncrease, nil
	case MovementDecrease:
		return MovementDecrease, nil
	}
	return "", fmt.Errorf("tipo de movimentação desconhecido: %q", s)
}

// InventoryMovement é o payload de ajuste de estoque enviado ao backend.
// É efêmero: construído no cliente, enviado uma vez e descartado.
// O backend calcula o estoque resultante e rejeita saídas que o deixariam negativo.
type InventoryMovement struct {
	ProductID ProductID    `json:"product_id"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
}

// Validate verifica as invariantes locais da movimentação (não substitui o backend).
func (m InventoryMovement) Validate() error {
	if m.ProductID == "" {
		return fmt.Errorf("movimentação sem produto")
	}
	if _, err := ParseMovementType(string(m.Type)); err != nil {
		return err
	}
	if m.Quantity <= 0 {
		return fmt.Errorf("quantidade deve ser positiva, recebido %d", m.Quantity)
	}
	return nil
}
