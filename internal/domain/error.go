package domain

// ErrorResponse é a estrutura padronizada para respostas de erro da API do StockUI.
// @Description Estrutura padronizada para respostas de erro da API.
type ErrorResponse struct {
	Code     int    `json:"code" example:"409"`
	Category string `json:"category" example:"CONFLICT"`
	Message  string `json:"message" example:"Conflito de estado: já existe uma operação em andamento para este formulário"`
}
