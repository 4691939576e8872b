// Package docs serve a especificação OpenAPI da API do StockUI, embutida no binário.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed swagger.json
var swaggerJSON []byte

// Handler responde GET /swagger/doc.json (lido pela interface do http-swagger).
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(swaggerJSON)
}

// Spec retorna o documento bruto.
func Spec() []byte {
	return swaggerJSON
}
