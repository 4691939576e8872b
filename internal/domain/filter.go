package domain

// RawFilters guarda o texto digitado nos campos de filtro da listagem.
// Vazio significa "sem restrição".
type RawFilters struct {
	Name     string `json:"name"`
	MinPrice string `json:"min_price"`
	MaxPrice string `json:"max_price"`
	MinStock string `json:"min_stock"`
	MaxStock string `json:"max_stock"`
}

// FilterCriteria define as restrições já interpretadas sobre a lista de produtos.
// nil em qualquer limite significa ausência de restrição (não zero).
type FilterCriteria struct {
	NameSubstring string
	MinPrice      *float64
	MaxPrice      *float64
	MinStock      *int
	MaxStock      *int
}
