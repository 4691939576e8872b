// Package validation configura o validator dos formulários.
// Os campos chegam como texto (o que o usuário digitou), então as regras numéricas
// são tags próprias que interpretam o texto.
package validation

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New retorna um validator com as tags do StockUI registradas:
//
//	nonneg    número (decimal) >= 0, e.g. preço
//	nonnegint inteiro >= 0, e.g. estoque inicial
//	posint    inteiro > 0, e.g. quantidade de movimentação
//
// Os nomes de campo reportados são os da tag json.
func New() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "nonneg", func(fl validator.FieldLevel) bool {
		f, ok := ParseFloat(fl.Field().String())
		return ok && f >= 0
	})
	mustRegister(v, "nonnegint", func(fl validator.FieldLevel) bool {
		n, ok := ParseInt(fl.Field().String())
		return ok && n >= 0
	})
	mustRegister(v, "posint", func(fl validator.FieldLevel) bool {
		n, ok := ParseInt(fl.Field().String())
		return ok && n > 0
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("validation: " + tag + ": " + err.Error())
	}
}

// ParseFloat interpreta texto numérico finito. NaN e infinito não são aceitos.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt interpreta texto inteiro em base 10.
func ParseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseLeadingInt lê o inteiro no início do texto e ignora o resto ("5.5" -> 5, "12 un" -> 12).
// Usado nos filtros, onde o campo numérico do navegador pode mandar decimais.
func ParseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// InvalidFields extrai, na ordem de declaração, os campos reprovados.
// Retorna nil se err não for um erro de validação.
func InvalidFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	seen := make(map[string]bool, len(verrs))
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		fields = append(fields, fe.Field())
	}
	return fields
}
