// Package i18n guarda os textos exibidos ao usuário (banners dos formulários e da listagem)
// em espanhol, português e inglês, usando golang.org/x/text.
package i18n

import (
	"context"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Chaves das mensagens. Espanhol é o idioma padrão.
const (
	MsgCreateFailed      = "product.create.failed"
	MsgUpdateFailed      = "product.update.failed"
	MsgLoadProductFailed = "product.load.failed"
	MsgLoadListFailed    = "products.load.failed"
	MsgDeleteConfirm     = "product.delete.confirm"
	MsgInsufficientStock = "movement.insufficient_stock"
	MsgMovementFailed    = "movement.failed"
	MsgMovementRecorded  = "movement.recorded"   // args: tipo, quantidade
	MsgInvalidFields     = "form.invalid_fields" // args: campos
	MsgNoProductSelected = "movement.no_product"
	MsgMovementIncrease  = "movement.type.entrada"
	MsgMovementDecrease  = "movement.type.salida"
)

var (
	spanish    = language.Spanish
	portuguese = language.BrazilianPortuguese
	english    = language.English

	// supported: a ordem importa, o primeiro é o padrão do matcher.
	supported = []language.Tag{spanish, portuguese, english}
	matcher   = language.NewMatcher(supported)

	messages = map[string]map[language.Tag]string{
		MsgCreateFailed: {
			spanish:    "Ocurrió un error al crear el producto. Por favor, inténtalo de nuevo.",
			portuguese: "Ocorreu um erro ao criar o produto. Por favor, tente novamente.",
			english:    "An error occurred while creating the product. Please try again.",
		},
		MsgUpdateFailed: {
			spanish:    "Ocurrió un error al actualizar el producto. Por favor, inténtalo de nuevo.",
			portuguese: "Ocorreu um erro ao atualizar o produto. Por favor, tente novamente.",
			english:    "An error occurred while updating the product. Please try again.",
		},
		MsgLoadProductFailed: {
			spanish:    "No se pudo cargar la información del producto.",
			portuguese: "Não foi possível carregar as informações do produto.",
			english:    "The product information could not be loaded.",
		},
		MsgLoadListFailed: {
			spanish:    "No se pudieron cargar los productos. Por favor, intenta de nuevo más tarde.",
			portuguese: "Não foi possível carregar os produtos. Por favor, tente novamente mais tarde.",
			english:    "The products could not be loaded. Please try again later.",
		},
		MsgDeleteConfirm: {
			spanish:    "¿Estás seguro de que deseas eliminar este producto?",
			portuguese: "Tem certeza de que deseja excluir este produto?",
			english:    "Are you sure you want to delete this product?",
		},
		MsgInsufficientStock: {
			spanish:    "Error: Stock insuficiente para realizar esta operación",
			portuguese: "Erro: Estoque insuficiente para realizar esta operação",
			english:    "Error: Insufficient stock to perform this operation",
		},
		MsgMovementFailed: {
			spanish:    "Ocurrió un error al registrar el movimiento. Por favor, inténtalo de nuevo.",
			portuguese: "Ocorreu um erro ao registrar a movimentação. Por favor, tente novamente.",
			english:    "An error occurred while recording the movement. Please try again.",
		},
		MsgMovementRecorded: {
			spanish:    "Se ha registrado correctamente un %s de %d unidades",
			portuguese: "Foi registrada com sucesso uma %s de %d unidades",
			english:    "Successfully recorded a %s of %d units",
		},
		MsgInvalidFields: {
			spanish:    "Revisa los campos: %s",
			portuguese: "Verifique os campos: %s",
			english:    "Check the fields: %s",
		},
		MsgNoProductSelected: {
			spanish:    "Selecciona un producto",
			portuguese: "Selecione um produto",
			english:    "Select a product",
		},
		MsgMovementIncrease: {
			spanish:    "entrada",
			portuguese: "entrada",
			english:    "stock increase",
		},
		MsgMovementDecrease: {
			spanish:    "salida",
			portuguese: "saída",
			english:    "stock decrease",
		},
	}

	cat = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(spanish))
	for key, byLang := range messages {
		for tag, text := range byLang {
			if err := b.SetString(tag, key, text); err != nil {
				// Só falha com tag/mensagem malformada, o que é bug de código.
				panic("i18n: " + key + ": " + err.Error())
			}
		}
	}
	return b
}

// Supported retorna os idiomas disponíveis (o primeiro é o padrão).
func Supported() []language.Tag {
	out := make([]language.Tag, len(supported))
	copy(out, supported)
	return out
}

// ParseTag interpreta um código de idioma da configuração (e.g. "es", "pt-BR").
// Códigos inválidos ou sem tradução caem no espanhol.
func ParseTag(code string) language.Tag {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return spanish
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return spanish
	}
	return supported[idx]
}

// Match escolhe o idioma a partir do cabeçalho Accept-Language.
// Sem cabeçalho, ou sem nenhum idioma suportado, usa fallback.
func Match(acceptLanguage string, fallback language.Tag) language.Tag {
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return supported[idx]
}

type ctxKey struct{}

// WithLocale grava o idioma escolhido no contexto da requisição.
func WithLocale(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, ctxKey{}, tag)
}

// FromContext retorna o idioma da requisição (espanhol se ausente).
func FromContext(ctx context.Context) language.Tag {
	if tag, ok := ctx.Value(ctxKey{}).(language.Tag); ok {
		return tag
	}
	return spanish
}

// T traduz a chave para o idioma do contexto, formatando args como fmt.Sprintf.
func T(ctx context.Context, key string, args ...interface{}) string {
	p := message.NewPrinter(FromContext(ctx), message.Catalog(cat))
	return p.Sprintf(key, args...)
}
