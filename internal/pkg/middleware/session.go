package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"stockui/internal/pkg/i18n"
)

// ContextKey é o tipo das chaves que os middlewares anexam ao contexto.
// Context Keys devem ser não-exportadas e de um tipo único para não colidir com outros pacotes.
type ContextKey int

const (
	SessionIDKey ContextKey = iota
)

// SessionCookieName é o cookie que identifica a sessão do navegador.
const SessionCookieName = "stockui_sid"

// NewSessionMiddleware garante que toda requisição tenha um ID de sessão (UUID).
// Cookie ausente ou inválido gera uma sessão nova. O estado das telas fica no Redis, indexado pelo ID.
func NewSessionMiddleware(secureCookie bool, ttl time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			// 1. Ler o cookie da sessão
			sid := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					sid = c.Value
				}
			}

			// 2. Sessão nova
			if sid == "" {
				sid = uuid.New().String()
			}

			// 3. Renovar o cookie (mesma expiração do estado no Redis)
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secureCookie,
				SameSite: http.SameSiteLaxMode,
			})

			// 4. Anexar o ID ao contexto
			ctx := context.WithValue(r.Context(), SessionIDKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionIDFromContext é uma função utilitária para extrair o ID da sessão no handler.
func GetSessionIDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(SessionIDKey).(string)
	return sid, ok && sid != ""
}

// NewLocaleMiddleware escolhe o idioma das mensagens pelo Accept-Language.
func NewLocaleMiddleware(fallback language.Tag) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tag := i18n.Match(r.Header.Get("Accept-Language"), fallback)
			w.Header().Set("Content-Language", tag.String())
			next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), tag)))
		})
	}
}
