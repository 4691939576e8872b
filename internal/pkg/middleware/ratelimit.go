package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"stockui/internal/domain"
	"stockui/internal/pkg/cache"
	"stockui/internal/pkg/logger"
)

// RateLimiter limita o número de requisições por IP numa janela fixa, com contador no Redis.
// Se o Redis falhar, a requisição é recusada com 500 (sem contador não há limite confiável).
func RateLimiter(client cache.Client, log logger.Logger, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := "rate-limit:" + clientIP(r)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))

			// 1. Contar a requisição (o contador nasce com a expiração da janela)
			count, err := client.IncrWindow(r.Context(), key, window)
			if err != nil {
				log.Error("Falha ao incrementar contador de rate limit", err)
				writeLimitError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro Interno: rate limit indisponível")
				return
			}

			// 2. Acima do limite: recusar
			if count > int64(limit) {
				log.Warn("Rate limit excedido", map[string]interface{}{"key": key, "count": count})
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeLimitError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Limite de requisições excedido")
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr sem porta (e.g. já normalizado pelo middleware RealIP do chi)
		return r.RemoteAddr
	}
	return ip
}

func writeLimitError(w http.ResponseWriter, status int, category, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(domain.ErrorResponse{Code: status, Category: category, Message: msg})
}
