package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config armazena todas as configurações do StockUI.
// Os campos são lidos das variáveis de ambiente (ou do .env carregado no main.go).
type Config struct {
	// Geral
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// API de inventário (backend externo, dono das regras de estoque)
	APIBaseURL string        `envconfig:"API_BASE_URL" default:"http://localhost:8000/api"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"10s"`

	// Cache (Redis) - estado dos formulários por sessão
	RedisAddr  string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	// Rate Limiting
	RateLimitMaxRequests int           `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`
	RateLimitPeriod      time.Duration `envconfig:"RATE_LIMIT_PERIOD" default:"1m"`

	// Idioma padrão das mensagens exibidas ao usuário
	DefaultLocale string `envconfig:"DEFAULT_LOCALE" default:"es"`
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("config: API_BASE_URL inválida (%q): %w", cfg.APIBaseURL, err)
	}
	if cfg.APITimeout <= 0 {
		return nil, fmt.Errorf("config: API_TIMEOUT deve ser positivo")
	}
	if cfg.RateLimitMaxRequests <= 0 {
		return nil, fmt.Errorf("config: RATE_LIMIT_MAX_REQUESTS deve ser positivo")
	}

	return &cfg, nil
}

// IsProduction indica se o serviço roda em produção.
func (c *Config) IsProduction() bool {
	return c != nil && c.Environment == "production"
}

// submitAPICalls é o máximo de chamadas sequenciais à API numa submissão
// (movimentação: registrar + recarregar a lista).
const submitAPICalls = 2

// SubmitLockTTL é o tempo máximo que uma submissão pode manter o formulário bloqueado.
// Cobre todas as chamadas da submissão no pior caso, mais a gravação do estado.
func (c *Config) SubmitLockTTL() time.Duration {
	return submitAPICalls*c.APITimeout + 5*time.Second
}

// WriteTimeout do servidor HTTP: a resposta da submissão só sai depois que a trava é liberada.
func (c *Config) WriteTimeout() time.Duration {
	return c.SubmitLockTTL() + 5*time.Second
}
