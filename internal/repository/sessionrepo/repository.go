package sessionrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperror "stockui/internal/errors"
	"stockui/internal/pkg/cache"
	"stockui/internal/pkg/logger"
)

// Chaves no Redis.
const (
	stateKey = "stockui:session:%s:%s"      // sid, nome da tela (e.g. "form:create")
	lockKey  = "stockui:session:%s:%s:lock" // trava de submissão da tela
)

// Repository guarda o estado das telas (filtros, formulários) por sessão, em JSON no Redis.
type Repository struct {
	Cache   cache.Client
	TTL     time.Duration // expiração do estado, renovada a cada gravação
	LockTTL time.Duration // tempo máximo de uma submissão
	Logger  logger.Logger
}

// NewRepository cria e retorna uma nova instância do Repositório de Sessão.
func NewRepository(cacheClient cache.Client, ttl, lockTTL time.Duration, log logger.Logger) *Repository {
	return &Repository{Cache: cacheClient, TTL: ttl, LockTTL: lockTTL, Logger: log}
}

// Load lê o estado salvo em dst. Retorna false se não houver estado (sessão nova ou expirada).
func (r *Repository) Load(ctx context.Context, sid, name string, dst interface{}) (bool, error) {
	key := fmt.Sprintf(stateKey, sid, name)

	raw, err := r.Cache.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		r.Logger.Error("Falha ao ler estado da sessão.", err)
		return false, apperror.NewInternalError("falha ao ler estado da sessão", err)
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		// Estado corrompido ou de versão antiga: descartamos e a tela recomeça.
		r.Logger.Warn("Estado de sessão ilegível, descartado.", map[string]interface{}{"key": key, "error": err.Error()})
		_ = r.Cache.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// Save grava o estado da tela e renova a expiração.
func (r *Repository) Save(ctx context.Context, sid, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperror.NewInternalError("falha ao serializar estado da sessão", err)
	}
	if err := r.Cache.Set(ctx, fmt.Sprintf(stateKey, sid, name), string(data), r.TTL); err != nil {
		r.Logger.Error("Falha ao gravar estado da sessão.", err)
		return apperror.NewInternalError("falha ao gravar estado da sessão", err)
	}
	return nil
}

// Delete descarta o estado da tela.
func (r *Repository) Delete(ctx context.Context, sid, name string) error {
	if err := r.Cache.Delete(ctx, fmt.Sprintf(stateKey, sid, name)); err != nil {
		return apperror.NewInternalError("falha ao remover estado da sessão", err)
	}
	return nil
}

// Lock adquire a trava da tela (SET NX com expiração e um token próprio).
// Se a tela já estiver travada, retorna ConflictError.
// release deve ser chamado ao fim da operação; ele só apaga a trava se ela ainda for deste dono.
func (r *Repository) Lock(ctx context.Context, sid, name string) (release func(), err error) {
	key := fmt.Sprintf(lockKey, sid, name)
	token := uuid.NewString()

	ok, err := r.Cache.SetNX(ctx, key, token, r.LockTTL)
	if err != nil {
		r.Logger.Error("Falha ao adquirir trava do formulário.", err)
		return nil, apperror.NewInternalError("falha ao adquirir trava do formulário", err)
	}
	if !ok {
		r.Logger.Warn("Operação recusada: formulário travado por outra em andamento.", map[string]interface{}{"key": key})
		return nil, apperror.NewConflictError("já existe uma operação em andamento para este formulário")
	}

	return func() {
		// Contexto próprio: a trava precisa ser liberada mesmo se a requisição foi cancelada.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		owned, err := r.Cache.DeleteIfValue(relCtx, key, token)
		if err != nil {
			r.Logger.Error("Falha ao liberar trava de submissão (expira sozinha).", err)
			return
		}
		if !owned {
			r.Logger.Warn("Trava expirou antes do fim da operação.", map[string]interface{}{"key": key, "lock_ttl": r.LockTTL.String()})
		}
	}, nil
}

// Locked informa se há submissão em andamento para a tela.
func (r *Repository) Locked(ctx context.Context, sid, name string) (bool, error) {
	_, err := r.Cache.Get(ctx, fmt.Sprintf(lockKey, sid, name))
	if errors.Is(err, cache.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, apperror.NewInternalError("falha ao consultar trava de submissão", err)
	}
	return true, nil
}
