package sessionrepo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperror "stockui/internal/errors"
	"stockui/internal/pkg/cache"
	"stockui/internal/pkg/logger"
)

type sampleState struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

func newRepo(t *testing.T) (*Repository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	return NewRepository(client, time.Hour, 15*time.Second, logger.NewNop()), mr
}

func TestLoadSave_RoundTripAndMiss(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	var st sampleState
	found, err := repo.Load(ctx, "sid-1", "form:create", &st)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Save(ctx, "sid-1", "form:create", sampleState{Status: "failed", Name: "Teclado"}))
	assert.Equal(t, time.Hour, mr.TTL("stockui:session:sid-1:form:create"))

	found, err = repo.Load(ctx, "sid-1", "form:create", &st)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sampleState{Status: "failed", Name: "Teclado"}, st)

	// Sessões não compartilham estado.
	var other sampleState
	found, err = repo.Load(ctx, "sid-2", "form:create", &other)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Delete(ctx, "sid-1", "form:create"))
	found, _ = repo.Load(ctx, "sid-1", "form:create", &st)
	assert.False(t, found)
}

func TestLoad_CorruptStateIsDiscarded(t *testing.T) {
	repo, mr := newRepo(t)
	require.NoError(t, mr.Set("stockui:session:sid-1:listing", "{not json"))

	var st sampleState
	found, err := repo.Load(context.Background(), "sid-1", "listing", &st)

	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("stockui:session:sid-1:listing"))
}

func TestLock_OnlyOneSubmissionAtATime(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	release, err := repo.Lock(ctx, "sid-1", "form:movement")
	require.NoError(t, err)

	locked, err := repo.Locked(ctx, "sid-1", "form:movement")
	require.NoError(t, err)
	assert.True(t, locked)

	_, err = repo.Lock(ctx, "sid-1", "form:movement")
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)

	// Outra tela da mesma sessão não é afetada.
	releaseOther, err := repo.Lock(ctx, "sid-1", "form:create")
	require.NoError(t, err)
	releaseOther()

	release()
	locked, _ = repo.Locked(ctx, "sid-1", "form:movement")
	assert.False(t, locked)

	// Trava esquecida expira sozinha.
	_, err = repo.Lock(ctx, "sid-1", "form:movement")
	require.NoError(t, err)
	mr.FastForward(16 * time.Second)
	locked, _ = repo.Locked(ctx, "sid-1", "form:movement")
	assert.False(t, locked)
}

// Uma trava expirada e retomada por outra submissão não pode ser apagada pela primeira.
func TestLock_ReleaseOnlyRemovesOwnLock(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	releaseA, err := repo.Lock(ctx, "sid-1", "form:movement")
	require.NoError(t, err)

	mr.FastForward(16 * time.Second)
	releaseB, err := repo.Lock(ctx, "sid-1", "form:movement")
	require.NoError(t, err)

	releaseA()
	locked, err := repo.Locked(ctx, "sid-1", "form:movement")
	require.NoError(t, err)
	assert.True(t, locked, "a trava de B continua valendo")

	_, err = repo.Lock(ctx, "sid-1", "form:movement")
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)

	releaseB()
	locked, _ = repo.Locked(ctx, "sid-1", "form:movement")
	assert.False(t, locked)
}

func TestSave_Fail_RedisDown(t *testing.T) {
	repo, mr := newRepo(t)
	mr.Close()

	err := repo.Save(context.Background(), "sid-1", "listing", sampleState{})

	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
}
