package cachesync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Luizsilva-repros/intranet/internal/accounts"
	"github.com/Luizsilva-repros/intranet/internal/db/dbtest"
	"github.com/Luizsilva-repros/intranet/internal/db/models"
	"github.com/Luizsilva-repros/intranet/internal/identity"
)

func newSyncer(t *testing.T) (*Syncer, *accounts.Store) {
	t.Helper()

	store := accounts.NewStore(dbtest.Open(t, &models.Setting{}))

	return NewSyncer(store), store
}

func joao() identity.Identity {
	return identity.Identity{
		ID:          "1001",
		Email:       "joao.silva@repros.com.br",
		DisplayName: "João Silva",
		Department:  "TI",
		Groups:      []string{"admin", "ti", "user"},
		Role:        identity.RoleAdmin,
		Provenance:  identity.ProvenanceDirectory,
		LastLogin:   time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
	}
}

func TestSyncCreatesAccount(t *testing.T) {
	ctx := context.Background()
	s, store := newSyncer(t)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return created }

	require.NoError(t, s.Sync(ctx, joao()))

	acc, err := store.FindByEmail(ctx, "joao.silva@repros.com.br")
	require.NoError(t, err)
	assert.NotEmpty(t, acc.ID)
	assert.Equal(t, identity.RoleAdmin, acc.Role)
	assert.Equal(t, []string{"admin", "ti", "user"}, acc.Groups)
	assert.Equal(t, models.AuthSourceDirectory, acc.Source)
	assert.True(t, acc.IsActive())
	assert.True(t, created.Equal(acc.CreatedAt))
	require.NotNil(t, acc.LastLoginAt)
	assert.NotEmpty(t, acc.Credential)
	assert.False(t, accounts.ValidateCredential(acc.Credential, "joao123"))
}

func TestSyncTwiceKeepsOneAccount(t *testing.T) {
	ctx := context.Background()
	s, store := newSyncer(t)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }
	require.NoError(t, s.Sync(ctx, joao()))

	before, err := store.FindByEmail(ctx, "joao.silva@repros.com.br")
	require.NoError(t, err)

	s.now = func() time.Time { return first.Add(48 * time.Hour) }

	again := joao()
	again.Email = "JOAO.SILVA@repros.com.br"
	again.Role = identity.RoleUser
	again.Groups = []string{"ti"}
	require.NoError(t, s.Sync(ctx, again))

	list, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	assert.Equal(t, before.ID, list[0].ID)
	assert.True(t, first.Equal(list[0].CreatedAt))
	assert.Equal(t, identity.RoleUser, list[0].Role)
	assert.Equal(t, []string{"ti"}, list[0].Groups)
}

func TestSyncReactivatesAccount(t *testing.T) {
	ctx := context.Background()
	s, store := newSyncer(t)

	require.NoError(t, s.Sync(ctx, joao()))
	require.NoError(t, store.SetActive(ctx, "joao.silva@repros.com.br", false))
	require.NoError(t, s.Sync(ctx, joao()))

	acc, err := store.FindByEmail(ctx, "joao.silva@repros.com.br")
	require.NoError(t, err)
	assert.True(t, acc.IsActive())
}

func TestSyncWithoutEmail(t *testing.T) {
	s, _ := newSyncer(t)

	err := s.Sync(context.Background(), identity.Identity{DisplayName: "nobody"})
	require.ErrorIs(t, err, ErrSyncFailure)
	require.ErrorIs(t, err, ErrNoEmail)
}

func TestQueueProcessesAndWaits(t *testing.T) {
	ctx := context.Background()
	s, store := newSyncer(t)

	q := NewQueue(s, 4, 5*time.Second)
	defer q.Close()

	require.NoError(t, q.Enqueue(ctx, joao()))
	require.NoError(t, q.Enqueue(ctx, joao()))
	q.Wait()

	list, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestQueuePublishesErrors(t *testing.T) {
	s, _ := newSyncer(t)

	q := NewQueue(s, 1, time.Second)
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), identity.Identity{}))

	select {
	case err := <-q.Errors():
		require.ErrorIs(t, err, ErrSyncFailure)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a sync error")
	}
}

func TestQueueClosed(t *testing.T) {
	s, _ := newSyncer(t)

	q := NewQueue(s, 1, time.Second)
	q.Close()
	q.Close()

	require.ErrorIs(t, q.Enqueue(context.Background(), joao()), ErrQueueClosed)
	q.Wait()
}
