package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/radieske/numbers-bet-platform/internal/catalog/repo"
)

// fakeStore conta os hits no "banco" pra verificar o read-through
type fakeStore struct {
	markets map[string]*repo.Market
	games   map[string]*repo.Game
	hits    int
}

func (f *fakeStore) GetMarket(ctx context.Context, id string) (*repo.Market, error) {
	f.hits++
	if m, ok := f.markets[id]; ok {
		return m, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeStore) GetGame(ctx context.Context, id string) (*repo.Game, error) {
	f.hits++
	if g, ok := f.games[id]; ok {
		return g, nil
	}
	return nil, repo.ErrNotFound
}

// Precisa de um Redis real; roda só com TEST_REDIS_ADDR:
//
//	TEST_REDIS_ADDR=localhost:6379 go test ./internal/catalog/cache/
func newTestCache(t *testing.T, store *fakeStore) *CatalogCache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	return NewCatalogCache(client, 30*time.Second, store)
}

func TestGetMarketReadThrough(t *testing.T) {
	id := uuid.NewString()
	store := &fakeStore{markets: map[string]*repo.Market{
		id: {ID: id, Name: "morning", Active: true},
	}}
	c := newTestCache(t, store)
	ctx := context.Background()

	// primeiro lookup vai no banco e popula o cache
	m, err := c.GetMarket(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "morning", m.Name)
	require.Equal(t, 1, store.hits)

	// segundo lookup sai do Redis
	m, err = c.GetMarket(ctx, id)
	require.NoError(t, err)
	require.True(t, m.Active)
	require.Equal(t, 1, store.hits)

	// invalidação força nova ida ao banco
	c.InvalidateMarket(ctx, id)
	_, err = c.GetMarket(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 2, store.hits)
}

func TestGetGameMiss(t *testing.T) {
	store := &fakeStore{}
	c := newTestCache(t, store)

	_, err := c.GetGame(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestInvalidateGameRefreshesStatus(t *testing.T) {
	id := uuid.NewString()
	game := &repo.Game{ID: id, Name: "single", MinStakeCents: 100, MaxStakeCents: 10000, Active: true}
	store := &fakeStore{games: map[string]*repo.Game{id: game}}
	c := newTestCache(t, store)
	ctx := context.Background()

	g, err := c.GetGame(ctx, id)
	require.NoError(t, err)
	require.True(t, g.Active)

	// status muda no banco; o cache ainda serve o antigo até invalidar
	game.Active = false
	g, err = c.GetGame(ctx, id)
	require.NoError(t, err)
	require.True(t, g.Active)

	c.InvalidateGame(ctx, id)
	g, err = c.GetGame(ctx, id)
	require.NoError(t, err)
	require.False(t, g.Active)
}
