package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/numbers-bet-platform/internal/catalog/repo"
)

// Store é o subconjunto do catálogo que o cache precisa pra fazer read-through
type Store interface {
	GetMarket(ctx context.Context, id string) (*repo.Market, error)
	GetGame(ctx context.Context, id string) (*repo.Game, error)
}

// CatalogCache guarda mercados/jogos no Redis com TTL.
// É consultado no caminho quente (pré-condição de cada aposta); miss ou
// Redis fora do ar caem direto no Postgres.
type CatalogCache struct {
	Client *redis.Client
	TTL    time.Duration
	Store  Store
}

func NewCatalogCache(c *redis.Client, ttl time.Duration, store Store) *CatalogCache {
	return &CatalogCache{Client: c, TTL: ttl, Store: store}
}

func marketKey(id string) string { return "catalog:market:" + id }
func gameKey(id string) string   { return "catalog:game:" + id }

// GetMarket tenta o Redis antes do banco; popula o cache no miss
func (c *CatalogCache) GetMarket(ctx context.Context, id string) (*repo.Market, error) {
	if val, err := c.Client.Get(ctx, marketKey(id)).Result(); err == nil {
		var m repo.Market
		if jerr := json.Unmarshal([]byte(val), &m); jerr == nil {
			return &m, nil
		}
	}

	m, err := c.Store.GetMarket(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, jerr := json.Marshal(m); jerr == nil {
		_ = c.Client.Set(ctx, marketKey(id), b, c.TTL).Err()
	}
	return m, nil
}

// GetGame tenta o Redis antes do banco; popula o cache no miss
func (c *CatalogCache) GetGame(ctx context.Context, id string) (*repo.Game, error) {
	if val, err := c.Client.Get(ctx, gameKey(id)).Result(); err == nil {
		var g repo.Game
		if jerr := json.Unmarshal([]byte(val), &g); jerr == nil {
			return &g, nil
		}
	}

	g, err := c.Store.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, jerr := json.Marshal(g); jerr == nil {
		_ = c.Client.Set(ctx, gameKey(id), b, c.TTL).Err()
	}
	return g, nil
}

// Invalidate remove as chaves após mudança de status no admin; o próximo
// lookup repopula com o estado novo.
func (c *CatalogCache) InvalidateMarket(ctx context.Context, id string) {
	_ = c.Client.Del(ctx, marketKey(id)).Err()
}

func (c *CatalogCache) InvalidateGame(ctx context.Context, id string) {
	_ = c.Client.Del(ctx, gameKey(id)).Err()
}
