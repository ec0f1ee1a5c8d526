package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// Postgres implementa o catálogo de mercados e jogos.
// O catálogo é consultado como pré-condição de aposta; quem muda saldo é o
// ledger, nunca este pacote.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

type Market struct {
	ID        string
	Name      string
	Schedule  []byte // jsonb com janelas open/close por dia da semana
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Game struct {
	ID            string
	Name          string
	MinStakeCents int64
	MaxStakeCents int64
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Postgres) CreateMarket(ctx context.Context, name string, schedule []byte) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO markets (id, market_name, market_time) VALUES ($1,$2,$3)`,
		id, name, schedule)
	if err != nil {
		return "", fmt.Errorf("insert market: %w", err)
	}
	return id, nil
}

func (p *Postgres) CreateGame(ctx context.Context, name string, minStakeCents, maxStakeCents int64) (string, error) {
	if minStakeCents <= 0 || maxStakeCents < minStakeCents {
		return "", fmt.Errorf("invalid stake bounds [%d, %d]", minStakeCents, maxStakeCents)
	}
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO games (id, game_name, min_stake_cents, max_stake_cents) VALUES ($1,$2,$3,$4)`,
		id, name, minStakeCents, maxStakeCents)
	if err != nil {
		return "", fmt.Errorf("insert game: %w", err)
	}
	return id, nil
}

func (p *Postgres) GetMarket(ctx context.Context, id string) (*Market, error) {
	var m Market
	err := p.db.QueryRowContext(ctx, `
		SELECT id, market_name, COALESCE(market_time, 'null'::jsonb), market_status, created_at, updated_at
		FROM markets WHERE id=$1`, id).
		Scan(&m.ID, &m.Name, &m.Schedule, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (p *Postgres) GetGame(ctx context.Context, id string) (*Game, error) {
	var g Game
	err := p.db.QueryRowContext(ctx, `
		SELECT id, game_name, min_stake_cents, max_stake_cents, game_status, created_at, updated_at
		FROM games WHERE id=$1`, id).
		Scan(&g.ID, &g.Name, &g.MinStakeCents, &g.MaxStakeCents, &g.Active, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (p *Postgres) ListMarkets(ctx context.Context) ([]Market, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, market_name, COALESCE(market_time, 'null'::jsonb), market_status, created_at, updated_at
		FROM markets ORDER BY market_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Market
	for rows.Next() {
		var m Market
		if err := rows.Scan(&m.ID, &m.Name, &m.Schedule, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Postgres) ListGames(ctx context.Context) ([]Game, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, game_name, min_stake_cents, max_stake_cents, game_status, created_at, updated_at
		FROM games ORDER BY game_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name, &g.MinStakeCents, &g.MaxStakeCents, &g.Active, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *Postgres) SetMarketStatus(ctx context.Context, id string, active bool) error {
	res, err := p.db.ExecContext(ctx, `UPDATE markets SET market_status=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) SetGameStatus(ctx context.Context, id string, active bool) error {
	res, err := p.db.ExecContext(ctx, `UPDATE games SET game_status=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
