package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PlaceBid debita a stake e grava a aposta na mesma transação.
// Se o saldo não cobre a stake, nada é escrito: nem bid, nem lançamento.
// Pré-condições de catálogo (mercado/jogo ativos, limites de stake) são
// responsabilidade do chamador; aqui só entram as invariantes do ledger.
func (p *Postgres) PlaceBid(ctx context.Context, accountID, marketID, gameID string, number int, stakeCents int64, side Side) (string, int64, error) {
	if stakeCents <= 0 {
		return "", 0, fmt.Errorf("stake must be positive, got %d", stakeCents)
	}
	if number < 0 || number > 99 {
		return "", 0, fmt.Errorf("number out of range: %d", number)
	}

	bidID := uuid.NewString()
	var newBalance int64
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		var betting bool
		err := tx.QueryRowContext(ctx, `SELECT betting FROM accounts WHERE id=$1`, accountID).Scan(&betting)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("read account: %w", err)
		}
		if !betting {
			return ErrBettingDisabled
		}

		// o id do bid é a reference do lançamento: liga 1:1 aposta e débito
		newBalance, err = p.applyDeltaTx(ctx, tx, accountID, -stakeCents, TxnBidPlaced, bidID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bids (id, account_id, market_id, game_id, number, stake_cents, side)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			bidID, accountID, marketID, gameID, number, stakeCents, side); err != nil {
			return fmt.Errorf("insert bid: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", 0, err
	}
	return bidID, newBalance, nil
}

// ListBids retorna as apostas da conta, mais recente primeiro
func (p *Postgres) ListBids(ctx context.Context, accountID string) ([]Bid, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, account_id, market_id, game_id, number, stake_cents, side, created_at
		FROM bids WHERE account_id=$1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bid
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.AccountID, &b.MarketID, &b.GameID, &b.Number, &b.StakeCents, &b.Side, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
