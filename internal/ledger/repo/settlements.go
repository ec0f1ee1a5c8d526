package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DeclareResult registra o número vencedor de um sorteio.
// A unicidade por (mercado, jogo, lado, data) é garantida pelo índice único;
// declaração repetida falha com ErrDuplicateDeclaration.
func (p *Postgres) DeclareResult(ctx context.Context, marketID, gameID string, side Side, resultDate string, winNumber int) (string, error) {
	if winNumber < 0 || winNumber > 99 {
		return "", fmt.Errorf("win number out of range: %d", winNumber)
	}

	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO settlement_records (id, market_id, game_id, side, win_number, result_date)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		id, marketID, gameID, side, winNumber, resultDate)
	if isUniqueViolation(err) {
		return "", ErrDuplicateDeclaration
	}
	if err != nil {
		return "", fmt.Errorf("insert settlement record: %w", err)
	}
	return id, nil
}

// DeleteDeclaration remove uma declaração ainda não liquidada
func (p *Postgres) DeleteDeclaration(ctx context.Context, recordID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM settlement_records WHERE id=$1 AND settled=FALSE`, recordID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var settled bool
		err := p.db.QueryRowContext(ctx, `SELECT settled FROM settlement_records WHERE id=$1`, recordID).Scan(&settled)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadySettled
	}
	return nil
}

// Settle credita os vencedores de um resultado declarado.
//
// Cada crédito é uma transação independente por conta (sem lock global): progresso
// parcial entre contas é aceitável e retomável. A idempotência vem da
// reference = id do bid — um retry pula créditos já aplicados ao bater na
// violação de unicidade. O flag settled é re-checado e virado numa
// transação final, então a segunda chamada completa é um no-op.
func (p *Postgres) Settle(ctx context.Context, marketID, gameID string, side Side, resultDate string) (SettlementSummary, error) {
	var sum SettlementSummary

	var recordID string
	var settled bool
	err := p.db.QueryRowContext(ctx, `
		SELECT id, win_number, settled FROM settlement_records
		WHERE market_id=$1 AND game_id=$2 AND side=$3 AND result_date=$4`,
		marketID, gameID, side, resultDate).Scan(&recordID, &sum.WinNumber, &settled)
	if errors.Is(err, sql.ErrNoRows) {
		return sum, ErrNotFound
	}
	if err != nil {
		return sum, fmt.Errorf("read settlement record: %w", err)
	}
	if settled {
		sum.AlreadySettled = true
		return sum, nil
	}

	winners, err := p.winningBids(ctx, marketID, gameID, side, resultDate, sum.WinNumber)
	if err != nil {
		return sum, err
	}

	for _, b := range winners {
		payout := b.StakeCents * p.payoutMultiplier
		_, err := p.ApplyDelta(ctx, b.AccountID, payout, TxnWinnings, b.ID)
		if errors.Is(err, ErrDuplicateReference) {
			// já creditado numa tentativa anterior
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("credit winner bid %s: %w", b.ID, err)
		}
		sum.WinnersCredited++
		sum.TotalPayoutCents += payout
	}

	err = p.withTx(ctx, func(tx *sql.Tx) error {
		var already bool
		if err := tx.QueryRowContext(ctx, `SELECT settled FROM settlement_records WHERE id=$1 FOR UPDATE`, recordID).Scan(&already); err != nil {
			return err
		}
		if already {
			sum.AlreadySettled = true
			return nil
		}
		_, err := tx.ExecContext(ctx, `UPDATE settlement_records SET settled=TRUE, updated_at=NOW() WHERE id=$1`, recordID)
		return err
	})
	if err != nil {
		return sum, fmt.Errorf("flip settled: %w", err)
	}
	return sum, nil
}

// winningBids busca as apostas vencedoras do sorteio: mesma chave do
// resultado e criadas na data do resultado.
func (p *Postgres) winningBids(ctx context.Context, marketID, gameID string, side Side, resultDate string, winNumber int) ([]Bid, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, account_id, stake_cents FROM bids
		WHERE market_id=$1 AND game_id=$2 AND side=$3 AND number=$4
		  AND created_at::DATE = $5::DATE`,
		marketID, gameID, side, winNumber, resultDate)
	if err != nil {
		return nil, fmt.Errorf("select winning bids: %w", err)
	}
	defer rows.Close()

	var out []Bid
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.AccountID, &b.StakeCents); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListWinners é a consulta do painel admin: apostas que bateram o número
// vencedor de um resultado declarado.
func (p *Postgres) ListWinners(ctx context.Context, marketID, gameID string, side Side, resultDate string) ([]Bid, error) {
	var winNumber int
	err := p.db.QueryRowContext(ctx, `
		SELECT win_number FROM settlement_records
		WHERE market_id=$1 AND game_id=$2 AND side=$3 AND result_date=$4`,
		marketID, gameID, side, resultDate).Scan(&winNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, account_id, market_id, game_id, number, stake_cents, side, created_at
		FROM bids
		WHERE market_id=$1 AND game_id=$2 AND side=$3 AND number=$4
		  AND created_at::DATE = $5::DATE
		ORDER BY created_at`,
		marketID, gameID, side, winNumber, resultDate)
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

// ListSettlements lista as declarações, mais recente primeiro
func (p *Postgres) ListSettlements(ctx context.Context) ([]SettlementRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, market_id, game_id, side, win_number, result_date::TEXT, settled, created_at, updated_at
		FROM settlement_records ORDER BY result_date DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SettlementRecord
	for rows.Next() {
		var r SettlementRecord
		if err := rows.Scan(&r.ID, &r.MarketID, &r.GameID, &r.Side, &r.WinNumber, &r.ResultDate, &r.Settled, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
