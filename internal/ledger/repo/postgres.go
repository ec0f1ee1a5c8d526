package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// Postgres implementa o ledger de carteiras e apostas em banco.
// payoutMultiplier: prêmio = stake * multiplicador, injetado na construção
// (nada de configuração ambiente dentro do core).
type Postgres struct {
	db               *sql.DB
	payoutMultiplier int64
}

func NewPostgres(db *sql.DB, payoutMultiplier int64) *Postgres {
	return &Postgres{db: db, payoutMultiplier: payoutMultiplier}
}

// withTx executa fn dentro de uma transação: commit no retorno normal,
// rollback em qualquer erro. Todo fluxo multi-passo do ledger passa por aqui.
func (p *Postgres) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
