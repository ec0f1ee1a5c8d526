package repo

import (
	"database/sql"
	"fmt"
)

// Migrate cria o schema do ledger e do catálogo.
// Idempotente; usado no bootstrap dos serviços e nos testes de integração.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			balance_cents BIGINT NOT NULL DEFAULT 0 CHECK (balance_cents >= 0),
			betting BOOLEAN NOT NULL DEFAULT FALSE,
			transfer BOOLEAN NOT NULL DEFAULT FALSE,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			bank_name VARCHAR(100) NOT NULL DEFAULT '',
			account_holder VARCHAR(100) NOT NULL DEFAULT '',
			account_number BIGINT NOT NULL DEFAULT 0,
			ifsc_code VARCHAR(20) NOT NULL DEFAULT '',
			phone_pay_no VARCHAR(15) NOT NULL DEFAULT '',
			google_pay_no VARCHAR(15) NOT NULL DEFAULT '',
			paytm_pay_no VARCHAR(15) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS markets (
			id UUID PRIMARY KEY,
			market_name VARCHAR(100) NOT NULL,
			market_time JSONB,
			market_status BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id UUID PRIMARY KEY,
			game_name VARCHAR(100) NOT NULL,
			min_stake_cents BIGINT NOT NULL,
			max_stake_cents BIGINT NOT NULL,
			game_status BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS transaction_entries (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL REFERENCES accounts(id),
			reference VARCHAR(255) NOT NULL UNIQUE,
			txn_type VARCHAR(25) NOT NULL,
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			status VARCHAR(10) NOT NULL DEFAULT 'PENDING',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_account ON transaction_entries(account_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS bids (
			id UUID PRIMARY KEY,
			account_id UUID NOT NULL REFERENCES accounts(id),
			market_id UUID NOT NULL REFERENCES markets(id),
			game_id UUID NOT NULL REFERENCES games(id),
			number INT NOT NULL,
			stake_cents BIGINT NOT NULL CHECK (stake_cents > 0),
			side VARCHAR(5) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bids_draw ON bids(market_id, game_id, side, number)`,
		`CREATE TABLE IF NOT EXISTS settlement_records (
			id UUID PRIMARY KEY,
			market_id UUID NOT NULL REFERENCES markets(id),
			game_id UUID NOT NULL REFERENCES games(id),
			side VARCHAR(5) NOT NULL,
			win_number INT NOT NULL,
			result_date DATE NOT NULL,
			settled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (market_id, game_id, side, result_date)
		)`,
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
