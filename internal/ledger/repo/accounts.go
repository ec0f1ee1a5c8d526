package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CreateAccount cria a conta com saldo zero e flags desligadas.
// A conta nunca é removida fisicamente; desativação é via flag active.
func (p *Postgres) CreateAccount(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `INSERT INTO accounts (id, balance_cents) VALUES ($1, 0)`, id)
	if err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}
	return id, nil
}

func (p *Postgres) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var a Account
	err := p.db.QueryRowContext(ctx, `
		SELECT id, balance_cents, betting, transfer, active,
		       bank_name, account_holder, account_number, ifsc_code,
		       phone_pay_no, google_pay_no, paytm_pay_no,
		       created_at, updated_at
		FROM accounts WHERE id=$1`, accountID).
		Scan(&a.ID, &a.BalanceCents, &a.Betting, &a.Transfer, &a.Active,
			&a.BankName, &a.AccountHolder, &a.AccountNumber, &a.IFSCCode,
			&a.PhonePayNo, &a.GooglePayNo, &a.PaytmPayNo,
			&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetBalance é leitura simples, sem lock; o valor autoritativo para
// qualquer decisão de débito é sempre relido dentro da transação.
func (p *Postgres) GetBalance(ctx context.Context, accountID string) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx, `SELECT balance_cents FROM accounts WHERE id=$1`, accountID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return bal, err
}

// UpdateProfile aplica só os campos presentes no patch, um a um.
// Saldo não passa por aqui.
func (p *Postgres) UpdateProfile(ctx context.Context, accountID string, patch ProfilePatch) error {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s=$%d", col, len(args)))
	}

	if patch.Betting != nil {
		add("betting", *patch.Betting)
	}
	if patch.Transfer != nil {
		add("transfer", *patch.Transfer)
	}
	if patch.Active != nil {
		add("active", *patch.Active)
	}
	if patch.BankName != nil {
		add("bank_name", *patch.BankName)
	}
	if patch.AccountHolder != nil {
		add("account_holder", *patch.AccountHolder)
	}
	if patch.AccountNumber != nil {
		add("account_number", *patch.AccountNumber)
	}
	if patch.IFSCCode != nil {
		add("ifsc_code", *patch.IFSCCode)
	}
	if patch.PhonePayNo != nil {
		add("phone_pay_no", *patch.PhonePayNo)
	}
	if patch.GooglePayNo != nil {
		add("google_pay_no", *patch.GooglePayNo)
	}
	if patch.PaytmPayNo != nil {
		add("paytm_pay_no", *patch.PaytmPayNo)
	}

	if len(sets) == 0 {
		return fmt.Errorf("empty profile patch")
	}

	args = append(args, accountID)
	q := fmt.Sprintf("UPDATE accounts SET %s, updated_at=NOW() WHERE id=$%d", strings.Join(sets, ", "), len(args))
	res, err := p.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
