package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// applyDeltaTx é o ponto de serialização de toda mudança de saldo:
// lock pessimista na linha da conta, releitura do saldo, validação da
// invariante (saldo nunca negativo), escrita do novo saldo e append do
// lançamento APPROVED — tudo dentro da transação recebida.
func (p *Postgres) applyDeltaTx(ctx context.Context, tx *sql.Tx, accountID string, signedCents int64, txnType TxnType, reference string) (int64, error) {
	var balance int64
	err := tx.QueryRowContext(ctx, `SELECT balance_cents FROM accounts WHERE id=$1 FOR UPDATE`, accountID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock account: %w", err)
	}

	amount := signedCents
	if amount < 0 {
		amount = -amount
	}

	if signedCents < 0 && amount > balance {
		return 0, fmt.Errorf("%w: current balance is %d, cannot debit %d", ErrInsufficientFunds, balance, amount)
	}

	newBalance := balance + signedCents
	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance_cents=$1, updated_at=NOW() WHERE id=$2`, newBalance, accountID); err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transaction_entries (id, account_id, reference, txn_type, amount_cents, status)
		VALUES ($1,$2,$3,$4,$5,'APPROVED')`,
		uuid.NewString(), accountID, reference, txnType, amount)
	if isUniqueViolation(err) {
		return 0, ErrDuplicateReference
	}
	if err != nil {
		return 0, fmt.Errorf("append entry: %w", err)
	}

	return newBalance, nil
}

// ApplyDelta aplica um crédito/débito como unidade atômica: saldo e
// lançamento persistem juntos ou nenhum dos dois.
func (p *Postgres) ApplyDelta(ctx context.Context, accountID string, signedCents int64, txnType TxnType, reference string) (int64, error) {
	var newBalance int64
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		newBalance, err = p.applyDeltaTx(ctx, tx, accountID, signedCents, txnType, reference)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// AdminAdjust credita (signedCents > 0) ou debita direto a conta, já
// aprovado, com reference gerada. Débito acima do saldo falha — a conta
// nunca fica negativa, nem por ação de operador.
func (p *Postgres) AdminAdjust(ctx context.Context, accountID string, signedCents int64) (int64, error) {
	return p.ApplyDelta(ctx, accountID, signedCents, TxnAdminAdjustment, uuid.NewString())
}

// CreateAddRequest registra um pedido de depósito PENDING; o saldo não muda
// até a aprovação. reference vem do cliente e é a chave de idempotência
// contra dupla submissão do mesmo comprovante.
func (p *Postgres) CreateAddRequest(ctx context.Context, accountID, reference string, amountCents int64) (string, error) {
	return p.createRequest(ctx, accountID, reference, TxnAddRequest, amountCents)
}

// CreateWithdrawRequest registra um pedido de saque PENDING. A checagem de
// saldo aqui é só pra UX; a autoritativa acontece na aprovação, dentro da
// transação.
func (p *Postgres) CreateWithdrawRequest(ctx context.Context, accountID string, amountCents int64) (string, error) {
	bal, err := p.GetBalance(ctx, accountID)
	if err != nil {
		return "", err
	}
	if bal < amountCents {
		return "", fmt.Errorf("%w: current balance is %d, cannot withdraw %d", ErrInsufficientFunds, bal, amountCents)
	}
	return p.createRequest(ctx, accountID, uuid.NewString(), TxnWithdrawRequest, amountCents)
}

func (p *Postgres) createRequest(ctx context.Context, accountID, reference string, txnType TxnType, amountCents int64) (string, error) {
	if amountCents <= 0 {
		return "", fmt.Errorf("amount must be positive, got %d", amountCents)
	}
	if _, err := p.GetBalance(ctx, accountID); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO transaction_entries (id, account_id, reference, txn_type, amount_cents, status)
		VALUES ($1,$2,$3,$4,$5,'PENDING')`,
		id, accountID, reference, txnType, amountCents)
	if isUniqueViolation(err) {
		return "", ErrDuplicateReference
	}
	if err != nil {
		return "", fmt.Errorf("insert request: %w", err)
	}
	return id, nil
}

// DecideRequest aprova ou rejeita um pedido PENDING em uma única transação:
// lock no lançamento, checagem/ajuste de saldo e flip de status persistem
// juntos. O flip acontece na linha existente (sem novo append), então um
// retry da mesma decisão falha com ErrInvalidTransition em vez de creditar
// de novo.
func (p *Postgres) DecideRequest(ctx context.Context, entryID string, decision TxnStatus) (int64, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return 0, fmt.Errorf("invalid decision %q", decision)
	}

	var newBalance int64
	err := p.withTx(ctx, func(tx *sql.Tx) error {
		var (
			accountID string
			txnType   TxnType
			amount    int64
			status    TxnStatus
		)
		err := tx.QueryRowContext(ctx, `
			SELECT account_id, txn_type, amount_cents, status
			FROM transaction_entries WHERE id=$1 FOR UPDATE`, entryID).
			Scan(&accountID, &txnType, &amount, &status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock entry: %w", err)
		}

		// APPROVED e REJECTED são terminais
		if status != StatusPending {
			return ErrInvalidTransition
		}

		if decision == StatusApproved {
			var balance int64
			if err := tx.QueryRowContext(ctx, `SELECT balance_cents FROM accounts WHERE id=$1 FOR UPDATE`, accountID).Scan(&balance); err != nil {
				return fmt.Errorf("lock account: %w", err)
			}

			switch txnType {
			case TxnAddRequest:
				newBalance = balance + amount
			case TxnWithdrawRequest:
				if balance < amount {
					return fmt.Errorf("%w: current balance is %d, cannot withdraw %d", ErrInsufficientFunds, balance, amount)
				}
				newBalance = balance - amount
			default:
				// só pedidos de depósito/saque ficam PENDING
				return ErrInvalidTransition
			}

			if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance_cents=$1, updated_at=NOW() WHERE id=$2`, newBalance, accountID); err != nil {
				return fmt.Errorf("update balance: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE transaction_entries SET status=$1, updated_at=NOW() WHERE id=$2`, decision, entryID); err != nil {
			return fmt.Errorf("flip status: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ListTransactions retorna o extrato da conta, mais recente primeiro
func (p *Postgres) ListTransactions(ctx context.Context, accountID string) ([]TransactionEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, account_id, reference, txn_type, amount_cents, status, created_at, updated_at
		FROM transaction_entries WHERE account_id=$1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionEntry
	for rows.Next() {
		var e TransactionEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Reference, &e.Type, &e.AmountCents, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
