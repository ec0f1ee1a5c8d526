package repo

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrDuplicateReference   = errors.New("duplicate reference")
	ErrDuplicateDeclaration = errors.New("result already declared")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrAlreadySettled       = errors.New("already settled")
	ErrBettingDisabled      = errors.New("betting disabled for account")
)

// isUniqueViolation detecta violação de constraint UNIQUE no Postgres (23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
