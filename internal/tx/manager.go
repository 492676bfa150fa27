package tx

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Transactor runs fn inside a transaction. Document writes use it so the
// revision bump and the change notification commit together.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
}

type Manager struct {
	DB *sql.DB
}

const maxRetries = 5

var ErrRetryExhausted = errors.New("transaction retry exhausted")

// Postgres SQLSTATE codes worth a fresh attempt.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func (m *Manager) WithTx(
	ctx context.Context,
	fn func(ctx context.Context, tx *sql.Tx) error,
) error {
	for i := 0; i < maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		tx, err := m.DB.BeginTx(ctx, &sql.TxOptions{
			Isolation: sql.LevelReadCommitted,
		})
		if err != nil {
			return err
		}

		if err := fn(ctx, tx); err != nil {
			_ = tx.Rollback()
			if Retryable(err) {
				continue
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if Retryable(err) {
				continue
			}
			return err
		}
		return nil
	}

	return ErrRetryExhausted
}

// Retryable reports whether err is a serialization failure or deadlock that a
// new transaction may not hit again.
func Retryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}
