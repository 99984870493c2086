package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Terminal-wms/internal/domain"
	"github.com/jhoicas/Terminal-wms/internal/domain/repository"
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL serializable,
// con lock_timeout acotado para que un lote contendido falle completo en vez de
// colgar al terminal.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool y el lock_timeout por lote.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// NewRepositorySet construye los repositorios atados al Querier dado (pool o tx).
func NewRepositorySet(q Querier) repository.Set {
	return repository.Set{
		Lots:        NewLotRepository(q),
		Transfers:   NewTransferRepository(q),
		Receipts:    NewReceiptRepository(q),
		Orders:      NewOrderRepository(q),
		Idempotency: NewIdempotencyRepository(q),
		Products:    NewProductRepository(q),
		Employees:   NewEmployeeRepository(q),
	}
}

// RunSerializable inicia una transacción SERIALIZABLE, ejecuta fn con repos
// atados a la tx y hace Commit o Rollback. Los fallos por contención
// (serialization failure, deadlock, lock_timeout) se devuelven envueltos en
// domain.ErrConflict para que el caller pida al cliente reenviar el lote.
func (r *TxRunner) RunSerializable(ctx context.Context, fn func(repos repository.Set) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, timeout); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	if err := fn(NewRepositorySet(tx)); err != nil {
		if isContention(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		if isContention(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
