// Package postgres implements PostgreSQL persistence layer for BotCamp Hub.
package postgres

import (
	"context"
	"errors"

	"github.com/c4t-hub/botcamp-hub/internal/domain/cohort"
	"github.com/c4t-hub/botcamp-hub/internal/domain/student"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK IMPLEMENTATIONS
// A unit of work is one pgx transaction handing out tx-backed
// repositories. Rollback after Commit is a no-op, so callers can defer
// Rollback unconditionally.
// ══════════════════════════════════════════════════════════════════════════════

// ─────────────────────────────────────────────────────────────────────────────
// Student unit of work
// ─────────────────────────────────────────────────────────────────────────────

// StudentUnitOfWork implements student.UnitOfWork.
type StudentUnitOfWork struct {
	tx       pgx.Tx
	students *StudentRepository
}

// Students returns the transaction-scoped student repository.
func (u *StudentUnitOfWork) Students() student.Repository {
	return u.students
}

// Commit commits the transaction.
func (u *StudentUnitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return storeErr("uow.Commit", err)
	}
	return nil
}

// Rollback rolls the transaction back.
func (u *StudentUnitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return storeErr("uow.Rollback", err)
	}
	return nil
}

// StudentUnitOfWorkFactory implements student.UnitOfWorkFactory.
type StudentUnitOfWorkFactory struct {
	conn *Connection
}

// NewStudentUnitOfWorkFactory creates a factory bound to the pool.
func NewStudentUnitOfWorkFactory(conn *Connection) *StudentUnitOfWorkFactory {
	return &StudentUnitOfWorkFactory{conn: conn}
}

// Begin starts a transaction and wraps it in a unit of work.
func (f *StudentUnitOfWorkFactory) Begin(ctx context.Context) (student.UnitOfWork, error) {
	tx, err := f.conn.BeginTx(ctx, DefaultTxOptions())
	if err != nil {
		return nil, err
	}

	return &StudentUnitOfWork{
		tx:       tx,
		students: newStudentRepositoryTx(tx),
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Cohort unit of work
// ─────────────────────────────────────────────────────────────────────────────

// CohortUnitOfWork implements cohort.UnitOfWork.
type CohortUnitOfWork struct {
	tx       pgx.Tx
	cohorts  *CohortRepository
	registry *RegistryRepository
}

// Cohorts returns the transaction-scoped cohort repository.
func (u *CohortUnitOfWork) Cohorts() cohort.Repository {
	return u.cohorts
}

// Registry returns the transaction-scoped registry.
func (u *CohortUnitOfWork) Registry() cohort.Registry {
	return u.registry
}

// Commit commits the transaction.
func (u *CohortUnitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return storeErr("uow.Commit", err)
	}
	return nil
}

// Rollback rolls the transaction back.
func (u *CohortUnitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return storeErr("uow.Rollback", err)
	}
	return nil
}

// CohortUnitOfWorkFactory implements cohort.UnitOfWorkFactory.
type CohortUnitOfWorkFactory struct {
	conn *Connection
}

// NewCohortUnitOfWorkFactory creates a factory bound to the pool.
func NewCohortUnitOfWorkFactory(conn *Connection) *CohortUnitOfWorkFactory {
	return &CohortUnitOfWorkFactory{conn: conn}
}

// Begin starts a transaction and wraps it in a unit of work.
func (f *CohortUnitOfWorkFactory) Begin(ctx context.Context) (cohort.UnitOfWork, error) {
	tx, err := f.conn.BeginTx(ctx, DefaultTxOptions())
	if err != nil {
		return nil, err
	}

	return &CohortUnitOfWork{
		tx:       tx,
		cohorts:  newCohortRepositoryTx(tx),
		registry: newRegistryRepositoryTx(tx),
	}, nil
}
