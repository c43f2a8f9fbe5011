package repository

import (
	"context"
	"errors"
	"fmt"
	"net"

	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// translateError maps driver errors onto the application error taxonomy.
// Errors that already carry a taxonomy sentinel pass through untouched.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}
	if apperrors.CodeOf(err) != apperrors.CodeInternal {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFoundError(resource)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505": // unique_violation
			return apperrors.AlreadyExistsError(resource)
		case pgErr.Code == "23503": // foreign_key_violation
			return apperrors.NotFoundError("mentor profile")
		case pgErr.Code == "22P02": // invalid_text_representation, e.g. malformed uuid
			return apperrors.NotFoundError(resource)
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "53" || pgErr.Code[:2] == "57"):
			return apperrors.UnavailableError("database", err)
		}
		return fmt.Errorf("%s: %w", resource, err)
	}

	var netErr net.Error
	var connectErr *pgconn.ConnectError
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		pgconn.Timeout(err),
		pgconn.SafeToRetry(err),
		errors.As(err, &connectErr),
		errors.As(err, &netErr):
		return apperrors.UnavailableError("database", err)
	}

	return fmt.Errorf("%s: %w", resource, err)
}

// PoolHealthChecker reports database reachability for the health endpoint
type PoolHealthChecker struct {
	pool *pgxpool.Pool
}

// NewPoolHealthChecker wraps a pool for health checks
func NewPoolHealthChecker(pool *pgxpool.Pool) *PoolHealthChecker {
	return &PoolHealthChecker{pool: pool}
}

// Ping checks database reachability
func (h *PoolHealthChecker) Ping(ctx context.Context) error {
	if err := h.pool.Ping(ctx); err != nil {
		return apperrors.UnavailableError("database", err)
	}
	return nil
}
