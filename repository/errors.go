package repository

import (
	"context"
	"errors"
	"strings"

	"wagerledger/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories react to
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgQueryCanceled        = "57014"
	pgLockNotAvailable     = "55P03"
)

// mapError wraps a driver error as a StorageError. Serialization failures,
// deadlocks, lock timeouts and connection failures are marked retryable
// because PostgreSQL has already rolled the transaction back.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var storageErr *entities.StorageError
	if errors.As(err, &storageErr) {
		return err
	}
	return &entities.StorageError{Op: op, Err: err, Retryable: isRetryable(err)}
}

// mapCommitError is mapError for COMMIT. A connection lost during commit
// leaves the outcome unknown, so only explicit server rollbacks are retryable.
func mapCommitError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	retryable := errors.As(err, &pgErr) &&
		(pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected)
	return &entities.StorageError{Op: "commit", Err: err, Retryable: retryable}
}

func isRetryable(err error) bool {
	// The caller's deadline is spent; another attempt cannot succeed.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
			return true
		}
		// Class 08: connection exception
		return strings.HasPrefix(pgErr.Code, "08")
	}

	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

// constraintViolation reports whether err is a PostgreSQL error with the
// given code on the named constraint.
func constraintViolation(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == code && pgErr.ConstraintName == constraint
}
