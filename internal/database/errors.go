package database

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"water-delivery/internal/apperr"
)

// Postgres SQLSTATE codes the stores react to
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// Classify maps driver errors onto the application error kinds. Errors that
// are not recognised are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == codeUniqueViolation:
			return &apperr.Error{Kind: apperr.ErrConflict, Message: "duplicate value", Err: err}
		case pgErr.Code == codeForeignKeyViolation:
			return &apperr.Error{Kind: apperr.ErrValidation, Message: "referenced record does not exist", Err: err}
		case pgErr.Code == codeCheckViolation:
			return &apperr.Error{Kind: apperr.ErrValidation, Message: "value violates a constraint", Err: err}
		case isConnectionClass(pgErr.Code):
			return apperr.StorageUnavailable(err)
		}
		return err
	}

	// Caller cancellation is not a storage outage.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		pgconn.SafeToRetry(err),
		errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.StorageUnavailable(err)
	}
	return err
}

// isConnectionClass covers class 08 (connection exception) and the 57P
// shutdown codes.
func isConnectionClass(code string) bool {
	if len(code) != 5 {
		return false
	}
	return code[:2] == "08" || code == "57P01" || code == "57P02" || code == "57P03"
}
