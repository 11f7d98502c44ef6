package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"water-delivery/internal/apperr"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, apperr.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, apperr.ErrValidation},
		{"check", &pgconn.PgError{Code: "23514"}, apperr.ErrValidation},
		{"connection failure", &pgconn.PgError{Code: "08006"}, apperr.ErrStorageUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, apperr.ErrStorageUnavailable},
		{"wrapped unique", fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505"}), apperr.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Classify(tt.err), tt.kind)
		})
	}
}

func TestClassifyPassesThroughUnknownErrors(t *testing.T) {
	assert.Nil(t, Classify(nil))

	plain := errors.New("syntax error")
	assert.Same(t, plain, Classify(plain))

	syntax := &pgconn.PgError{Code: "42601"}
	assert.Equal(t, error(syntax), Classify(syntax))

	assert.ErrorIs(t, Classify(context.Canceled), context.Canceled)
	assert.NotErrorIs(t, Classify(context.Canceled), apperr.ErrStorageUnavailable)
}
