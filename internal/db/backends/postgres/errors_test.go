package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind interfaces.Kind
		code string
	}{
		{name: "no rows", err: pgx.ErrNoRows, kind: interfaces.KindNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", pgx.ErrNoRows), kind: interfaces.KindNotFound},
		{name: "unique", err: &pgconn.PgError{Code: "23505", Detail: "Key exists"}, kind: interfaces.KindDuplicate, code: "23505"},
		{name: "foreign key", err: &pgconn.PgError{Code: "23503"}, kind: interfaces.KindUnknown, code: "23503"},
		{name: "malformed uuid", err: &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}, kind: interfaces.KindNotFound, code: "22P02"},
		{name: "missing table", err: &pgconn.PgError{Code: "42P01"}, kind: interfaces.KindSchemaMissing, code: "42P01"},
		{name: "privileges", err: &pgconn.PgError{Code: "42501"}, kind: interfaces.KindPermissionDenied, code: "42501"},
		{name: "other", err: errors.New("connection reset"), kind: interfaces.KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := mapError("op", tc.err)
			var storeErr *interfaces.Error
			require.ErrorAs(t, err, &storeErr)
			assert.Equal(t, tc.kind, storeErr.Kind)
			assert.Equal(t, tc.code, storeErr.Code)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	assert.NoError(t, mapError("op", nil))
}

func TestMapError_KeepsHint(t *testing.T) {
	err := mapError("insert post", &pgconn.PgError{Code: "42P01", Message: "relation does not exist", Hint: "run migrations"})

	var storeErr *interfaces.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "run migrations", storeErr.Hint)
	assert.Equal(t, "insert post: database table not found", err.Error())
}
