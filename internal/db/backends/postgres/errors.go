package postgres

import (
	"errors"

	"github.com/erselk/ugur-sahan-website/internal/db/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes the stores classify.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeUndefinedTable      = "42P01"
	codeInsufficientPrivs   = "42501"
)

// mapError turns pgx errors into *interfaces.Error, keeping the server's
// code, detail and hint.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &interfaces.Error{Kind: interfaces.KindNotFound, Op: op, Err: err}
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return &interfaces.Error{Kind: interfaces.KindUnknown, Op: op, Err: err}
	}

	out := &interfaces.Error{
		Op:     op,
		Code:   pgErr.Code,
		Detail: pgErr.Detail,
		Hint:   pgErr.Hint,
		Err:    err,
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		out.Kind = interfaces.KindDuplicate
	case codeForeignKeyViolation:
		out.Kind = interfaces.KindUnknown
		out.Message = "invalid category or author reference"
	case codeCheckViolation:
		out.Kind = interfaces.KindUnknown
		out.Message = "value violates a table constraint"
	case codeInvalidText:
		// a malformed uuid names no row
		out.Kind = interfaces.KindNotFound
	case codeUndefinedTable:
		out.Kind = interfaces.KindSchemaMissing
	case codeInsufficientPrivs:
		out.Kind = interfaces.KindPermissionDenied
	default:
		out.Kind = interfaces.KindUnknown
		out.Message = pgErr.Message
	}
	return out
}
