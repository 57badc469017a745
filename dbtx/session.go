// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dbtx abstracts over a plain connection pool and an in-flight
// transaction so repository functions can be handed either and composite
// service methods (C6/C8/C9) can share one transaction across sub-steps
// (spec.md §5).
package dbtx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Session is satisfied by both *pgxpool.Pool and pgx.Tx.
type Session interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ Session = (*pgxpool.Pool)(nil)
	_ Session = (pgx.Tx)(nil)
)

// Beginner is satisfied by *pgxpool.Pool: the entry point a public
// operation uses to start its own transaction.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ Beginner = (*pgxpool.Pool)(nil)

// WithTx begins a transaction on pool, runs fn with it, and commits on
// success or rolls back on any error or panic. This is the single place
// the rollback-on-error idiom the teacher repeats in every
// library/subscription.go method lives, generalized to any operation.
func WithTx(ctx context.Context, pool Beginner, fn func(tx pgx.Tx) error) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if rerr := tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
			log.Error().Err(rerr).Msg("error rolling back tx")
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
