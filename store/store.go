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

// Package store wraps the connection pool shared by a deployment of the
// core and reports a handful of operational rollups used by the CLI.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the deployment-level handle: one pool, one name, one owner.
// Everything else (catalog, stock, transactions) is reached through the
// domain packages, each constructed from Store.Pool.
type Store struct {
	DBUrl string
	Name  string
	Owner string

	Pool *pgxpool.Pool
}

// Connect opens the pool if it isn't already open.
func (s *Store) Connect(ctx context.Context) error {
	if s.Pool != nil {
		return nil
	}
	pool, err := pgxpool.New(ctx, s.DBUrl)
	if err != nil {
		return err
	}
	s.Pool = pool
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

// ActiveLocationCount returns the number of non-deactivated locations.
func (s *Store) ActiveLocationCount(ctx context.Context) (int, error) {
	var count int
	err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM locations WHERE is_active").Scan(&count)
	return count, err
}

// ActiveItemCount returns the number of non-deactivated catalog items.
func (s *Store) ActiveItemCount(ctx context.Context) (int, error) {
	var count int
	err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM items WHERE is_active").Scan(&count)
	return count, err
}

// OpenTransactionCount returns the number of headers not yet in a terminal
// status (COMPLETED or CANCELLED).
func (s *Store) OpenTransactionCount(ctx context.Context) (int, error) {
	var count int
	err := s.Pool.QueryRow(ctx,
		"SELECT count(*) FROM transaction_headers WHERE status NOT IN ('COMPLETED', 'CANCELLED') AND is_active").
		Scan(&count)
	return count, err
}

// TotalOnHandQuantity sums on_hand across every stock level, computed the
// same way stock.Level.OnHand does: the six buckets, added in SQL.
func (s *Store) TotalOnHandQuantity(ctx context.Context) (float64, error) {
	var total float64
	err := s.Pool.QueryRow(ctx, `
		SELECT coalesce(sum(available + reserved + on_rent + damaged + under_repair + beyond_repair), 0)
		FROM stock_levels`).Scan(&total)
	return total, err
}

// LastMovementAt returns the timestamp of the most recent ledger entry, or
// the zero time if the ledger is empty.
func (s *Store) LastMovementAt(ctx context.Context) (time.Time, error) {
	var last time.Time
	err := s.Pool.QueryRow(ctx,
		"SELECT coalesce(max(created_at), '0001-01-01'::timestamptz) FROM stock_movements").Scan(&last)
	return last, err
}
