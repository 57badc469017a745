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
package txn

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kestrel-holdings/rentalcore/rcerr"
)

// Numbering allocates `<P>-<YYYY>-<NNNNN>` transaction numbers under the
// same per-scope row-lock pattern sku.Repository uses for SKU issuance
// (spec.md §4.8/§6), against a dedicated counters table so the
// transaction-number sequence space never collides with SKU sequences.
type Numbering struct{}

func NewNumbering() *Numbering { return &Numbering{} }

// Allocate locks the (type, year) counter row and issues the next number.
// The row's next_number holds the last number issued; on first use for
// that scope the row is created holding 1 and 1 is issued.
func (n *Numbering) Allocate(ctx context.Context, tx pgx.Tx, t Type, year int) (string, error) {
	var next int64
	err := tx.QueryRow(ctx, `
		SELECT next_number FROM transaction_number_counters
		WHERE transaction_type = $1 AND year = $2 FOR UPDATE
	`, t, year).Scan(&next)

	switch {
	case err == nil:
		next++
		if _, err := tx.Exec(ctx, `
			UPDATE transaction_number_counters SET next_number = $3
			WHERE transaction_type = $1 AND year = $2
		`, t, year, next); err != nil {
			return "", err
		}
	case errors.Is(err, pgx.ErrNoRows):
		next = 1
		// the insert runs under a savepoint so a unique violation leaves
		// the enclosing transaction usable for the retry.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return "", err
		}
		if _, err := sp.Exec(ctx, `
			INSERT INTO transaction_number_counters (transaction_type, year, next_number)
			VALUES ($1, $2, $3)
		`, t, year, next); err != nil {
			_ = sp.Rollback(ctx)
			if rcerr.IsUniqueViolation(err) {
				// lost the first-creator race; the winner's row now
				// exists, so re-run under the row lock (spec.md §5's
				// single race-loss retry).
				return n.Allocate(ctx, tx, t, year)
			}
			return "", err
		}
		if err := sp.Commit(ctx); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	return fmt.Sprintf("%s-%04d-%05d", t.Prefix(), year, next), nil
}
