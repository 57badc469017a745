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
package stock

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kestrel-holdings/rentalcore/audit"
	"github.com/kestrel-holdings/rentalcore/dbtx"
	"github.com/kestrel-holdings/rentalcore/ledger"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

// Repository locks, mutates, persists, and appends the movement for a
// stock level in one step, so every caller gets the "mutator + movement
// append under row lock" guarantee of spec.md §4.4 for free.
type Repository struct {
	ledger *ledger.Repository
}

func NewRepository(ledgerRepo *ledger.Repository) *Repository {
	return &Repository{ledger: ledgerRepo}
}

// LockByItemLocation acquires the row-level write lock named in spec.md
// §5 as the serialization point for stock-level bucket transitions.
func (r *Repository) LockByItemLocation(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID) (*Level, error) {
	var lvl Level
	err := pgxscan.Get(ctx, tx, &lvl, `
		SELECT id, item_id, location_id, available, reserved, on_rent, damaged, under_repair, beyond_repair,
		       average_cost, total_value, reorder_point, maximum_stock,
		       created_at, updated_at, created_by, updated_by, is_active, version
		FROM stock_levels WHERE item_id = $1 AND location_id = $2 FOR UPDATE
	`, itemID, locationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, rcerr.Database("stock.LockByItemLocation", err)
	}
	return &lvl, nil
}

// LockByID acquires the row-level write lock by primary key.
func (r *Repository) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Level, error) {
	var lvl Level
	err := pgxscan.Get(ctx, tx, &lvl, `
		SELECT id, item_id, location_id, available, reserved, on_rent, damaged, under_repair, beyond_repair,
		       average_cost, total_value, reorder_point, maximum_stock,
		       created_at, updated_at, created_by, updated_by, is_active, version
		FROM stock_levels WHERE id = $1 FOR UPDATE
	`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rcerr.NotFound("stock_level", id.String())
		}
		return nil, rcerr.Database("stock.LockByID", err)
	}
	return &lvl, nil
}

// GetOrCreate implements the get-or-create half of C6's
// initialize_stock_level, racing the same way sku.Repository.GetOrCreate
// does: loser retries once after a unique-constraint collision.
func (r *Repository) GetOrCreate(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, actor uuid.UUID, now time.Time) (*Level, bool, error) {
	existing, err := r.LockByItemLocation(ctx, tx, itemID, locationID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	created := Level{
		ID:         uuid.New(),
		ItemID:     itemID,
		LocationID: locationID,
	}
	created.Fields = audit.New(actor, now)

	// the insert runs under a savepoint so a unique violation leaves the
	// enclosing transaction usable for the re-read.
	sp, err := tx.Begin(ctx)
	if err != nil {
		return nil, false, rcerr.Database("stock.GetOrCreate savepoint", err)
	}
	if err := r.insert(ctx, sp, &created); err != nil {
		_ = sp.Rollback(ctx)
		if rcerr.IsUniqueViolation(err) {
			winner, ferr := r.LockByItemLocation(ctx, tx, itemID, locationID)
			if ferr != nil {
				return nil, false, ferr
			}
			if winner == nil {
				return nil, false, rcerr.Database("stock.GetOrCreate retry", err)
			}
			return winner, false, nil
		}
		return nil, false, rcerr.Database("stock.GetOrCreate insert", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return nil, false, rcerr.Database("stock.GetOrCreate savepoint", err)
	}

	return &created, true, nil
}

// Apply persists a Mutation's resulting Level and appends its Movement in
// the same transaction, so quantity_before/after always agree with the
// level snapshot (spec.md §4.3).
func (r *Repository) Apply(ctx context.Context, tx pgx.Tx, m Mutation, transactionHeaderID, transactionLineID, performedBy uuid.UUID, now time.Time) error {
	m.Level.Fields = m.Level.Fields.Touch(performedBy, now)
	if err := r.update(ctx, tx, &m.Level); err != nil {
		return err
	}

	m.Movement.TransactionHeaderID = transactionHeaderID
	m.Movement.TransactionLineID = transactionLineID
	m.Movement.PerformedBy = performedBy
	if !m.Movement.Consistent() {
		return rcerr.InventoryConsistency("movement quantity_after does not match quantity_before + quantity_change")
	}

	return r.ledger.Append(ctx, tx, &m.Movement)
}

// Persist saves a level with no accompanying movement — the shape
// update_average_cost needs, since it is cost metadata only (spec.md
// §4.4: "none (cost metadata only)").
func (r *Repository) Persist(ctx context.Context, tx pgx.Tx, l *Level, actor uuid.UUID, now time.Time) error {
	l.Fields = l.Fields.Touch(actor, now)
	return r.update(ctx, tx, l)
}

func (r *Repository) insert(ctx context.Context, tx pgx.Tx, l *Level) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_levels
			(id, item_id, location_id, available, reserved, on_rent, damaged, under_repair, beyond_repair,
			 average_cost, total_value, reorder_point, maximum_stock,
			 created_at, updated_at, created_by, updated_by, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, l.ID, l.ItemID, l.LocationID, l.Available, l.Reserved, l.OnRent, l.Damaged, l.UnderRepair, l.BeyondRepair,
		l.AverageCost, l.TotalValue, l.ReorderPoint, l.MaximumStock,
		l.CreatedAt, l.UpdatedAt, l.CreatedBy, l.UpdatedBy, l.Version)
	return err
}

func (r *Repository) update(ctx context.Context, tx pgx.Tx, l *Level) error {
	_, err := tx.Exec(ctx, `
		UPDATE stock_levels SET
			available = $2, reserved = $3, on_rent = $4, damaged = $5, under_repair = $6, beyond_repair = $7,
			average_cost = $8, total_value = $9, reorder_point = $10, maximum_stock = $11,
			updated_at = $12, updated_by = $13, version = $14
		WHERE id = $1
	`, l.ID, l.Available, l.Reserved, l.OnRent, l.Damaged, l.UnderRepair, l.BeyondRepair,
		l.AverageCost, l.TotalValue, l.ReorderPoint, l.MaximumStock,
		l.UpdatedAt, l.UpdatedBy, l.Version)
	if err != nil {
		return rcerr.Database("stock.update", err)
	}
	return nil
}

// dbtx.Session is satisfied by pgx.Tx; imported for the package-level
// doc reference in Apply/LockByID callers that pass tx around.
var _ dbtx.Session = (pgx.Tx)(nil)
