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
package unit

import (
	"context"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kestrel-holdings/rentalcore/audit"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

const unitColumns = `id, item_id, location_id, sku, serial_number, batch_code, status, condition,
	purchase_price, warranty_expiry, next_maintenance, is_rental_blocked, repaired_at,
	created_at, updated_at, created_by, updated_by, is_active, version`

// Repository persists inventory units and locks them in ascending-id
// order within one return, per spec.md §5.
type Repository struct{}

func NewRepository() *Repository { return &Repository{} }

// OldestAvailableForRental selects up to limit AVAILABLE, non-blocked
// units at a location, FIFO by acquisition date, and locks each row —
// the selection step of C6's checkout_for_rental (spec.md §4.6).
func (r *Repository) OldestAvailableForRental(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, limit int) ([]Unit, error) {
	var units []Unit
	err := pgxscan.Select(ctx, tx, &units, `
		SELECT `+unitColumns+`
		FROM inventory_units
		WHERE item_id = $1 AND location_id = $2 AND status = $3 AND is_rental_blocked = false
		ORDER BY created_at ASC
		LIMIT $4
		FOR UPDATE
	`, itemID, locationID, Available, limit)
	if err != nil {
		return nil, rcerr.Database("unit.OldestAvailableForRental", err)
	}
	return units, nil
}

// LockByID locks one unit row by primary key, in the ascending-id order
// the caller is responsible for maintaining across a batch (spec.md §5).
func (r *Repository) LockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Unit, error) {
	var u Unit
	err := pgxscan.Get(ctx, tx, &u, `SELECT `+unitColumns+` FROM inventory_units WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rcerr.NotFound("inventory_unit", id.String())
		}
		return nil, rcerr.Database("unit.LockByID", err)
	}
	return &u, nil
}

// LockByIDsAscending locks a batch of units in ascending id order to
// avoid deadlocks across concurrent returns touching overlapping units
// (spec.md §5: "units within one return are locked in ascending id
// order").
func (r *Repository) LockByIDsAscending(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]Unit, error) {
	sorted := append([]uuid.UUID(nil), ids...)
	sortUUIDs(sorted)

	units := make([]Unit, 0, len(sorted))
	for _, id := range sorted {
		u, err := r.LockByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		units = append(units, *u)
	}
	return units, nil
}

func sortUUIDs(ids []uuid.UUID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1].String() > ids[j].String(); j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
}

// Create inserts a batch of brand-new units (C6 receive_units).
func (r *Repository) Create(ctx context.Context, tx pgx.Tx, units []Unit, actor uuid.UUID, now time.Time) error {
	for i := range units {
		if units[i].ID == uuid.Nil {
			units[i].ID = uuid.New()
		}
		units[i].Fields = audit.New(actor, now)
		if err := r.insert(ctx, tx, &units[i]); err != nil {
			return err
		}
	}
	return nil
}

// Update persists a unit after a Transition.
func (r *Repository) Update(ctx context.Context, tx pgx.Tx, u *Unit) error {
	_, err := tx.Exec(ctx, `
		UPDATE inventory_units SET
			status = $2, condition = $3, is_rental_blocked = $4, repaired_at = $5,
			updated_at = $6, updated_by = $7, version = $8
		WHERE id = $1
	`, u.ID, u.Status, u.Condition, u.IsRentalBlocked, u.RepairedAt,
		u.UpdatedAt, u.UpdatedBy, u.Version)
	if err != nil {
		return rcerr.Database("unit.Update", err)
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, tx pgx.Tx, u *Unit) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO inventory_units
			(id, item_id, location_id, sku, serial_number, batch_code, status, condition,
			 purchase_price, warranty_expiry, next_maintenance, is_rental_blocked, repaired_at,
			 created_at, updated_at, created_by, updated_by, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, u.ID, u.ItemID, u.LocationID, u.SKU, u.SerialNumber, u.BatchCode, u.Status, u.Condition,
		u.PurchasePrice, u.WarrantyExpiry, u.NextMaintenance, u.IsRentalBlocked, u.RepairedAt,
		u.CreatedAt, u.UpdatedAt, u.CreatedBy, u.UpdatedBy, u.Version)
	if err != nil {
		return rcerr.Database("unit.insert", err)
	}
	return nil
}

// CountAllocatable counts AVAILABLE, non-blocked units at a location for
// an item. checkout_for_rental does not call it; it counts the rows
// OldestAvailableForRental returns instead.
func (r *Repository) CountAllocatable(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, `
		SELECT count(*) FROM inventory_units
		WHERE item_id = $1 AND location_id = $2 AND status = $3 AND is_rental_blocked = false
	`, itemID, locationID, Available).Scan(&n)
	if err != nil {
		return 0, rcerr.Database("unit.CountAllocatable", err)
	}
	return n, nil
}

// DueForMaintenance and DueForWarrantyExpiry back C6's alerts() query.
func (r *Repository) DueForMaintenance(ctx context.Context, tx_or_pool queryer, locationID *uuid.UUID, byDate time.Time) ([]Unit, error) {
	return r.alertQuery(ctx, tx_or_pool, locationID, "next_maintenance <= $1", byDate)
}

func (r *Repository) DueForWarrantyExpiry(ctx context.Context, tx_or_pool queryer, locationID *uuid.UUID, byDate time.Time) ([]Unit, error) {
	return r.alertQuery(ctx, tx_or_pool, locationID, "warranty_expiry <= $1", byDate)
}

// queryer is the read-only subset dbtx.Session exposes, named locally so
// this file doesn't need to import dbtx just for a type alias.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repository) alertQuery(ctx context.Context, q queryer, locationID *uuid.UUID, predicate string, byDate time.Time) ([]Unit, error) {
	sql := `SELECT ` + unitColumns + ` FROM inventory_units WHERE ` + predicate
	args := []any{byDate}
	if locationID != nil {
		sql += " AND location_id = $2"
		args = append(args, *locationID)
	}

	var units []Unit
	if err := pgxscan.Select(ctx, q, &units, sql, args...); err != nil {
		return nil, rcerr.Database("unit.alertQuery", err)
	}
	return units, nil
}
