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
package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/dbtx"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

// Repository appends and queries stock movements. Append is always
// called with the session/transaction the caller is already inside
// (spec.md §4.3: "quantity_before and quantity_after are captured from
// the stock-level row inside the same DB transaction"), generalizing the
// insert-with-tx shape of the teacher's data/eod.go.
type Repository struct{}

func NewRepository() *Repository { return &Repository{} }

// Append inserts one immutable movement row. m.ID is assigned if unset.
func (r *Repository) Append(ctx context.Context, s dbtx.Session, m *Movement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	_, err := s.Exec(ctx, `
		INSERT INTO stock_movements
			(id, stock_level_id, item_id, location_id, movement_type, category,
			 quantity_change, quantity_before, quantity_after,
			 transaction_header_id, transaction_line_id, unit_cost,
			 reason, notes, approved_by, performed_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, m.ID, m.StockLevelID, m.ItemID, m.LocationID, m.MovementType, m.Category,
		m.QuantityChange, m.QuantityBefore, m.QuantityAfter,
		nullableUUID(m.TransactionHeaderID), nullableUUID(m.TransactionLineID), m.UnitCost,
		m.Reason, m.Notes, m.ApprovedBy, m.PerformedBy, m.CreatedAt)
	if err != nil {
		return rcerr.Database("ledger.Append", err)
	}
	return nil
}

// Filter narrows ListByFilter queries.
type Filter struct {
	ItemID       *uuid.UUID
	LocationID   *uuid.UUID
	MovementType *MovementType
	Since        *time.Time
	Until        *time.Time
	TransactionID *uuid.UUID
}

// ListByFilter returns movements matching the given filter, newest first.
func (r *Repository) ListByFilter(ctx context.Context, s dbtx.Session, f Filter) ([]Movement, error) {
	sql := `SELECT id, stock_level_id, item_id, location_id, movement_type, category,
	               quantity_change, quantity_before, quantity_after,
	               transaction_header_id, transaction_line_id, unit_cost,
	               reason, notes, approved_by, performed_by, created_at
	        FROM stock_movements WHERE true`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.ItemID != nil {
		sql += " AND item_id = " + arg(*f.ItemID)
	}
	if f.LocationID != nil {
		sql += " AND location_id = " + arg(*f.LocationID)
	}
	if f.MovementType != nil {
		sql += " AND movement_type = " + arg(*f.MovementType)
	}
	if f.Since != nil {
		sql += " AND created_at >= " + arg(*f.Since)
	}
	if f.Until != nil {
		sql += " AND created_at < " + arg(*f.Until)
	}
	if f.TransactionID != nil {
		sql += " AND transaction_header_id = " + arg(*f.TransactionID)
	}
	sql += " ORDER BY created_at DESC"

	var rows []Movement
	if err := pgxscan.Select(ctx, s, &rows, sql, args...); err != nil {
		return nil, rcerr.Database("ledger.ListByFilter", err)
	}
	return rows, nil
}

// SumByType aggregates signed quantity_change by movement type over
// [since, until) for one stock level, per spec.md §4.3's "aggregation
// (sum of signed quantity_change by type over a window)".
func (r *Repository) SumByType(ctx context.Context, s dbtx.Session, stockLevelID uuid.UUID, since, until time.Time) (map[MovementType]float64, error) {
	rows, err := s.Query(ctx, `
		SELECT movement_type, SUM(quantity_change)
		FROM stock_movements
		WHERE stock_level_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY movement_type
	`, stockLevelID, since, until)
	if err != nil {
		return nil, rcerr.Database("ledger.SumByType", err)
	}
	defer rows.Close()

	out := make(map[MovementType]float64)
	for rows.Next() {
		var mt MovementType
		var sum float64
		if err := rows.Scan(&mt, &sum); err != nil {
			return nil, rcerr.Database("ledger.SumByType scan", err)
		}
		out[mt] = sum
	}
	return out, nil
}

// PurgeOlderThan implements the spec.md §4.3 retention job contract: a
// plain exported function, not a scheduler (the core never schedules
// itself, §9).
func (r *Repository) PurgeOlderThan(ctx context.Context, s dbtx.Session, category Category, before time.Time) (int64, error) {
	tag, err := s.Exec(ctx, `
		DELETE FROM stock_movements WHERE category = $1 AND created_at < $2
	`, category, before)
	if err != nil {
		return 0, rcerr.Database("ledger.PurgeOlderThan", err)
	}
	return tag.RowsAffected(), nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
