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

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kestrel-holdings/rentalcore/dbtx"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

const headerColumns = `id, transaction_number, transaction_type AS type, status, customer_id, supplier_id, location_id,
	subtotal, discount, tax, shipping, other, total, paid, payment_status,
	rental_start_date, rental_end_date, current_rental_status,
	total_late_fees, total_damage_fees, total_other_fees,
	created_at, updated_at, created_by, updated_by, is_active, version, deleted_at, deleted_by`

const lineColumns = `id, transaction_header_id, line_number, item_id, quantity, unit_price, discount_amount,
	tax_rate, tax_amount, line_total, rental_period, rental_period_count, rental_start, rental_end,
	returned_quantity, current_rental_status, notes`

// Repository persists headers, lines, and events. Soft-deleted headers
// are excluded from every default query, per spec.md §4.7.
type Repository struct{}

func NewRepository() *Repository { return &Repository{} }

func (r *Repository) HeaderByID(ctx context.Context, s dbtx.Session, id uuid.UUID) (*Header, error) {
	var h Header
	err := pgxscan.Get(ctx, s, &h, `SELECT `+headerColumns+` FROM transaction_headers WHERE id = $1 AND is_active`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rcerr.NotFound("transaction_header", id.String())
		}
		return nil, rcerr.Database("txn.HeaderByID", err)
	}
	return &h, nil
}

func (r *Repository) LockHeaderByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Header, error) {
	var h Header
	err := pgxscan.Get(ctx, tx, &h, `SELECT `+headerColumns+` FROM transaction_headers WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rcerr.NotFound("transaction_header", id.String())
		}
		return nil, rcerr.Database("txn.LockHeaderByID", err)
	}
	return &h, nil
}

func (r *Repository) LinesByHeaderID(ctx context.Context, s dbtx.Session, headerID uuid.UUID) ([]Line, error) {
	var lines []Line
	err := pgxscan.Select(ctx, s, &lines, `
		SELECT `+lineColumns+` FROM transaction_lines WHERE transaction_header_id = $1 ORDER BY line_number
	`, headerID)
	if err != nil {
		return nil, rcerr.Database("txn.LinesByHeaderID", err)
	}
	return lines, nil
}

func (r *Repository) InsertHeader(ctx context.Context, tx pgx.Tx, h *Header) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO transaction_headers
			(id, transaction_number, transaction_type, status, customer_id, supplier_id, location_id,
			 subtotal, discount, tax, shipping, other, total, paid, payment_status,
			 rental_start_date, rental_end_date, current_rental_status,
			 total_late_fees, total_damage_fees, total_other_fees,
			 created_at, updated_at, created_by, updated_by, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)
	`, h.ID, h.TransactionNumber, h.Type, h.Status, h.CustomerID, h.SupplierID, h.LocationID,
		h.Subtotal, h.Discount, h.Tax, h.Shipping, h.Other, h.Total, h.Paid, h.PaymentStatus,
		h.RentalStartDate, h.RentalEndDate, h.CurrentRentalStatus,
		h.TotalLateFees, h.TotalDamageFees, h.TotalOtherFees,
		h.CreatedAt, h.UpdatedAt, h.CreatedBy, h.UpdatedBy, h.Version)
	if err != nil {
		if rcerr.IsUniqueViolation(err) {
			return rcerr.Conflict("transaction_number", h.TransactionNumber)
		}
		return rcerr.Database("txn.InsertHeader", err)
	}
	return nil
}

func (r *Repository) UpdateHeader(ctx context.Context, tx pgx.Tx, h *Header) error {
	_, err := tx.Exec(ctx, `
		UPDATE transaction_headers SET
			status = $2, subtotal = $3, discount = $4, tax = $5, shipping = $6, other = $7, total = $8,
			paid = $9, payment_status = $10, current_rental_status = $11,
			total_late_fees = $12, total_damage_fees = $13, total_other_fees = $14,
			updated_at = $15, updated_by = $16, version = $17, is_active = $18, deleted_at = $19, deleted_by = $20
		WHERE id = $1
	`, h.ID, h.Status, h.Subtotal, h.Discount, h.Tax, h.Shipping, h.Other, h.Total,
		h.Paid, h.PaymentStatus, h.CurrentRentalStatus,
		h.TotalLateFees, h.TotalDamageFees, h.TotalOtherFees,
		h.UpdatedAt, h.UpdatedBy, h.Version, h.IsActive, h.DeletedAt, h.DeletedBy)
	if err != nil {
		return rcerr.Database("txn.UpdateHeader", err)
	}
	return nil
}

func (r *Repository) InsertLine(ctx context.Context, tx pgx.Tx, l *Line) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO transaction_lines
			(id, transaction_header_id, line_number, item_id, quantity, unit_price, discount_amount,
			 tax_rate, tax_amount, line_total, rental_period, rental_period_count, rental_start, rental_end,
			 returned_quantity, current_rental_status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, l.ID, l.TransactionHeaderID, l.LineNumber, l.ItemID, l.Quantity, l.UnitPrice, l.DiscountAmount,
		l.TaxRate, l.TaxAmount, l.LineTotal, l.RentalPeriod, l.RentalPeriodCount, l.RentalStart, l.RentalEnd,
		l.ReturnedQuantity, l.CurrentRentalStatus, l.Notes)
	if err != nil {
		if rcerr.IsUniqueViolation(err) {
			return rcerr.Conflict("transaction_line", l.TransactionHeaderID.String())
		}
		return rcerr.Database("txn.InsertLine", err)
	}
	return nil
}

func (r *Repository) UpdateLine(ctx context.Context, tx pgx.Tx, l *Line) error {
	_, err := tx.Exec(ctx, `
		UPDATE transaction_lines SET
			returned_quantity = $2, current_rental_status = $3, notes = $4, line_total = $5
		WHERE id = $1
	`, l.ID, l.ReturnedQuantity, l.CurrentRentalStatus, l.Notes, l.LineTotal)
	if err != nil {
		return rcerr.Database("txn.UpdateLine", err)
	}
	return nil
}

func (r *Repository) InsertEvent(ctx context.Context, tx pgx.Tx, e *Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	payload, err := e.EncodePayload()
	if err != nil {
		return rcerr.Database("txn.InsertEvent encode", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO transaction_events (id, transaction_id, event_type, event_category, event_data, status, event_timestamp)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.ID, e.TransactionHeaderID, e.EventType, e.Category, payload, e.Status, e.EventTimestamp)
	if err != nil {
		return rcerr.Database("txn.InsertEvent", err)
	}
	return nil
}
