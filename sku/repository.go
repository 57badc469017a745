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
package sku

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kestrel-holdings/rentalcore/audit"
	"github.com/kestrel-holdings/rentalcore/dbtx"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

// Repository persists Sequence rows and runs the row-locked issuance
// section that is the serialization point named in spec.md §5.
type Repository struct {
	Pool *pgxpool.Pool
}

// NewRepository wires a Repository to a live connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

// GetOrCreate implements spec.md §4.2 get_or_create: idempotent, and on a
// concurrent-creator race the loser observes the winner's row after a
// single retry (the only retryable condition per §5).
func (r *Repository) GetOrCreate(ctx context.Context, p NewParams, actor uuid.UUID, now time.Time) (*Sequence, error) {
	var seq Sequence
	err := dbtx.WithTx(ctx, r.Pool, func(tx pgx.Tx) error {
		existing, err := r.findByScope(ctx, tx, p.BrandID, p.CategoryID)
		if err != nil {
			return err
		}
		if existing != nil {
			seq = *existing
			return nil
		}

		if err := ValidateTemplate(p.FormatTemplate, nil); err != nil {
			return rcerr.Validation("format_template", err.Error())
		}

		created := Sequence{
			ID:             uuid.New(),
			BrandID:        p.BrandID,
			CategoryID:     p.CategoryID,
			Prefix:         p.Prefix,
			Suffix:         p.Suffix,
			PaddingLength:  p.PaddingLength,
			FormatTemplate: p.FormatTemplate,
			NextSequence:   1,
			IsActive:       true,
		}
		created.Fields = audit.New(actor, now)

		// the insert runs under a savepoint so a unique violation leaves
		// the enclosing transaction usable for the re-read.
		sp, err := tx.Begin(ctx)
		if err != nil {
			return rcerr.Database("sku.GetOrCreate savepoint", err)
		}
		if err := r.insert(ctx, sp, &created); err != nil {
			_ = sp.Rollback(ctx)
			if rcerr.IsUniqueViolation(err) {
				// lost the creation race: re-read the winner's row.
				winner, ferr := r.findByScope(ctx, tx, p.BrandID, p.CategoryID)
				if ferr != nil {
					return ferr
				}
				if winner == nil {
					return rcerr.Database("sku.GetOrCreate retry", err)
				}
				seq = *winner
				return nil
			}
			return rcerr.Database("sku.GetOrCreate insert", err)
		}
		if err := sp.Commit(ctx); err != nil {
			return rcerr.Database("sku.GetOrCreate savepoint", err)
		}

		seq = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// GenerateSKU locks the sequence row, issues the next SKU, and persists
// the advanced counters, per spec.md §4.2.
func (r *Repository) GenerateSKU(ctx context.Context, sequenceID uuid.UUID, brandCode, categoryCode, itemName string, customData map[string]string, actor uuid.UUID, now time.Time) (string, int64, error) {
	var sku string
	var num int64
	err := dbtx.WithTx(ctx, r.Pool, func(tx pgx.Tx) error {
		seq, err := r.lockByID(ctx, tx, sequenceID)
		if err != nil {
			return err
		}
		if !seq.IsActive {
			return rcerr.InactiveSequence(sequenceID.String())
		}

		sku, num, err = seq.issue(brandCode, categoryCode, itemName, customData, now)
		if err != nil {
			return rcerr.Validation("format_template", err.Error())
		}
		seq.Fields = seq.Fields.Touch(actor, now)

		return r.update(ctx, tx, seq)
	})
	if err != nil {
		return "", 0, err
	}
	return sku, num, nil
}

// GenerateBulk issues count contiguous SKUs under one locked section.
func (r *Repository) GenerateBulk(ctx context.Context, sequenceID uuid.UUID, count int, brandCode, categoryCode, itemName string, customData map[string]string, actor uuid.UUID, now time.Time) ([]string, []int64, error) {
	var skus []string
	var nums []int64
	err := dbtx.WithTx(ctx, r.Pool, func(tx pgx.Tx) error {
		seq, err := r.lockByID(ctx, tx, sequenceID)
		if err != nil {
			return err
		}
		if !seq.IsActive {
			return rcerr.InactiveSequence(sequenceID.String())
		}

		skus, nums, err = seq.issueBulk(count, brandCode, categoryCode, itemName, customData, now)
		if err != nil {
			return rcerr.Validation("format_template", err.Error())
		}
		seq.Fields = seq.Fields.Touch(actor, now)

		return r.update(ctx, tx, seq)
	})
	if err != nil {
		return nil, nil, err
	}
	return skus, nums, nil
}

// Reset is the admin reset operation (spec.md §4.2): forbidden when it
// would reissue an already-used number unless force is set.
func (r *Repository) Reset(ctx context.Context, sequenceID uuid.UUID, newValue int64, force bool, actor uuid.UUID, now time.Time) error {
	return dbtx.WithTx(ctx, r.Pool, func(tx pgx.Tx) error {
		seq, err := r.lockByID(ctx, tx, sequenceID)
		if err != nil {
			return err
		}
		if !force && newValue < seq.NextSequence {
			return rcerr.Validation("new_value", fmt.Sprintf(
				"would reissue already-used numbers below %d; pass force=true to override", seq.NextSequence))
		}
		seq.NextSequence = newValue
		seq.Fields = seq.Fields.Touch(actor, now)
		return r.update(ctx, tx, seq)
	})
}

// ValidateSKUUnique cross-checks the sku against both items and
// inventory_units, per spec.md §4.2.
func (r *Repository) ValidateSKUUnique(ctx context.Context, sku string) (bool, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM items WHERE sku = $1) +
			(SELECT count(*) FROM inventory_units WHERE sku = $1)
	`, sku).Scan(&count)
	if err != nil {
		return false, rcerr.Database("sku.ValidateSKUUnique", err)
	}
	return count == 0, nil
}

func (r *Repository) findByScope(ctx context.Context, tx pgx.Tx, brandID, categoryID uuid.UUID) (*Sequence, error) {
	var seq Sequence
	err := pgxscan.Get(ctx, tx, &seq, `
		SELECT id, brand_id, category_id, prefix, suffix, padding_length, format_template,
		       next_sequence, total_generated, coalesce(last_generated_sku, '') AS last_generated,
		       coalesce(last_generated_at, '0001-01-01'::timestamptz) AS last_generated_at,
		       created_at, updated_at, created_by, updated_by, is_active, version
		FROM sku_sequences WHERE brand_id = $1 AND category_id = $2
	`, brandID, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, rcerr.Database("sku.findByScope", err)
	}
	return &seq, nil
}

func (r *Repository) lockByID(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Sequence, error) {
	var seq Sequence
	err := pgxscan.Get(ctx, tx, &seq, `
		SELECT id, brand_id, category_id, prefix, suffix, padding_length, format_template,
		       next_sequence, total_generated, coalesce(last_generated_sku, '') AS last_generated,
		       coalesce(last_generated_at, '0001-01-01'::timestamptz) AS last_generated_at,
		       created_at, updated_at, created_by, updated_by, is_active, version
		FROM sku_sequences WHERE id = $1 FOR UPDATE
	`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rcerr.NotFound("sku_sequence", id.String())
		}
		return nil, rcerr.Database("sku.lockByID", err)
	}
	return &seq, nil
}

func (r *Repository) insert(ctx context.Context, tx pgx.Tx, s *Sequence) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sku_sequences
			(id, brand_id, category_id, prefix, suffix, padding_length, format_template,
			 next_sequence, total_generated, is_active,
			 created_at, updated_at, created_by, updated_by, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`, s.ID, s.BrandID, s.CategoryID, s.Prefix, s.Suffix, s.PaddingLength, s.FormatTemplate,
		s.NextSequence, s.TotalGenerated, s.IsActive,
		s.CreatedAt, s.UpdatedAt, s.CreatedBy, s.UpdatedBy, s.Version)
	return err
}

func (r *Repository) update(ctx context.Context, tx pgx.Tx, s *Sequence) error {
	_, err := tx.Exec(ctx, `
		UPDATE sku_sequences SET
			next_sequence = $2, total_generated = $3, last_generated_sku = $4,
			last_generated_at = $5, is_active = $6,
			updated_at = $7, updated_by = $8, version = $9
		WHERE id = $1
	`, s.ID, s.NextSequence, s.TotalGenerated, s.LastGenerated,
		s.LastGeneratedAt, s.IsActive, s.UpdatedAt, s.UpdatedBy, s.Version)
	if err != nil {
		return rcerr.Database("sku.update", err)
	}
	return nil
}
