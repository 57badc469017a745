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
package catalog

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kestrel-holdings/rentalcore/dbtx"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

// Repository provides the explicit, eager-loading selects spec.md §9
// asks for in place of ORM lazy traversal: every lookup here returns
// exactly the aggregate needed, not a lazily-fetched proxy.
type Repository struct{}

func NewRepository() *Repository { return &Repository{} }

func (r *Repository) ItemByID(ctx context.Context, s dbtx.Session, id uuid.UUID) (*Item, error) {
	var it Item
	err := pgxscan.Get(ctx, s, &it, `
		SELECT id, name, sku, brand_id, category_id, unit_of_measurement,
		       rental_rate_per_period, rental_period, sale_price, purchase_price, security_deposit,
		       is_rentable, is_saleable, serial_number_required,
		       created_at, updated_at, created_by, updated_by, is_active, version
		FROM items WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rcerr.NotFound("item", id.String())
		}
		return nil, rcerr.Database("catalog.ItemByID", err)
	}
	return &it, nil
}

func (r *Repository) LocationByID(ctx context.Context, s dbtx.Session, id uuid.UUID) (*Location, error) {
	var loc Location
	err := pgxscan.Get(ctx, s, &loc, `
		SELECT id, code, name, type, address, contact_name, contact_phone,
		       created_at, updated_at, created_by, updated_by, is_active, version
		FROM locations WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rcerr.NotFound("location", id.String())
		}
		return nil, rcerr.Database("catalog.LocationByID", err)
	}
	return &loc, nil
}

func (r *Repository) CustomerExistsActive(ctx context.Context, s dbtx.Session, id uuid.UUID) (bool, error) {
	return r.existsActive(ctx, s, "customers", id)
}

func (r *Repository) SupplierExistsActive(ctx context.Context, s dbtx.Session, id uuid.UUID) (bool, error) {
	return r.existsActive(ctx, s, "suppliers", id)
}

func (r *Repository) LocationExistsActive(ctx context.Context, s dbtx.Session, id uuid.UUID) (bool, error) {
	return r.existsActive(ctx, s, "locations", id)
}

func (r *Repository) ItemExistsActive(ctx context.Context, s dbtx.Session, id uuid.UUID) (bool, error) {
	return r.existsActive(ctx, s, "items", id)
}

func (r *Repository) existsActive(ctx context.Context, s dbtx.Session, table string, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = $1 AND is_active)", id).Scan(&exists)
	if err != nil {
		return false, rcerr.Database("catalog.existsActive:"+table, err)
	}
	return exists, nil
}

func (r *Repository) BrandCode(ctx context.Context, s dbtx.Session, id uuid.UUID) (string, error) {
	if id == uuid.Nil {
		return "", nil
	}
	var code string
	err := s.QueryRow(ctx, "SELECT code FROM brands WHERE id = $1", id).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", rcerr.NotFound("brand", id.String())
		}
		return "", rcerr.Database("catalog.BrandCode", err)
	}
	return code, nil
}

func (r *Repository) CategoryCode(ctx context.Context, s dbtx.Session, id uuid.UUID) (string, error) {
	if id == uuid.Nil {
		return "", nil
	}
	var code string
	err := s.QueryRow(ctx, "SELECT code FROM categories WHERE id = $1", id).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", rcerr.NotFound("category", id.String())
		}
		return "", rcerr.Database("catalog.CategoryCode", err)
	}
	return code, nil
}
