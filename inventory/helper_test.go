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
package inventory

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kestrel-holdings/rentalcore/catalog"
	"github.com/kestrel-holdings/rentalcore/ledger"
	"github.com/kestrel-holdings/rentalcore/stock"
	"github.com/kestrel-holdings/rentalcore/unit"
)

// requireTestPool connects to the schema pointed at by
// RENTALCORE_TEST_DATABASE_URL. These are integration tests, not unit
// tests: Transfer/ReceiveUnits/CheckoutForRental/SellUnits orchestrate
// row-locked SQL across several tables, so a real Postgres connection is
// what exercises the bug classes that matter (missing-row creation,
// lock-order deadlocks, bucket arithmetic persisted through a round
// trip). They skip rather than fail when no database is configured.
func requireTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("RENTALCORE_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("RENTALCORE_TEST_DATABASE_URL not set; skipping inventory integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// testFixture wires a Service against the test pool plus the repositories
// needed to seed catalog rows that items/stock_levels/inventory_units
// foreign-key against.
type testFixture struct {
	svc   *Service
	pool  *pgxpool.Pool
	actor uuid.UUID
	now   time.Time
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	pool := requireTestPool(t)
	stockRepo := stock.NewRepository(ledger.NewRepository())
	unitRepo := unit.NewRepository()
	ledgerRepo := ledger.NewRepository()
	catalogRepo := catalog.NewRepository()
	return &testFixture{
		svc:   NewService(pool, stockRepo, unitRepo, ledgerRepo, catalogRepo),
		pool:  pool,
		actor: uuid.New(),
		now:   time.Now().UTC(),
	}
}

// seedItem inserts a brand, category, and item directly (catalog has no
// write path of its own — item/brand/category management is external
// master data per spec.md §1) and returns the item id.
func (f *testFixture) seedItem(t *testing.T, serialRequired bool) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	var brandID, categoryID, itemID uuid.UUID
	err := f.pool.QueryRow(ctx, `
		INSERT INTO brands (code, name, created_by, updated_by) VALUES ($1, $1, $2, $2) RETURNING id
	`, "BR-"+uuid.New().String()[:8], f.actor).Scan(&brandID)
	if err != nil {
		t.Fatalf("seed brand: %v", err)
	}
	err = f.pool.QueryRow(ctx, `
		INSERT INTO categories (code, name, created_by, updated_by) VALUES ($1, $1, $2, $2) RETURNING id
	`, "CAT-"+uuid.New().String()[:8], f.actor).Scan(&categoryID)
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	err = f.pool.QueryRow(ctx, `
		INSERT INTO items (sku, name, brand_id, category_id, is_rentable, is_saleable, serial_number_required, created_by, updated_by)
		VALUES ($1, $1, $2, $3, true, true, $4, $5, $5) RETURNING id
	`, "SKU-"+uuid.New().String()[:8], brandID, categoryID, serialRequired, f.actor).Scan(&itemID)
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return itemID
}

func (f *testFixture) seedLocation(t *testing.T, code string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := f.pool.QueryRow(context.Background(), `
		INSERT INTO locations (code, name, type, created_by, updated_by) VALUES ($1, $1, 'WAREHOUSE', $2, $2) RETURNING id
	`, code, f.actor).Scan(&id)
	if err != nil {
		t.Fatalf("seed location %s: %v", code, err)
	}
	return id
}
