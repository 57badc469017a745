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
	"testing"

	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/money"
)

func TestReceiveUnitsCreatesUnitsAndRaisesLevel(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	itemID := f.seedItem(t, true)
	locID := f.seedLocation(t, "RECV-"+uuid.New().String()[:8])
	header, line := uuid.New(), uuid.New()

	units, level, err := f.svc.ReceiveUnits(ctx, nil, ReceiveUnitsInput{
		ItemID:     itemID,
		LocationID: locID,
		Quantity:   money.QuantityFromInt(3),
		UnitCost:   money.MoneyFromFloat(10),
		Serials:    []string{"S1", "S2", "S3"},
		PONumber:   "PO-1",
	}, header, line, f.actor, f.now)
	if err != nil {
		t.Fatalf("ReceiveUnits: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}
	if !level.Available.Equal(money.QuantityFromInt(3)) {
		t.Fatalf("available = %s, want 3", level.Available)
	}

	var movementHeader, movementLine uuid.UUID
	err = f.pool.QueryRow(ctx, `
		SELECT transaction_header_id, transaction_line_id FROM stock_movements
		WHERE item_id = $1 AND location_id = $2 AND movement_type = 'PURCHASE'
	`, itemID, locID).Scan(&movementHeader, &movementLine)
	if err != nil {
		t.Fatalf("read movement: %v", err)
	}
	if movementHeader != header || movementLine != line {
		t.Fatalf("movement transaction ids = %s/%s, want %s/%s", movementHeader, movementLine, header, line)
	}
}

func TestCheckoutForRentalInsufficientUnits(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	itemID := f.seedItem(t, true)
	locID := f.seedLocation(t, "CHK-"+uuid.New().String()[:8])

	if _, err := f.svc.InitializeStockLevel(ctx, nil, itemID, locID, money.QuantityFromInt(5), money.ZeroQuantity, money.ZeroQuantity, f.actor, f.now); err != nil {
		t.Fatalf("InitializeStockLevel: %v", err)
	}

	_, err := f.svc.CheckoutForRental(ctx, nil, itemID, locID, money.QuantityFromInt(2), uuid.New(), uuid.New(), f.actor, f.now)
	if err == nil {
		t.Fatal("expected insufficient-units error: level says available but no inventory_units rows exist")
	}
}

func TestAdjustRejectsNegativeDamagedBucket(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	itemID := f.seedItem(t, false)
	locID := f.seedLocation(t, "ADJ-"+uuid.New().String()[:8])

	if _, err := f.svc.InitializeStockLevel(ctx, nil, itemID, locID, money.QuantityFromInt(5), money.ZeroQuantity, money.ZeroQuantity, f.actor, f.now); err != nil {
		t.Fatalf("InitializeStockLevel: %v", err)
	}

	// Damaged bucket starts at zero; a negative adjustment with
	// affectAvailable=false must be rejected rather than letting Damaged
	// go negative.
	_, err := f.svc.Adjust(ctx, nil, itemID, locID, money.QuantityFromInt(-1), false, "damage correction", "", false, f.actor, f.now)
	if err == nil {
		t.Fatal("expected rcerr.InventoryConsistency for a negative damaged bucket")
	}
}
