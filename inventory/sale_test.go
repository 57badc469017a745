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

func TestSellUnitsSerializedMovesUnitsAndLedger(t *testing.T) {
	f := newTestFixture(t)
	ctx := context.Background()

	itemID := f.seedItem(t, true)
	locID := f.seedLocation(t, "SALE-"+uuid.New().String()[:8])
	header, line := uuid.New(), uuid.New()

	units, _, err := f.svc.ReceiveUnits(ctx, nil, ReceiveUnitsInput{
		ItemID:     itemID,
		LocationID: locID,
		Quantity:   money.QuantityFromInt(2),
		UnitCost:   money.MoneyFromFloat(25),
		Serials:    []string{"SALE-S1", "SALE-S2"},
		PONumber:   "PO-SALE",
	}, uuid.New(), uuid.New(), f.actor, f.now)
	if err != nil {
		t.Fatalf("seed units via ReceiveUnits: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("seeded %d units, want 2", len(units))
	}

	result, err := f.svc.SellUnits(ctx, nil, itemID, locID, money.QuantityFromInt(1), true, header, line, f.actor, f.now)
	if err != nil {
		t.Fatalf("SellUnits: %v", err)
	}
	if len(result.Units) != 1 {
		t.Fatalf("got %d sold units, want 1", len(result.Units))
	}
	if !result.Level.Available.Equal(money.QuantityFromInt(1)) {
		t.Fatalf("available after sale = %s, want 1", result.Level.Available)
	}

	var headerID, lineID uuid.UUID
	err = f.pool.QueryRow(ctx, `
		SELECT transaction_header_id, transaction_line_id FROM stock_movements
		WHERE item_id = $1 AND location_id = $2 AND movement_type = 'SALE'
		ORDER BY created_at DESC LIMIT 1
	`, itemID, locID).Scan(&headerID, &lineID)
	if err != nil {
		t.Fatalf("read sale movement: %v", err)
	}
	if headerID != header || lineID != line {
		t.Fatalf("sale movement transaction ids = %s/%s, want %s/%s", headerID, lineID, header, line)
	}
}
