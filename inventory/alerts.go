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
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/stock"
	"github.com/kestrel-holdings/rentalcore/unit"
)

// AlertKind enumerates the alert categories spec.md §4.6 item 7 names.
type AlertKind string

const (
	AlertLowStock         AlertKind = "LOW_STOCK"
	AlertMaintenanceDue   AlertKind = "MAINTENANCE_DUE"
	AlertWarrantyExpiring AlertKind = "WARRANTY_EXPIRING"
)

// Alert is one surfaced condition. StockLevelID or UnitID is set
// depending on Kind.
type Alert struct {
	Kind         AlertKind
	ItemID       uuid.UUID
	LocationID   uuid.UUID
	StockLevelID uuid.UUID
	UnitID       uuid.UUID
	Detail       string
}

// maintenanceLookahead and warrantyLookahead match spec.md §4.6 item 7's
// "next_maintenance_date <= today + N" / "<= today + 30d" windows. N is
// left at the same 30-day horizon as warranty in the absence of a
// separate configured value in the source.
const (
	maintenanceLookahead = 30 * 24 * time.Hour
	warrantyLookahead    = 30 * 24 * time.Hour
)

// Alerts aggregates LOW_STOCK, MAINTENANCE_DUE, and WARRANTY_EXPIRING
// conditions, optionally scoped to one location.
func (s *Service) Alerts(ctx context.Context, locationID *uuid.UUID, now time.Time) ([]Alert, error) {
	var alerts []Alert

	lowStockLevels, err := s.lowStockLevels(ctx, locationID)
	if err != nil {
		return nil, err
	}
	for _, lvl := range lowStockLevels {
		alerts = append(alerts, Alert{
			Kind:         AlertLowStock,
			ItemID:       lvl.ItemID,
			LocationID:   lvl.LocationID,
			StockLevelID: lvl.ID,
			Detail:       "available at or below reorder point",
		})
	}

	dueMaintenance, err := s.units.DueForMaintenance(ctx, s.pool, locationID, now.Add(maintenanceLookahead))
	if err != nil {
		return nil, err
	}
	for _, u := range dueMaintenance {
		alerts = append(alerts, unitAlert(AlertMaintenanceDue, u, "maintenance due"))
	}

	dueWarranty, err := s.units.DueForWarrantyExpiry(ctx, s.pool, locationID, now.Add(warrantyLookahead))
	if err != nil {
		return nil, err
	}
	for _, u := range dueWarranty {
		alerts = append(alerts, unitAlert(AlertWarrantyExpiring, u, "warranty expiring"))
	}

	return alerts, nil
}

func unitAlert(kind AlertKind, u unit.Unit, detail string) Alert {
	return Alert{Kind: kind, ItemID: u.ItemID, LocationID: u.LocationID, UnitID: u.ID, Detail: detail}
}

// lowStockLevels pages through every active stock level and filters in
// Go rather than pushing the reorder-point comparison into SQL, since
// Level.Status() is the single authoritative place that derivation
// lives (spec.md §9: no duplicated business rules between layers).
func (s *Service) lowStockLevels(ctx context.Context, locationID *uuid.UUID) ([]stock.Level, error) {
	var levels []stock.Level
	err := pgxscan.Select(ctx, s.pool, &levels, `
		SELECT id, item_id, location_id, available, reserved, on_rent, damaged, under_repair, beyond_repair,
		       average_cost, total_value, reorder_point, maximum_stock,
		       created_at, updated_at, created_by, updated_by, is_active, version
		FROM stock_levels WHERE is_active
	`)
	if err != nil {
		return nil, err
	}

	var out []stock.Level
	for _, lvl := range levels {
		if locationID != nil && lvl.LocationID != *locationID {
			continue
		}
		if lvl.IsLowStock() {
			out = append(out, lvl)
		}
	}
	return out, nil
}
