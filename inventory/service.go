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

// Package inventory implements the Inventory Service (C6): the composite
// operations that orchestrate the stock-level aggregate, inventory-unit
// state machine, and movement ledger under one database transaction.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kestrel-holdings/rentalcore/catalog"
	"github.com/kestrel-holdings/rentalcore/ledger"
	"github.com/kestrel-holdings/rentalcore/money"
	"github.com/kestrel-holdings/rentalcore/rcerr"
	"github.com/kestrel-holdings/rentalcore/stock"
	"github.com/kestrel-holdings/rentalcore/unit"
)

// Service orchestrates C2-C5 for receipts, checkouts, returns, transfers,
// and adjustments. Every exported method runs in its own transaction
// unless a tx is supplied, matching spec.md §4.6's "each runs in a single
// database transaction".
type Service struct {
	pool    *pgxpool.Pool
	stock   *stock.Repository
	units   *unit.Repository
	ledger  *ledger.Repository
	catalog *catalog.Repository
}

func NewService(pool *pgxpool.Pool, stockRepo *stock.Repository, unitRepo *unit.Repository, ledgerRepo *ledger.Repository, catalogRepo *catalog.Repository) *Service {
	return &Service{pool: pool, stock: stockRepo, units: unitRepo, ledger: ledgerRepo, catalog: catalogRepo}
}

// withTx runs fn in tx when one is supplied (a composite caller like C8
// already holds one), otherwise begins its own.
func (s *Service) withTx(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	return runTx(ctx, s.pool, fn)
}

func runTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	begun, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = begun.Rollback(ctx) }()
	if err := fn(begun); err != nil {
		return err
	}
	return begun.Commit(ctx)
}

// InitializeStockLevel implements spec.md §4.6 item 1: get-or-create the
// level; if new and initialQty > 0, adjust positively.
func (s *Service) InitializeStockLevel(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, initialQty, reorderPoint, maxStock money.Quantity, actor uuid.UUID, now time.Time) (*stock.Level, error) {
	var result *stock.Level
	err := s.withTx(ctx, tx, func(t pgx.Tx) error {
		lvl, created, err := s.stock.GetOrCreate(ctx, t, itemID, locationID, actor, now)
		if err != nil {
			return err
		}

		if created {
			lvl.ReorderPoint = reorderPoint
			lvl.MaximumStock = maxStock

			if initialQty.IsPositive() {
				mut, err := lvl.Adjust(initialQty, true, "Initial stock setup")
				if err != nil {
					return err
				}
				if err := s.stock.Apply(ctx, t, mut, uuid.Nil, uuid.Nil, actor, now); err != nil {
					return err
				}
				*lvl = mut.Level
			} else if err := s.stock.Persist(ctx, t, lvl, actor, now); err != nil {
				return err
			}
		}
		result = lvl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReceiveUnitsInput bundles spec.md §4.6 item 2's parameters.
type ReceiveUnitsInput struct {
	ItemID     uuid.UUID
	LocationID uuid.UUID
	Quantity   money.Quantity
	UnitCost   money.Money
	Serials    []string
	BatchCode  string
	SupplierID uuid.UUID
	PONumber   string
}

// ReceiveUnits creates qty new AVAILABLE/GOOD units, adjusts the stock
// level up by qty, and updates average cost with the new lot.
// transactionHeaderID/transactionLineID tag the resulting movement so it
// can be traced back to the purchase that caused it.
func (s *Service) ReceiveUnits(ctx context.Context, tx pgx.Tx, in ReceiveUnitsInput, transactionHeaderID, transactionLineID, actor uuid.UUID, now time.Time) ([]unit.Unit, *stock.Level, error) {
	count := in.Quantity.AsInt64()
	if count <= 0 {
		return nil, nil, rcerr.Validation("quantity", "must be positive")
	}
	if len(in.Serials) > 0 && int64(len(in.Serials)) != count {
		return nil, nil, rcerr.Validation("serials", "count must equal quantity")
	}

	var units []unit.Unit
	var level *stock.Level

	err := s.withTx(ctx, tx, func(t pgx.Tx) error {
		newUnits := make([]unit.Unit, count)
		for i := range newUnits {
			serial := ""
			if len(in.Serials) > 0 {
				serial = in.Serials[i]
			}
			newUnits[i] = unit.Unit{
				ID:            uuid.New(),
				ItemID:        in.ItemID,
				LocationID:    in.LocationID,
				SerialNumber:  serial,
				BatchCode:     in.BatchCode,
				Status:        unit.Available,
				Condition:     unit.Good,
				PurchasePrice: in.UnitCost,
			}
		}
		if err := s.units.Create(ctx, t, newUnits, actor, now); err != nil {
			return err
		}
		units = newUnits

		lvl, _, err := s.stock.GetOrCreate(ctx, t, in.ItemID, in.LocationID, actor, now)
		if err != nil {
			return err
		}

		mut, err := lvl.Adjust(in.Quantity, true, "Received "+in.PONumber)
		if err != nil {
			return err
		}
		if err := s.stock.Apply(ctx, t, mut, transactionHeaderID, transactionLineID, actor, now); err != nil {
			return err
		}

		// Weight the new lot against the on-hand quantity from before the
		// receipt; the total value covers the on-hand quantity after it.
		costed := lvl.UpdateAverageCost(in.Quantity, in.UnitCost)
		withCost := mut.Level
		withCost.AverageCost = costed.AverageCost
		withCost.TotalValue = costed.AverageCost.Mul(withCost.OnHand().Decimal())
		if err := s.stock.Persist(ctx, t, &withCost, actor, now); err != nil {
			return err
		}
		level = &withCost
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return units, level, nil
}

// CheckoutForRentalResult reports the units moved and the resulting
// level, for C8/C9 callers to persist onto their own records.
type CheckoutForRentalResult struct {
	Units []unit.Unit
	Level stock.Level
}

// CheckoutForRental implements spec.md §4.6 item 3.
// transactionHeaderID/transactionLineID tag the resulting movement so it
// can be traced back to the rental that caused it.
func (s *Service) CheckoutForRental(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, qty money.Quantity, transactionHeaderID, transactionLineID, actor uuid.UUID, now time.Time) (*CheckoutForRentalResult, error) {
	var result *CheckoutForRentalResult

	err := s.withTx(ctx, tx, func(t pgx.Tx) error {
		lvl, err := s.stock.LockByItemLocation(ctx, t, itemID, locationID)
		if err != nil {
			return err
		}
		if lvl == nil {
			return rcerr.InsufficientStock(locationID.String(), qty, money.ZeroQuantity)
		}
		if !lvl.CanFulfillOrder(qty) {
			return rcerr.InsufficientStock(locationID.String(), qty, lvl.Available)
		}

		want := qty.AsInt64()
		candidates, err := s.units.OldestAvailableForRental(ctx, t, itemID, locationID, int(want))
		if err != nil {
			return err
		}
		if int64(len(candidates)) < want {
			return rcerr.InsufficientUnits(itemID.String(), locationID.String(), want, int64(len(candidates)))
		}

		rented := make([]unit.Unit, len(candidates))
		for i, u := range candidates {
			next, err := u.Transition(unit.Rented, "", actor, now)
			if err != nil {
				return err
			}
			if err := s.units.Update(ctx, t, &next); err != nil {
				return err
			}
			rented[i] = next
		}

		mut, err := lvl.RentOut(qty, locationID.String())
		if err != nil {
			return err
		}
		if err := s.stock.Apply(ctx, t, mut, transactionHeaderID, transactionLineID, actor, now); err != nil {
			return err
		}

		result = &CheckoutForRentalResult{Units: rented, Level: mut.Level}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Adjust implements spec.md §4.6 item 6. When requiresApproval the
// emitted movement carries no approved_by, so reporting queries treat it
// as pending.
func (s *Service) Adjust(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, delta money.Quantity, affectAvailable bool, reason, notes string, requiresApproval bool, actor uuid.UUID, now time.Time) (*stock.Level, error) {
	var result *stock.Level

	err := s.withTx(ctx, tx, func(t pgx.Tx) error {
		lvl, err := s.stock.LockByItemLocation(ctx, t, itemID, locationID)
		if err != nil {
			return err
		}
		if lvl == nil {
			return rcerr.NotFound("stock_level", itemID.String()+"/"+locationID.String())
		}

		mut, err := lvl.Adjust(delta, affectAvailable, reason)
		if err != nil {
			return err
		}
		mut.Movement.Notes = notes
		if !requiresApproval {
			mut.Movement.ApprovedBy = &actor
		}

		if err := s.stock.Apply(ctx, t, mut, uuid.Nil, uuid.Nil, actor, now); err != nil {
			return err
		}
		result = &mut.Level
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
