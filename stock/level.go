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

// Package stock implements the per-(item,location) stock-level aggregate
// (C4): six quantity buckets and the mutators that keep them consistent.
package stock

import (
	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/audit"
	"github.com/kestrel-holdings/rentalcore/ledger"
	"github.com/kestrel-holdings/rentalcore/money"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

// Status is the derived stock_status of a level.
type Status string

const (
	OutOfStock Status = "OUT_OF_STOCK"
	LowStock   Status = "LOW_STOCK"
	Overstocked Status = "OVERSTOCKED"
	InStock    Status = "IN_STOCK"
)

// Level is the (item_id, location_id) aggregate. Every mutator below is a
// pure function over an owned record (spec.md §9): it neither locks nor
// persists — Repository does both around a call into these methods.
type Level struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	LocationID uuid.UUID

	Available    money.Quantity
	Reserved     money.Quantity
	OnRent       money.Quantity
	Damaged      money.Quantity
	UnderRepair  money.Quantity
	BeyondRepair money.Quantity

	AverageCost money.Money
	TotalValue  money.Money

	ReorderPoint  money.Quantity
	MaximumStock  money.Quantity

	audit.Fields
}

// OnHand is the sum of all six buckets (spec.md §3 invariant).
func (l Level) OnHand() money.Quantity {
	return l.Available.Add(l.Reserved).Add(l.OnRent).Add(l.Damaged).Add(l.UnderRepair).Add(l.BeyondRepair)
}

// Status derives the stock_status field.
func (l Level) Status() Status {
	onHand := l.OnHand()
	switch {
	case onHand.IsZero():
		return OutOfStock
	case l.Available.LessThanOrEqual(l.ReorderPoint):
		return LowStock
	case l.MaximumStock.IsPositive() && onHand.GreaterThan(l.MaximumStock):
		return Overstocked
	default:
		return InStock
	}
}

// CanFulfillOrder is a read-only derived query.
func (l Level) CanFulfillOrder(qty money.Quantity) bool {
	return l.Available.GreaterThanOrEqual(qty)
}

// IsLowStock is a read-only derived query.
func (l Level) IsLowStock() bool { return l.Status() == LowStock }

// UtilizationRate is on_rent / on_hand, or zero when on_hand is zero.
func (l Level) UtilizationRate() float64 {
	onHand := l.OnHand()
	if onHand.IsZero() {
		return 0
	}
	oh, _ := onHand.Decimal().Float64()
	or, _ := l.OnRent.Decimal().Float64()
	return or / oh
}

// AvailabilityRate is available / on_hand, or zero when on_hand is zero.
func (l Level) AvailabilityRate() float64 {
	onHand := l.OnHand()
	if onHand.IsZero() {
		return 0
	}
	oh, _ := onHand.Decimal().Float64()
	av, _ := l.Available.Decimal().Float64()
	return av / oh
}

// Mutation bundles the post-mutation Level and the Movement the caller
// must append in the same transaction.
type Mutation struct {
	Level    Level
	Movement ledger.Movement
}

func (l Level) snapshot(mtype ledger.MovementType, delta money.Quantity) ledger.Movement {
	return ledger.Movement{
		StockLevelID:   l.ID,
		ItemID:         l.ItemID,
		LocationID:     l.LocationID,
		MovementType:   mtype,
		Category:       ledger.CategoryInventory,
		QuantityChange: delta,
		QuantityBefore: l.OnHand(),
	}
}

// Adjust implements spec.md §4.4 adjust(delta, affect_available).
func (l Level) Adjust(delta money.Quantity, affectAvailable bool, reason string) (Mutation, error) {
	onHand := l.OnHand()
	if onHand.Add(delta).IsNegative() {
		return Mutation{}, rcerr.InventoryConsistency("on_hand would go negative")
	}
	if affectAvailable {
		if l.Available.Add(delta).IsNegative() {
			return Mutation{}, rcerr.InventoryConsistency("available would go negative")
		}
	} else if l.Damaged.Add(delta).IsNegative() {
		return Mutation{}, rcerr.InventoryConsistency("damaged would go negative")
	}

	mtype := ledger.AdjustmentPositive
	if delta.IsNegative() {
		mtype = ledger.AdjustmentNegative
	}
	mv := l.snapshot(mtype, delta)
	mv.Reason = reason

	next := l
	if affectAvailable {
		next.Available = next.Available.Add(delta)
	} else {
		// delta lands on-hand without a bucket home only when the caller
		// is correcting damaged/under_repair/beyond_repair counts; the
		// service layer always specifies which bucket via a dedicated
		// method when that's the intent. A bare non-available adjust is
		// reserved for reconciling on_hand against a physical count by
		// nudging the damaged bucket, the least consequential one.
		next.Damaged = next.Damaged.Add(delta)
	}
	mv.QuantityAfter = next.OnHand()

	return Mutation{Level: next, Movement: mv}, nil
}

// Reserve implements spec.md §4.4 reserve(qty).
func (l Level) Reserve(qty money.Quantity, locationID string) (Mutation, error) {
	if !l.Available.GreaterThanOrEqual(qty) {
		return Mutation{}, rcerr.InsufficientStock(locationID, qty, l.Available)
	}
	mv := l.snapshot(ledger.Reservation, money.ZeroQuantity)
	next := l
	next.Available = next.Available.Sub(qty)
	next.Reserved = next.Reserved.Add(qty)
	mv.QuantityAfter = next.OnHand()
	return Mutation{Level: next, Movement: mv}, nil
}

// ReleaseReserve implements spec.md §4.4 release_reserve(qty).
func (l Level) ReleaseReserve(qty money.Quantity) (Mutation, error) {
	if !l.Reserved.GreaterThanOrEqual(qty) {
		return Mutation{}, rcerr.InventoryConsistency("reserved would go negative")
	}
	mv := l.snapshot(ledger.ReservationRelease, money.ZeroQuantity)
	next := l
	next.Reserved = next.Reserved.Sub(qty)
	next.Available = next.Available.Add(qty)
	mv.QuantityAfter = next.OnHand()
	return Mutation{Level: next, Movement: mv}, nil
}

// RentOut implements spec.md §4.4 rent_out(qty).
func (l Level) RentOut(qty money.Quantity, locationID string) (Mutation, error) {
	if !l.Available.GreaterThanOrEqual(qty) {
		return Mutation{}, rcerr.InsufficientStock(locationID, qty, l.Available)
	}
	mv := l.snapshot(ledger.RentalOut, qty.Neg())
	next := l
	next.Available = next.Available.Sub(qty)
	next.OnRent = next.OnRent.Add(qty)
	mv.QuantityAfter = next.OnHand()
	return Mutation{Level: next, Movement: mv}, nil
}

// ReturnBuckets splits a rental return's total quantity across the four
// outcome buckets (spec.md §4.4/§4.9).
type ReturnBuckets struct {
	Good         money.Quantity
	Damaged      money.Quantity
	BeyondRepair money.Quantity
	Lost         money.Quantity
}

func (b ReturnBuckets) total() money.Quantity {
	return b.Good.Add(b.Damaged).Add(b.BeyondRepair).Add(b.Lost)
}

// ReturnFromRent implements spec.md §4.4 return_from_rent. This is the
// one mutator the hard damaged-item-routing requirement (§4.4, §4.9)
// binds: damaged and beyond_repair quantities are only ever added to
// their own buckets, never to available. average_cost is deliberately
// left untouched (§9 open-question resolution 4: returns never call
// update_average_cost).
func (l Level) ReturnFromRent(b ReturnBuckets) (Mutation, error) {
	total := b.total()
	if !l.OnRent.GreaterThanOrEqual(total) {
		return Mutation{}, rcerr.InventoryConsistency("on_rent would go negative")
	}

	mtype := ledger.RentalReturn
	switch {
	case b.Damaged.IsPositive() || b.BeyondRepair.IsPositive():
		if b.Good.IsPositive() {
			mtype = ledger.RentalReturnMixed
		} else {
			mtype = ledger.RentalReturnDamaged
		}
	}

	// on_hand net change is -lost: good/damaged/beyond_repair move from
	// on_rent into their own buckets (no net on_hand effect) while lost
	// quantity leaves on_hand entirely (spec.md §4.4).
	mv := l.snapshot(mtype, b.Lost.Neg())

	next := l
	next.OnRent = next.OnRent.Sub(total)
	next.Available = next.Available.Add(b.Good)
	next.Damaged = next.Damaged.Add(b.Damaged)
	next.BeyondRepair = next.BeyondRepair.Add(b.BeyondRepair)
	// lost quantity leaves on_hand: it was already subtracted out of
	// on_rent above and added to no other bucket.

	mv.QuantityAfter = next.OnHand()

	return Mutation{Level: next, Movement: mv}, nil
}

// Consume implements the sale leg's "reserve + immediate consume" step
// (spec.md §4.8): qty leaves both reserved and on_hand entirely, for stock
// that was just reserved for a sale line and is now handed to the buyer.
func (l Level) Consume(qty money.Quantity, locationID string) (Mutation, error) {
	if !l.Reserved.GreaterThanOrEqual(qty) {
		return Mutation{}, rcerr.InsufficientStock(locationID, qty, l.Reserved)
	}
	mv := l.snapshot(ledger.Sale, qty.Neg())
	next := l
	next.Reserved = next.Reserved.Sub(qty)
	mv.QuantityAfter = next.OnHand()
	return Mutation{Level: next, Movement: mv}, nil
}

// TransferOut implements spec.md §4.4 transfer_out(qty).
func (l Level) TransferOut(qty money.Quantity, reason string, locationID string) (Mutation, error) {
	if !l.Available.GreaterThanOrEqual(qty) {
		return Mutation{}, rcerr.InsufficientStock(locationID, qty, l.Available)
	}
	mv := l.snapshot(ledger.TransferOut, qty.Neg())
	mv.Reason = reason
	next := l
	next.Available = next.Available.Sub(qty)
	mv.QuantityAfter = next.OnHand()
	return Mutation{Level: next, Movement: mv}, nil
}

// TransferIn implements spec.md §4.4 transfer_in(qty).
func (l Level) TransferIn(qty money.Quantity, reason string) (Mutation, error) {
	mv := l.snapshot(ledger.TransferIn, qty)
	mv.Reason = reason
	next := l
	next.Available = next.Available.Add(qty)
	mv.QuantityAfter = next.OnHand()
	return Mutation{Level: next, Movement: mv}, nil
}

// UpdateAverageCost implements spec.md §4.4 update_average_cost. It emits
// no movement — it only updates cost metadata.
func (l Level) UpdateAverageCost(newQty money.Quantity, newCost money.Money) Level {
	onHand := l.OnHand()
	combinedQty := onHand.Add(newQty)

	next := l
	if combinedQty.IsZero() {
		next.AverageCost = newCost
	} else {
		weighted := l.AverageCost.Mul(onHand.Decimal()).Add(newCost.Mul(newQty.Decimal()))
		next.AverageCost = money.NewMoney(weighted.Decimal().Div(combinedQty.Decimal()))
	}
	next.TotalValue = next.AverageCost.Mul(next.OnHand().Decimal())
	return next
}
