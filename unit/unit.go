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

// Package unit implements the per-serial inventory-unit state machine
// (C5): status/condition transitions and rental eligibility.
package unit

import (
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/audit"
	"github.com/kestrel-holdings/rentalcore/money"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

// Status enumerates spec.md §6's InventoryUnitStatus.
type Status string

const (
	Available    Status = "AVAILABLE"
	Reserved     Status = "RESERVED"
	Rented       Status = "RENTED"
	UnderRepair  Status = "UNDER_REPAIR"
	Damaged      Status = "DAMAGED"
	BeyondRepair Status = "BEYOND_REPAIR"
	Sold         Status = "SOLD"
	Lost         Status = "LOST"
)

func (s Status) IsValid() bool {
	switch s {
	case Available, Reserved, Rented, UnderRepair, Damaged, BeyondRepair, Sold, Lost:
		return true
	}
	return false
}

// Condition enumerates spec.md §6's InventoryUnitCondition.
type Condition string

const (
	Excellent      Condition = "EXCELLENT"
	Good           Condition = "GOOD"
	Fair           Condition = "FAIR"
	Poor           Condition = "POOR"
	ConditionDamaged Condition = "DAMAGED"
)

func (c Condition) IsValid() bool {
	switch c {
	case Excellent, Good, Fair, Poor, ConditionDamaged:
		return true
	}
	return false
}

// allowedTransitions is the transition graph from spec.md §4.5.
var allowedTransitions = map[Status]map[Status]bool{
	Available:    {Reserved: true, Rented: true, Sold: true, UnderRepair: true, Damaged: true, Lost: true},
	Reserved:     {Available: true, Rented: true, Sold: true},
	Rented:       {Available: true, Damaged: true, BeyondRepair: true, Lost: true, UnderRepair: true},
	UnderRepair:  {Available: true, BeyondRepair: true},
	Damaged:      {UnderRepair: true, BeyondRepair: true, Available: true},
	BeyondRepair: {},
	Sold:         {},
	Lost:         {},
}

// CanTransition reports whether from -> to is allowed by the graph.
// DAMAGED -> AVAILABLE additionally requires a repair record per
// spec.md §4.5 ("only after repair record"); that precondition is
// enforced by Unit.Transition (it requires RepairedAt to be set), not by
// the graph itself.
func CanTransition(from, to Status) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// Unit is a single serialized asset.
type Unit struct {
	ID               uuid.UUID
	ItemID           uuid.UUID
	LocationID       uuid.UUID
	SKU              string
	SerialNumber     string
	BatchCode        string
	Status           Status
	Condition        Condition
	PurchasePrice    money.Money
	WarrantyExpiry   *time.Time
	NextMaintenance  *time.Time
	IsRentalBlocked  bool
	RepairedAt       *time.Time

	audit.Fields
}

// IsRentalEligible implements spec.md §4.5: a unit with
// is_rental_blocked=true or status outside AVAILABLE is ineligible.
func (u Unit) IsRentalEligible() bool {
	return u.Status == Available && !u.IsRentalBlocked
}

// Transition is a pure function over an owned record (spec.md §9): it
// validates the move against the graph and the DAMAGED->AVAILABLE repair
// precondition, then returns the updated unit. Callers lock the row,
// call Transition, and persist the result — mirroring stock.Level's
// mutator shape.
func (u Unit) Transition(to Status, newCondition Condition, actor uuid.UUID, now time.Time) (Unit, error) {
	if !CanTransition(u.Status, to) {
		return Unit{}, rcerr.IllegalStateTransition("inventory_unit", string(u.Status), string(to))
	}
	if u.Status == Damaged && to == Available && u.RepairedAt == nil {
		return Unit{}, rcerr.IllegalStateTransition("inventory_unit", string(u.Status), string(to)+" (no repair record)")
	}

	next := u
	next.Status = to
	if newCondition != "" {
		next.Condition = newCondition
	}
	next.Fields = next.Fields.Touch(actor, now)
	return next, nil
}

// RecordRepair stamps a repair record, satisfying the precondition for a
// later DAMAGED -> AVAILABLE transition.
func (u Unit) RecordRepair(now time.Time, actor uuid.UUID) Unit {
	next := u
	next.RepairedAt = &now
	next.Fields = next.Fields.Touch(actor, now)
	return next
}
