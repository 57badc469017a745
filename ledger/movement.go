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

// Package ledger implements the append-only stock-movement ledger (C3):
// the system of record for every quantity change.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/money"
)

// MovementType enumerates the boundary-stable movement kinds from
// spec.md §6.
type MovementType string

const (
	Purchase             MovementType = "PURCHASE"
	Sale                 MovementType = "SALE"
	RentalOut            MovementType = "RENTAL_OUT"
	RentalReturn         MovementType = "RENTAL_RETURN"
	RentalReturnDamaged  MovementType = "RENTAL_RETURN_DAMAGED"
	RentalReturnMixed    MovementType = "RENTAL_RETURN_MIXED"
	AdjustmentPositive   MovementType = "ADJUSTMENT_POSITIVE"
	AdjustmentNegative   MovementType = "ADJUSTMENT_NEGATIVE"
	TransferIn           MovementType = "TRANSFER_IN"
	TransferOut          MovementType = "TRANSFER_OUT"
	Reservation          MovementType = "RESERVATION"
	ReservationRelease   MovementType = "RESERVATION_RELEASE"
)

func (t MovementType) IsValid() bool {
	switch t {
	case Purchase, Sale, RentalOut, RentalReturn, RentalReturnDamaged, RentalReturnMixed,
		AdjustmentPositive, AdjustmentNegative, TransferIn, TransferOut, Reservation, ReservationRelease:
		return true
	}
	return false
}

// Category groups movements for retention purposes (spec.md §4.3).
type Category string

const (
	CategoryInventory Category = "INVENTORY"
	CategoryError     Category = "ERROR"
)

// Movement is one immutable ledger row. Never updated or deleted by
// business code once inserted — only a retention job (PurgeOlderThan)
// ever removes rows, and only by age.
type Movement struct {
	ID                 uuid.UUID
	StockLevelID       uuid.UUID
	ItemID             uuid.UUID
	LocationID         uuid.UUID
	MovementType       MovementType
	Category           Category
	QuantityChange     money.Quantity
	QuantityBefore     money.Quantity
	QuantityAfter      money.Quantity
	TransactionHeaderID uuid.UUID
	TransactionLineID  uuid.UUID
	UnitCost           *money.Money
	Reason             string
	Notes              string
	ApprovedBy         *uuid.UUID
	PerformedBy        uuid.UUID
	CreatedAt          time.Time
}

// Consistent reports the per-movement invariant from spec.md §3:
// quantity_after = quantity_before + quantity_change.
func (m Movement) Consistent() bool {
	return m.QuantityAfter.Equal(m.QuantityBefore.Add(m.QuantityChange))
}
