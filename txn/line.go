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

// Package txn implements the Transaction Header/Line Aggregate (C7):
// totals, payment-state transitions, and rental-status aggregation.
package txn

import (
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/catalog"
	"github.com/kestrel-holdings/rentalcore/money"
)

// LineRentalStatus enumerates the per-line status values spec.md §4.7
// aggregates bottom-up into a header RentalStatus.
type LineRentalStatus string

const (
	LineInProgress        LineRentalStatus = "INPROGRESS"
	LineExtended          LineRentalStatus = "EXTENDED"
	LinePartialReturn     LineRentalStatus = "PARTIAL_RETURN"
	LineLate              LineRentalStatus = "LATE"
	LineLatePartialReturn LineRentalStatus = "LATE_PARTIAL_RETURN"
	LineCompleted         LineRentalStatus = "COMPLETED"
	LineDamaged           LineRentalStatus = "DAMAGED"
)

// Line is a child row of a Header, ordered by LineNumber.
type Line struct {
	ID                  uuid.UUID
	TransactionHeaderID uuid.UUID
	LineNumber          int
	ItemID              uuid.UUID

	Quantity       money.Quantity
	UnitPrice      money.Money
	DiscountAmount money.Money
	TaxRate        money.Rate
	TaxAmount      money.Money
	LineTotal      money.Money

	RentalPeriod        catalog.RentalPeriod
	RentalPeriodCount   int
	RentalStart         *time.Time
	RentalEnd           *time.Time
	ReturnedQuantity    money.Quantity
	CurrentRentalStatus LineRentalStatus

	Notes string
}

// rentalPeriodMultiplier resolves open question 1 (SPEC_FULL.md §9): when
// both RentalStart and RentalEnd are set, the multiplier is derived from
// the elapsed duration in RentalPeriod units; otherwise it falls back to
// the caller-supplied RentalPeriodCount.
func (l Line) rentalPeriodMultiplier() int64 {
	if l.RentalStart == nil || l.RentalEnd == nil {
		if l.RentalPeriodCount > 0 {
			return int64(l.RentalPeriodCount)
		}
		return 1
	}

	elapsed := l.RentalEnd.Sub(*l.RentalStart)
	var unit time.Duration
	switch l.RentalPeriod {
	case catalog.PeriodHourly:
		unit = time.Hour
	case catalog.PeriodWeekly:
		unit = 7 * 24 * time.Hour
	case catalog.PeriodMonthly:
		unit = 30 * 24 * time.Hour
	default:
		unit = 24 * time.Hour
	}

	periods := int64(elapsed / unit)
	if elapsed%unit != 0 {
		periods++
	}
	if periods < 1 {
		periods = 1
	}
	return periods
}

// ComputeTotal implements spec.md §3's line_total invariant:
// line_total = round((quantity * unit_price - discount_amount + tax_amount) * rental_period_multiplier, 2).
func (l Line) ComputeTotal() money.Money {
	base := l.UnitPrice.Mul(l.Quantity.Decimal()).Sub(l.DiscountAmount).Add(l.TaxAmount)
	multiplier := l.rentalPeriodMultiplier()
	if multiplier <= 1 {
		return base
	}
	return base.Mul(money.QuantityFromInt(multiplier).Decimal())
}

// AppendNote is the supplemented free-text audit trail (SPEC_FULL.md §9):
// every note is timestamped and appended, never overwritten.
func (l Line) AppendNote(text string, now time.Time) Line {
	next := l
	entry := now.UTC().Format(time.RFC3339) + ": " + text
	if next.Notes == "" {
		next.Notes = entry
	} else {
		next.Notes = next.Notes + "\n" + entry
	}
	return next
}
