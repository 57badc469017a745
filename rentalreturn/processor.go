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

// Package rentalreturn implements the Rental-Return Processor (C9): the
// mixed-condition per-line return algorithm, damage-assessment capture,
// and financial-impact computation.
package rentalreturn

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kestrel-holdings/rentalcore/catalog"
	"github.com/kestrel-holdings/rentalcore/money"
	"github.com/kestrel-holdings/rentalcore/rcerr"
	"github.com/kestrel-holdings/rentalcore/stock"
	"github.com/kestrel-holdings/rentalcore/txn"
	"github.com/kestrel-holdings/rentalcore/unit"
)

// DamageAssessment is the supplemented per-damage-detail-group record
// (SPEC_FULL.md §9): damage_type/severity/estimated_repair_cost plus a
// derived repair_feasible flag.
type DamageAssessment struct {
	ID                   uuid.UUID
	TransactionLineID    uuid.UUID
	DamageType           string
	DamageSeverity       string
	EstimatedRepairCost  money.Money
	RepairFeasible       bool
	Serials              []string
	RecordedAt           time.Time
}

// NewDamageAssessment derives RepairFeasible as severity != BEYOND_REPAIR,
// matching the original implementation (SPEC_FULL.md §9).
func NewDamageAssessment(lineID uuid.UUID, damageType, severity string, estimatedRepairCost money.Money, serials []string, now time.Time) DamageAssessment {
	return DamageAssessment{
		ID:                  uuid.New(),
		TransactionLineID:   lineID,
		DamageType:          damageType,
		DamageSeverity:      severity,
		EstimatedRepairCost: estimatedRepairCost,
		RepairFeasible:      severity != "BEYOND_REPAIR",
		Serials:             serials,
		RecordedAt:          now,
	}
}

// ReturnBucketsInput is one line's return split, per spec.md §4.9.
type ReturnBucketsInput struct {
	LineID       uuid.UUID
	ItemID       uuid.UUID
	LocationID   uuid.UUID
	Good         money.Quantity
	Damaged      money.Quantity
	BeyondRepair money.Quantity
	Lost         money.Quantity

	SerializedGoodUnits         []uuid.UUID
	SerializedDamagedUnits      []uuid.UUID
	SerializedBeyondRepairUnits []uuid.UUID
	SerializedLostUnits         []uuid.UUID

	DamageDetails  []DamageInput
	DamagePenalty  money.Money
}

// DamageInput is caller-supplied damage detail for one damage group.
type DamageInput struct {
	DamageType          string
	DamageSeverity      string
	EstimatedRepairCost money.Money
	Serials             []string
}

func (b ReturnBucketsInput) total() money.Quantity {
	return b.Good.Add(b.Damaged).Add(b.BeyondRepair).Add(b.Lost)
}

// FinancialImpact is returned to the caller per spec.md §4.9.
type FinancialImpact struct {
	DepositHeld   money.Money
	LateFee       money.Money
	DamagePenalty money.Money
	OtherFees     money.Money
	TotalFees     money.Money
	Refund        money.Money
}

// Processor orchestrates the per-line return algorithm.
type Processor struct {
	inventory stockMutator
	stock     *stock.Repository
	units     *unit.Repository
	items     *catalog.Repository
	txns      *txn.Repository
}

// stockMutator is the narrow subset of inventory.Service the processor
// needs, named locally to avoid an import cycle (inventory depends on
// stock/unit, not on rentalreturn).
type stockMutator interface {
	ReturnFromRent(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, b stock.ReturnBuckets, transactionHeaderID, transactionLineID, actor uuid.UUID, now time.Time) (*stock.Level, error)
}

func NewProcessor(inv stockMutator, stockRepo *stock.Repository, units *unit.Repository, items *catalog.Repository, txns *txn.Repository) *Processor {
	return &Processor{inventory: inv, stock: stockRepo, units: units, items: items, txns: txns}
}

// ProcessReturn runs the §4.9 algorithm for every line in one rental
// return, aggregates the header rental status per §4.7, and returns the
// computed financial impact. perDayLateFeeRate is the item's configured
// late-fee rate; depositHeld is the rental's held security deposit.
func (p *Processor) ProcessReturn(ctx context.Context, tx pgx.Tx, header *txn.Header, lines []txn.Line, returns []ReturnBucketsInput, returnDate time.Time, perDayLateFeeRate money.Money, depositHeld money.Money, actor uuid.UUID, now time.Time) (FinancialImpact, []DamageAssessment, error) {
	lineByID := make(map[uuid.UUID]*txn.Line, len(lines))
	for i := range lines {
		lineByID[lines[i].ID] = &lines[i]
	}

	var assessments []DamageAssessment
	var lateFee, damageFee, otherFee money.Money

	for _, rb := range returns {
		line, ok := lineByID[rb.LineID]
		if !ok {
			return FinancialImpact{}, nil, rcerr.NotFound("transaction_line", rb.LineID.String())
		}

		total := rb.total()
		if line.ReturnedQuantity.Add(total).GreaterThan(line.Quantity) {
			return FinancialImpact{}, nil, rcerr.Validation("total_return_quantity", "exceeds remaining line quantity")
		}

		isLate := returnDate.After(*line.RentalEnd)
		newStatus := lineReturnStatus(rb, line, total, isLate)

		levelBefore, err := p.snapshotAvailable(ctx, tx, rb.ItemID, rb.LocationID)
		if err != nil {
			return FinancialImpact{}, nil, err
		}

		buckets := stock.ReturnBuckets{Good: rb.Good, Damaged: rb.Damaged, BeyondRepair: rb.BeyondRepair, Lost: rb.Lost}
		levelAfter, err := p.inventory.ReturnFromRent(ctx, tx, rb.ItemID, rb.LocationID, buckets, header.ID, line.ID, actor, now)
		if err != nil {
			return FinancialImpact{}, nil, err
		}

		// Hard requirement (spec.md §4.9): re-read and assert the delta to
		// available equals only the good quantity.
		if !levelAfter.Available.Sub(levelBefore).Equal(rb.Good) {
			return FinancialImpact{}, nil, rcerr.InventoryConsistency("return inflated available beyond the good quantity")
		}

		if err := p.transitionSerializedUnits(ctx, tx, rb, actor, now); err != nil {
			return FinancialImpact{}, nil, err
		}

		for _, d := range rb.DamageDetails {
			assessments = append(assessments, NewDamageAssessment(line.ID, d.DamageType, d.DamageSeverity, d.EstimatedRepairCost, d.Serials, now))
		}

		line.ReturnedQuantity = line.ReturnedQuantity.Add(total)
		line.CurrentRentalStatus = newStatus
		if err := p.txns.UpdateLine(ctx, tx, line); err != nil {
			return FinancialImpact{}, nil, err
		}

		if isLate {
			daysLate := int64(returnDate.Sub(*line.RentalEnd).Hours()/24) + 1
			lateFee = lateFee.Add(perDayLateFeeRate.Mul(money.QuantityFromInt(daysLate).Decimal()).Mul(total.Decimal()))
		}
		damageFee = damageFee.Add(rb.DamagePenalty)

		if rb.Lost.IsPositive() {
			item, err := p.items.ItemByID(ctx, tx, rb.ItemID)
			if err != nil {
				return FinancialImpact{}, nil, err
			}
			otherFee = otherFee.Add(item.PurchasePrice.Mul(rb.Lost.Decimal()))
		}
	}

	header.CurrentRentalStatus = ptrRentalStatus(txn.AggregateRentalStatus(lines))
	header.TotalLateFees = header.TotalLateFees.Add(lateFee)
	header.TotalDamageFees = header.TotalDamageFees.Add(damageFee)
	header.TotalOtherFees = header.TotalOtherFees.Add(otherFee)

	totalFees := lateFee.Add(damageFee).Add(otherFee)
	impact := FinancialImpact{
		DepositHeld:   depositHeld,
		LateFee:       lateFee,
		DamagePenalty: damageFee,
		OtherFees:     otherFee,
		TotalFees:     totalFees,
		Refund:        money.MaxZero(depositHeld.Sub(totalFees)),
	}

	return impact, assessments, nil
}

func ptrRentalStatus(s txn.RentalStatus) *txn.RentalStatus { return &s }

// lineReturnStatus implements spec.md §4.9 step 2: good-only and fully
// returned closes the line (LATE if past rental_end_date); any good items
// short of the full quantity is a partial return (LATE_PARTIAL_RETURN if
// late); no good items at all in this batch marks the line DAMAGED.
func lineReturnStatus(rb ReturnBucketsInput, line *txn.Line, total money.Quantity, isLate bool) txn.LineRentalStatus {
	fullyReturned := line.ReturnedQuantity.Add(total).GreaterThanOrEqual(line.Quantity)
	allDamaged := total.IsPositive() && rb.Good.IsZero()

	switch {
	case allDamaged:
		return txn.LineDamaged
	case fullyReturned && isLate:
		return txn.LineLate
	case fullyReturned:
		return txn.LineCompleted
	case isLate:
		return txn.LineLatePartialReturn
	default:
		return txn.LinePartialReturn
	}
}

func (p *Processor) snapshotAvailable(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID) (money.Quantity, error) {
	// Uses the same lock the mutator takes, so "before" reflects the value
	// the mutation will actually start from. ReturnFromRent re-acquires
	// the same row lock afterward, which is idempotent (Postgres FOR
	// UPDATE allows re-locking by the same transaction).
	lvl, err := p.stock.LockByItemLocation(ctx, tx, itemID, locationID)
	if err != nil {
		return money.ZeroQuantity, err
	}
	if lvl == nil {
		return money.ZeroQuantity, rcerr.NotFound("stock_level", itemID.String()+"/"+locationID.String())
	}
	return lvl.Available, nil
}

func (p *Processor) transitionSerializedUnits(ctx context.Context, tx pgx.Tx, rb ReturnBucketsInput, actor uuid.UUID, now time.Time) error {
	transition := func(ids []uuid.UUID, to unit.Status, condition unit.Condition) error {
		for _, id := range ids {
			u, err := p.units.LockByID(ctx, tx, id)
			if err != nil {
				return err
			}
			next, err := u.Transition(to, condition, actor, now)
			if err != nil {
				return err
			}
			if err := p.units.Update(ctx, tx, &next); err != nil {
				return err
			}
		}
		return nil
	}

	if err := transition(rb.SerializedGoodUnits, unit.Available, unit.Good); err != nil {
		return err
	}
	if err := transition(rb.SerializedDamagedUnits, unit.Damaged, unit.ConditionDamaged); err != nil {
		return err
	}
	if err := transition(rb.SerializedBeyondRepairUnits, unit.BeyondRepair, unit.ConditionDamaged); err != nil {
		return err
	}
	if err := transition(rb.SerializedLostUnits, unit.Lost, ""); err != nil {
		return err
	}
	return nil
}
