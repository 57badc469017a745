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
package txn

import (
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/audit"
	"github.com/kestrel-holdings/rentalcore/money"
	"github.com/kestrel-holdings/rentalcore/rcerr"
)

// Type enumerates spec.md §6's TransactionType.
type Type string

const (
	TypePurchase   Type = "PURCHASE"
	TypeSale       Type = "SALE"
	TypeRental     Type = "RENTAL"
	TypeReturn     Type = "RETURN"
	TypeAdjustment Type = "ADJUSTMENT"
	TypeTransfer   Type = "TRANSFER"
)

// Prefix returns the §6 transaction-number type prefix.
func (t Type) Prefix() string {
	switch t {
	case TypePurchase:
		return "PUR"
	case TypeSale:
		return "SAL"
	case TypeRental:
		return "RNT"
	case TypeReturn:
		return "RET"
	case TypeAdjustment:
		return "ADJ"
	case TypeTransfer:
		return "TRF"
	}
	return "UNK"
}

// Status enumerates spec.md §6's TransactionStatus.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusOnHold     Status = "ON_HOLD"
)

// PaymentStatus enumerates spec.md §6's PaymentStatus.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// RentalStatus enumerates spec.md §6's header-level RentalStatus.
type RentalStatus string

const (
	RentalInProgress        RentalStatus = "RENTAL_INPROGRESS"
	RentalExtended          RentalStatus = "RENTAL_EXTENDED"
	RentalPartialReturn     RentalStatus = "RENTAL_PARTIAL_RETURN"
	RentalLate              RentalStatus = "RENTAL_LATE"
	RentalLatePartialReturn RentalStatus = "RENTAL_LATE_PARTIAL_RETURN"
	RentalCompleted         RentalStatus = "RENTAL_COMPLETED"
)

// Header is the top-level record of one business event.
type Header struct {
	ID                uuid.UUID
	TransactionNumber string
	Type              Type
	Status            Status
	CustomerID        *uuid.UUID
	SupplierID        *uuid.UUID
	LocationID        uuid.UUID

	Subtotal   money.Money
	Discount   money.Money
	Tax        money.Money
	Shipping   money.Money
	Other      money.Money
	Total      money.Money
	Paid       money.Money
	PaymentStatus PaymentStatus

	RentalStartDate    *time.Time
	RentalEndDate      *time.Time
	CurrentRentalStatus *RentalStatus

	TotalLateFees   money.Money
	TotalDamageFees money.Money
	TotalOtherFees  money.Money

	audit.Fields
	DeletedAt *time.Time
	DeletedBy *uuid.UUID
}

// BalanceDue is total - paid.
func (h Header) BalanceDue() money.Money { return h.Total.Sub(h.Paid) }

// IsPaid reports whether the balance is settled.
func (h Header) IsPaid() bool { return !h.BalanceDue().IsPositive() }

// TotalFees sums the three fee buckets.
func (h Header) TotalFees() money.Money {
	return h.TotalLateFees.Add(h.TotalDamageFees).Add(h.TotalOtherFees)
}

// RecomputeTotals implements spec.md §4.7's header-totals recomputation,
// run whenever lines change.
func (h Header) RecomputeTotals(lines []Line) Header {
	next := h
	subtotal := money.Zero
	lineDiscount := money.Zero
	tax := money.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(l.Quantity.Decimal()))
		lineDiscount = lineDiscount.Add(l.DiscountAmount)
		tax = tax.Add(l.TaxAmount)
	}
	next.Subtotal = subtotal
	next.Discount = lineDiscount.Add(h.Discount)
	next.Tax = tax
	next.Total = subtotal.Sub(next.Discount).Add(tax).Add(h.Shipping).Add(h.Other)
	return next
}

// AggregateRentalStatus implements spec.md §4.7's bottom-up rule list.
func AggregateRentalStatus(lines []Line) RentalStatus {
	var anyLate, anyLatePartial, anyPartial, anyExtended, anyCompleted, anyPending bool
	for _, l := range lines {
		switch l.CurrentRentalStatus {
		case LineLate:
			anyLate = true
		case LineLatePartialReturn:
			anyLatePartial = true
		case LinePartialReturn, LineDamaged:
			// an all-damaged line is neither fully settled nor late; it
			// rolls up the same way a partial return does (spec.md §4.7
			// doesn't name DAMAGED explicitly, so it takes the nearest
			// unsettled bucket).
			anyPartial = true
		case LineExtended:
			anyExtended = true
		case LineCompleted:
			anyCompleted = true
		default:
			anyPending = true
		}
	}

	switch {
	case anyLate || anyLatePartial:
		if anyLatePartial || anyPartial {
			return RentalLatePartialReturn
		}
		return RentalLate
	case anyPartial:
		return RentalPartialReturn
	case anyExtended:
		return RentalExtended
	case anyCompleted && !anyPending:
		return RentalCompleted
	default:
		return RentalInProgress
	}
}

// ApplyPayment implements spec.md §4.7's payment-state machine:
// PENDING -> PARTIAL (on first non-zero payment with balance>0) -> PAID
// (balance<=0); REFUNDED/FAILED are terminal, admin-only transitions.
func (h Header) ApplyPayment(amount money.Money, allowOverpayment bool, now time.Time) (Header, error) {
	if !amount.IsPositive() {
		return Header{}, rcerr.Validation("amount", "must be positive")
	}
	if !allowOverpayment && amount.GreaterThan(h.BalanceDue()) {
		return Header{}, rcerr.Validation("amount", "exceeds balance due")
	}
	if h.PaymentStatus == PaymentRefunded || h.PaymentStatus == PaymentFailed {
		return Header{}, rcerr.IllegalStateTransition("payment_status", string(h.PaymentStatus), string(PaymentPartial))
	}

	next := h
	next.Paid = next.Paid.Add(amount)
	switch {
	case next.IsPaid():
		next.PaymentStatus = PaymentPaid
	case next.Paid.IsPositive():
		next.PaymentStatus = PaymentPartial
	default:
		next.PaymentStatus = PaymentPending
	}
	return next, nil
}

// SoftDelete flips is_active=false and stamps deleted_by/at.
func (h Header) SoftDelete(actor uuid.UUID, now time.Time) Header {
	next := h
	next.Fields = next.Fields.Deactivate(actor, now)
	next.DeletedAt = &now
	next.DeletedBy = &actor
	return next
}
