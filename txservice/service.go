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

// Package txservice implements the Transaction Service (C8): the three
// creation entry points (purchase, sale, rental) and payment application,
// each wrapping validation, number allocation, stock effects, and totals
// in one database transaction.
package txservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kestrel-holdings/rentalcore/audit"
	"github.com/kestrel-holdings/rentalcore/catalog"
	"github.com/kestrel-holdings/rentalcore/inventory"
	"github.com/kestrel-holdings/rentalcore/money"
	"github.com/kestrel-holdings/rentalcore/rcerr"
	"github.com/kestrel-holdings/rentalcore/stock"
	"github.com/kestrel-holdings/rentalcore/txn"
)

// Service orchestrates C6/C7 into the three transaction-creation entry
// points and payment application named in spec.md §4.8.
type Service struct {
	pool      *pgxpool.Pool
	catalog   *catalog.Repository
	stock     *stock.Repository
	inventory *inventory.Service
	txns      *txn.Repository
	numbering *txn.Numbering
}

func NewService(pool *pgxpool.Pool, catalogRepo *catalog.Repository, stockRepo *stock.Repository, inv *inventory.Service, txnRepo *txn.Repository, numbering *txn.Numbering) *Service {
	return &Service{pool: pool, catalog: catalogRepo, stock: stockRepo, inventory: inv, txns: txnRepo, numbering: numbering}
}

func (s *Service) runTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return rcerr.Database("txservice.Begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// LineInput is the caller-supplied shape of one line, shared across all
// three creation entry points; fields unused by a given transaction type
// are left zero.
type LineInput struct {
	ItemID            uuid.UUID
	Quantity          money.Quantity
	UnitPrice         money.Money
	DiscountAmount    money.Money
	TaxRate           money.Rate
	RentalPeriod      catalog.RentalPeriod
	RentalPeriodCount int
	RentalStart       *time.Time
	RentalEnd         *time.Time
	Serials           []string
}

func (l LineInput) taxAmount() money.Money {
	base := l.UnitPrice.Mul(l.Quantity.Decimal()).Sub(l.DiscountAmount)
	return base.MulRate(l.TaxRate)
}

func (s *Service) validateLocationAndItems(ctx context.Context, tx pgx.Tx, locationID uuid.UUID, lines []LineInput) error {
	active, err := s.catalog.LocationExistsActive(ctx, tx, locationID)
	if err != nil {
		return err
	}
	if !active {
		return rcerr.Validation("location_id", "must reference an active location")
	}
	for _, l := range lines {
		itemActive, err := s.catalog.ItemExistsActive(ctx, tx, l.ItemID)
		if err != nil {
			return err
		}
		if !itemActive {
			return rcerr.Validation("item_id", "must reference an active item")
		}
	}
	return nil
}

func buildLines(headerID uuid.UUID, lines []LineInput) []txn.Line {
	out := make([]txn.Line, len(lines))
	for i, l := range lines {
		line := txn.Line{
			TransactionHeaderID: headerID,
			LineNumber:          i + 1,
			ItemID:              l.ItemID,
			Quantity:            l.Quantity,
			UnitPrice:           l.UnitPrice,
			DiscountAmount:      l.DiscountAmount,
			TaxRate:             l.TaxRate,
			TaxAmount:           l.taxAmount(),
			RentalPeriod:        l.RentalPeriod,
			RentalPeriodCount:   l.RentalPeriodCount,
			RentalStart:         l.RentalStart,
			RentalEnd:           l.RentalEnd,
			CurrentRentalStatus: txn.LineInProgress,
		}
		line.LineTotal = line.ComputeTotal()
		out[i] = line
	}
	return out
}

// PurchaseInput bundles spec.md §4.8's PURCHASE entry point parameters.
type PurchaseInput struct {
	SupplierID uuid.UUID
	LocationID uuid.UUID
	PONumber   string
	Lines      []LineInput
	UnitCosts  []money.Money // parallel to Lines; per-line unit cost for receive_units
}

// CreatePurchase implements spec.md §4.8's PURCHASE creation skeleton.
func (s *Service) CreatePurchase(ctx context.Context, in PurchaseInput, actor uuid.UUID, now time.Time) (*txn.Header, []txn.Line, error) {
	if in.SupplierID == uuid.Nil {
		return nil, nil, rcerr.Validation("supplier_id", "required for PURCHASE")
	}
	if len(in.Lines) == 0 {
		return nil, nil, rcerr.Validation("lines", "must contain at least one line")
	}
	if len(in.UnitCosts) != len(in.Lines) {
		return nil, nil, rcerr.Validation("unit_costs", "must be supplied one per line")
	}

	var header *txn.Header
	var lines []txn.Line

	err := s.runTx(ctx, func(tx pgx.Tx) error {
		supplierActive, err := s.catalog.SupplierExistsActive(ctx, tx, in.SupplierID)
		if err != nil {
			return err
		}
		if !supplierActive {
			return rcerr.Validation("supplier_id", "must reference an active supplier")
		}
		if err := s.validateLocationAndItems(ctx, tx, in.LocationID, in.Lines); err != nil {
			return err
		}

		number, err := s.numbering.Allocate(ctx, tx, txn.TypePurchase, now.Year())
		if err != nil {
			return err
		}

		h := txn.Header{
			ID:                uuid.New(),
			TransactionNumber: number,
			Type:              txn.TypePurchase,
			Status:            txn.StatusPending,
			SupplierID:        &in.SupplierID,
			LocationID:        in.LocationID,
			PaymentStatus:     txn.PaymentPending,
		}
		h.Fields = audit.New(actor, now)

		built := buildLines(h.ID, in.Lines)
		h = h.RecomputeTotals(built)

		if err := s.txns.InsertHeader(ctx, tx, &h); err != nil {
			return err
		}
		for i := range built {
			if err := s.txns.InsertLine(ctx, tx, &built[i]); err != nil {
				return err
			}

			_, _, err := s.inventory.ReceiveUnits(ctx, tx, inventory.ReceiveUnitsInput{
				ItemID:     built[i].ItemID,
				LocationID: in.LocationID,
				Quantity:   built[i].Quantity,
				UnitCost:   in.UnitCosts[i],
				Serials:    in.Lines[i].Serials,
				SupplierID: in.SupplierID,
				PONumber:   in.PONumber,
			}, h.ID, built[i].ID, actor, now)
			if err != nil {
				return err
			}
		}

		h.Status = txn.StatusCompleted
		if err := s.txns.UpdateHeader(ctx, tx, &h); err != nil {
			return err
		}

		ev := txn.NewTransactionEvent(h.ID, map[string]any{"transaction_number": h.TransactionNumber, "type": "PURCHASE"}, now)
		if err := s.txns.InsertEvent(ctx, tx, &ev); err != nil {
			return err
		}

		header = &h
		lines = built
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return header, lines, nil
}

// SaleInput bundles spec.md §4.8's SALE entry point parameters.
type SaleInput struct {
	CustomerID uuid.UUID
	LocationID uuid.UUID
	Lines      []LineInput
	Serialized []bool // parallel to Lines
}

// CreateSale implements spec.md §4.8's SALE creation skeleton.
func (s *Service) CreateSale(ctx context.Context, in SaleInput, actor uuid.UUID, now time.Time) (*txn.Header, []txn.Line, error) {
	if in.CustomerID == uuid.Nil {
		return nil, nil, rcerr.Validation("customer_id", "required for SALE")
	}
	if len(in.Lines) == 0 {
		return nil, nil, rcerr.Validation("lines", "must contain at least one line")
	}
	if len(in.Serialized) != len(in.Lines) {
		return nil, nil, rcerr.Validation("serialized", "must be supplied one per line")
	}

	var header *txn.Header
	var lines []txn.Line

	err := s.runTx(ctx, func(tx pgx.Tx) error {
		customerActive, err := s.catalog.CustomerExistsActive(ctx, tx, in.CustomerID)
		if err != nil {
			return err
		}
		if !customerActive {
			return rcerr.Validation("customer_id", "must reference an active customer")
		}
		if err := s.validateLocationAndItems(ctx, tx, in.LocationID, in.Lines); err != nil {
			return err
		}

		for _, l := range in.Lines {
			lvl, err := s.stock.LockByItemLocation(ctx, tx, l.ItemID, in.LocationID)
			if err != nil {
				return err
			}
			if lvl == nil || !lvl.CanFulfillOrder(l.Quantity) {
				avail := money.ZeroQuantity
				if lvl != nil {
					avail = lvl.Available
				}
				return rcerr.InsufficientStock(in.LocationID.String(), l.Quantity, avail)
			}
		}

		number, err := s.numbering.Allocate(ctx, tx, txn.TypeSale, now.Year())
		if err != nil {
			return err
		}

		customerID := in.CustomerID
		h := txn.Header{
			ID:                uuid.New(),
			TransactionNumber: number,
			Type:              txn.TypeSale,
			Status:            txn.StatusPending,
			CustomerID:        &customerID,
			LocationID:        in.LocationID,
			PaymentStatus:     txn.PaymentPending,
		}
		h.Fields = audit.New(actor, now)

		built := buildLines(h.ID, in.Lines)
		h = h.RecomputeTotals(built)

		if err := s.txns.InsertHeader(ctx, tx, &h); err != nil {
			return err
		}
		for i := range built {
			if err := s.txns.InsertLine(ctx, tx, &built[i]); err != nil {
				return err
			}
			if _, err := s.inventory.SellUnits(ctx, tx, built[i].ItemID, in.LocationID, built[i].Quantity, in.Serialized[i], h.ID, built[i].ID, actor, now); err != nil {
				return err
			}
		}

		h.Status = txn.StatusCompleted
		if err := s.txns.UpdateHeader(ctx, tx, &h); err != nil {
			return err
		}

		ev := txn.NewTransactionEvent(h.ID, map[string]any{"transaction_number": h.TransactionNumber, "type": "SALE"}, now)
		if err := s.txns.InsertEvent(ctx, tx, &ev); err != nil {
			return err
		}

		header = &h
		lines = built
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return header, lines, nil
}

// RentalInput bundles spec.md §4.8's RENTAL entry point parameters.
type RentalInput struct {
	CustomerID      uuid.UUID
	LocationID      uuid.UUID
	RentalStartDate time.Time
	RentalEndDate   time.Time
	Lines           []LineInput
}

// CreateRental implements spec.md §4.8's RENTAL creation skeleton.
func (s *Service) CreateRental(ctx context.Context, in RentalInput, actor uuid.UUID, now time.Time) (*txn.Header, []txn.Line, error) {
	if in.CustomerID == uuid.Nil {
		return nil, nil, rcerr.Validation("customer_id", "required for RENTAL")
	}
	if len(in.Lines) == 0 {
		return nil, nil, rcerr.Validation("lines", "must contain at least one line")
	}

	var header *txn.Header
	var lines []txn.Line

	err := s.runTx(ctx, func(tx pgx.Tx) error {
		customerActive, err := s.catalog.CustomerExistsActive(ctx, tx, in.CustomerID)
		if err != nil {
			return err
		}
		if !customerActive {
			return rcerr.Validation("customer_id", "must reference an active customer")
		}
		if err := s.validateLocationAndItems(ctx, tx, in.LocationID, in.Lines); err != nil {
			return err
		}

		for _, l := range in.Lines {
			lvl, err := s.stock.LockByItemLocation(ctx, tx, l.ItemID, in.LocationID)
			if err != nil {
				return err
			}
			if lvl == nil || !lvl.CanFulfillOrder(l.Quantity) {
				avail := money.ZeroQuantity
				if lvl != nil {
					avail = lvl.Available
				}
				return rcerr.InsufficientStock(in.LocationID.String(), l.Quantity, avail)
			}
		}

		number, err := s.numbering.Allocate(ctx, tx, txn.TypeRental, now.Year())
		if err != nil {
			return err
		}

		customerID := in.CustomerID
		h := txn.Header{
			ID:                  uuid.New(),
			TransactionNumber:   number,
			Type:                txn.TypeRental,
			Status:              txn.StatusPending,
			CustomerID:          &customerID,
			LocationID:          in.LocationID,
			PaymentStatus:       txn.PaymentPending,
			RentalStartDate:     &in.RentalStartDate,
			RentalEndDate:       &in.RentalEndDate,
			CurrentRentalStatus: ptrRentalStatus(txn.RentalInProgress),
		}
		h.Fields = audit.New(actor, now)

		for i := range in.Lines {
			if in.Lines[i].RentalStart == nil {
				in.Lines[i].RentalStart = &in.RentalStartDate
			}
			if in.Lines[i].RentalEnd == nil {
				in.Lines[i].RentalEnd = &in.RentalEndDate
			}
		}
		built := buildLines(h.ID, in.Lines)
		h = h.RecomputeTotals(built)

		if err := s.txns.InsertHeader(ctx, tx, &h); err != nil {
			return err
		}
		for i := range built {
			if err := s.txns.InsertLine(ctx, tx, &built[i]); err != nil {
				return err
			}
			if _, err := s.inventory.CheckoutForRental(ctx, tx, built[i].ItemID, in.LocationID, built[i].Quantity, h.ID, built[i].ID, actor, now); err != nil {
				return err
			}
		}

		h.Status = txn.StatusInProgress
		if err := s.txns.UpdateHeader(ctx, tx, &h); err != nil {
			return err
		}

		ev := txn.NewTransactionEvent(h.ID, map[string]any{"transaction_number": h.TransactionNumber, "type": "RENTAL"}, now)
		if err := s.txns.InsertEvent(ctx, tx, &ev); err != nil {
			return err
		}

		header = &h
		lines = built
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return header, lines, nil
}

// UpdatePayment implements spec.md §4.8's update_payment.
func (s *Service) UpdatePayment(ctx context.Context, headerID uuid.UUID, amount money.Money, method, reference string, allowOverpayment bool, actor uuid.UUID, now time.Time) (*txn.Header, error) {
	var result *txn.Header

	err := s.runTx(ctx, func(tx pgx.Tx) error {
		h, err := s.txns.LockHeaderByID(ctx, tx, headerID)
		if err != nil {
			return err
		}

		next, err := h.ApplyPayment(amount, allowOverpayment, now)
		if err != nil {
			return err
		}
		next.Fields = next.Fields.Touch(actor, now)

		if err := s.txns.UpdateHeader(ctx, tx, &next); err != nil {
			return err
		}

		ev := txn.NewPaymentEvent(next.ID, map[string]any{
			"amount":    amount.String(),
			"method":    method,
			"reference": reference,
			"status":    string(next.PaymentStatus),
		}, now)
		if err := s.txns.InsertEvent(ctx, tx, &ev); err != nil {
			return err
		}

		result = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ptrRentalStatus(s txn.RentalStatus) *txn.RentalStatus { return &s }
