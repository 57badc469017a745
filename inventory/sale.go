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

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kestrel-holdings/rentalcore/money"
	"github.com/kestrel-holdings/rentalcore/rcerr"
	"github.com/kestrel-holdings/rentalcore/stock"
	"github.com/kestrel-holdings/rentalcore/unit"
)

// SellResult reports the units sold (when the item is serialized) and the
// resulting level, for C8 to persist onto its own line records.
type SellResult struct {
	Units []unit.Unit
	Level stock.Level
}

// SellUnits implements the sale leg's "reserve + immediate consume" step
// named in spec.md §4.8: the stock level is reserved then immediately
// consumed in the same transaction, and — for serialized items — the
// oldest available units transition straight to SOLD.
// transactionHeaderID/transactionLineID tag the resulting movements so
// they can be traced back to the sale that caused them.
func (s *Service) SellUnits(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, qty money.Quantity, serialized bool, transactionHeaderID, transactionLineID, actor uuid.UUID, now time.Time) (*SellResult, error) {
	var result *SellResult

	err := s.withTx(ctx, tx, func(t pgx.Tx) error {
		lvl, err := s.stock.LockByItemLocation(ctx, t, itemID, locationID)
		if err != nil {
			return err
		}
		if lvl == nil || !lvl.CanFulfillOrder(qty) {
			avail := money.ZeroQuantity
			if lvl != nil {
				avail = lvl.Available
			}
			return rcerr.InsufficientStock(locationID.String(), qty, avail)
		}

		var sold []unit.Unit
		if serialized {
			want := qty.AsInt64()
			candidates, err := s.units.OldestAvailableForRental(ctx, t, itemID, locationID, int(want))
			if err != nil {
				return err
			}
			if int64(len(candidates)) < want {
				return rcerr.InsufficientUnits(itemID.String(), locationID.String(), want, int64(len(candidates)))
			}
			sold = make([]unit.Unit, len(candidates))
			for i, u := range candidates {
				next, err := u.Transition(unit.Sold, "", actor, now)
				if err != nil {
					return err
				}
				if err := s.units.Update(ctx, t, &next); err != nil {
					return err
				}
				sold[i] = next
			}
		}

		reserveMut, err := lvl.Reserve(qty, locationID.String())
		if err != nil {
			return err
		}
		if err := s.stock.Apply(ctx, t, reserveMut, transactionHeaderID, transactionLineID, actor, now); err != nil {
			return err
		}

		consumeMut, err := reserveMut.Level.Consume(qty, locationID.String())
		if err != nil {
			return err
		}
		if err := s.stock.Apply(ctx, t, consumeMut, transactionHeaderID, transactionLineID, actor, now); err != nil {
			return err
		}

		result = &SellResult{Units: sold, Level: consumeMut.Level}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
