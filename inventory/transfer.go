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
)

// TransferResult reports both legs of a transfer for callers that need
// to surface them (e.g. a summary report).
type TransferResult struct {
	Source      stock.Level
	Destination stock.Level
	Correlation uuid.UUID
}

// Transfer implements spec.md §4.6 item 5. The two movements share no
// id but carry the same reason and a shared correlation id, and the
// locking order always acquires min(from_id, to_id) first per spec.md
// §5 to avoid cross-transfer deadlocks.
func (s *Service) Transfer(ctx context.Context, tx pgx.Tx, itemID, fromLocationID, toLocationID uuid.UUID, qty money.Quantity, reason string, actor uuid.UUID, now time.Time) (*TransferResult, error) {
	correlation := uuid.New()
	var result *TransferResult

	err := s.withTx(ctx, tx, func(t pgx.Tx) error {
		first, second := fromLocationID, toLocationID
		firstIsSource := true
		if toLocationID.String() < fromLocationID.String() {
			first, second = toLocationID, fromLocationID
			firstIsSource = false
		}

		// Whichever location sorts first is locked first, regardless of
		// which leg is source or destination, so the acquisition order is
		// fixed across both transfer directions. The destination leg always
		// goes through GetOrCreate since it may not have a level row yet;
		// the source leg is locked only, since it must already exist.
		var srcLvl, dstLvl *stock.Level
		if firstIsSource {
			lockedSrc, err := s.stock.LockByItemLocation(ctx, t, itemID, first)
			if err != nil {
				return err
			}
			srcLvl = lockedSrc

			created, _, err := s.stock.GetOrCreate(ctx, t, itemID, second, actor, now)
			if err != nil {
				return err
			}
			dstLvl = created
		} else {
			created, _, err := s.stock.GetOrCreate(ctx, t, itemID, first, actor, now)
			if err != nil {
				return err
			}
			dstLvl = created

			lockedSrc, err := s.stock.LockByItemLocation(ctx, t, itemID, second)
			if err != nil {
				return err
			}
			srcLvl = lockedSrc
		}

		if srcLvl == nil {
			return rcerr.InsufficientStock(fromLocationID.String(), qty, money.ZeroQuantity)
		}

		reasonWithCorrelation := reason + " [correlation:" + correlation.String() + "]"

		outMut, err := srcLvl.TransferOut(qty, reasonWithCorrelation, fromLocationID.String())
		if err != nil {
			return err
		}
		if err := s.stock.Apply(ctx, t, outMut, uuid.Nil, uuid.Nil, actor, now); err != nil {
			return err
		}

		inMut, err := dstLvl.TransferIn(qty, reasonWithCorrelation)
		if err != nil {
			return err
		}
		if err := s.stock.Apply(ctx, t, inMut, uuid.Nil, uuid.Nil, actor, now); err != nil {
			return err
		}

		result = &TransferResult{Source: outMut.Level, Destination: inMut.Level, Correlation: correlation}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
