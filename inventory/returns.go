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

	"github.com/kestrel-holdings/rentalcore/rcerr"
	"github.com/kestrel-holdings/rentalcore/stock"
)

// ReturnFromRent implements spec.md §4.6's return-from-rental leg of the
// return flow: it locks the level, routes the four outcome buckets per
// stock.Level.ReturnFromRent, and applies the resulting movement tagged
// against the originating header/line. Serialized-unit state transitions
// and damage-assessment capture are the caller's responsibility (C9),
// since they are not part of the stock-level aggregate.
func (s *Service) ReturnFromRent(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, b stock.ReturnBuckets, transactionHeaderID, transactionLineID, actor uuid.UUID, now time.Time) (*stock.Level, error) {
	var result *stock.Level

	err := s.withTx(ctx, tx, func(t pgx.Tx) error {
		lvl, err := s.stock.LockByItemLocation(ctx, t, itemID, locationID)
		if err != nil {
			return err
		}
		if lvl == nil {
			return rcerr.NotFound("stock_level", itemID.String()+"/"+locationID.String())
		}

		mut, err := lvl.ReturnFromRent(b)
		if err != nil {
			return err
		}
		if err := s.stock.Apply(ctx, t, mut, transactionHeaderID, transactionLineID, actor, now); err != nil {
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
