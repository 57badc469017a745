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

// Package rcerr defines the typed error taxonomy every core operation
// surfaces to callers. Each category is a distinct Go type so callers
// discriminate with errors.As instead of string matching.
package rcerr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgerrcode"

	"github.com/kestrel-holdings/rentalcore/money"
)

// ValidationError reports that an input violates a declared constraint.
type ValidationError struct {
	Field  string
	Reason string
}

func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing or soft-deleted referenced entity.
type NotFoundError struct {
	Kind string
	ID   string
}

func NotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// ConflictError reports a uniqueness collision.
type ConflictError struct {
	Kind  string
	Value string
}

func Conflict(kind, value string) *ConflictError {
	return &ConflictError{Kind: kind, Value: value}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Kind, e.Value)
}

// InsufficientStockError reports that available stock at a location could
// not cover the requested quantity.
type InsufficientStockError struct {
	LocationID string
	Requested  money.Quantity
	Available  money.Quantity
}

func InsufficientStock(locationID string, requested, available money.Quantity) *InsufficientStockError {
	return &InsufficientStockError{LocationID: locationID, Requested: requested, Available: available}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock at location %s: requested %s, available %s",
		e.LocationID, e.Requested.String(), e.Available.String())
}

// InsufficientUnitsError signals data drift: the stock level claims more
// allocatable serialized units exist than the unit table can produce.
type InsufficientUnitsError struct {
	ItemID     string
	LocationID string
	Requested  int64
	Found      int64
}

func InsufficientUnits(itemID, locationID string, requested, found int64) *InsufficientUnitsError {
	return &InsufficientUnitsError{ItemID: itemID, LocationID: locationID, Requested: requested, Found: found}
}

func (e *InsufficientUnitsError) Error() string {
	return fmt.Sprintf("insufficient allocatable units for item %s at location %s: requested %d, found %d",
		e.ItemID, e.LocationID, e.Requested, e.Found)
}

// IllegalStateTransitionError reports a forbidden unit or payment status
// move.
type IllegalStateTransitionError struct {
	Kind string
	From string
	To   string
}

func IllegalStateTransition(kind, from, to string) *IllegalStateTransitionError {
	return &IllegalStateTransitionError{Kind: kind, From: from, To: to}
}

func (e *IllegalStateTransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition: %s -> %s", e.Kind, e.From, e.To)
}

// InventoryConsistencyError reports that a post-condition invariant would
// be violated by the attempted mutation.
type InventoryConsistencyError struct {
	Reason string
}

func InventoryConsistency(reason string) *InventoryConsistencyError {
	return &InventoryConsistencyError{Reason: reason}
}

func (e *InventoryConsistencyError) Error() string {
	return fmt.Sprintf("inventory consistency violated: %s", e.Reason)
}

// InactiveSequenceError reports SKU generation against a deactivated
// sequence.
type InactiveSequenceError struct {
	SequenceID string
}

func InactiveSequence(sequenceID string) *InactiveSequenceError {
	return &InactiveSequenceError{SequenceID: sequenceID}
}

func (e *InactiveSequenceError) Error() string {
	return fmt.Sprintf("sku sequence %s is inactive", e.SequenceID)
}

// DatabaseError wraps an infrastructure failure. The enclosing
// transaction is always rolled back before this error reaches the
// caller.
type DatabaseError struct {
	Op  string
	Err error
}

func Database(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error during %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation, the only condition the core retries (spec.md §5).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return false
}
