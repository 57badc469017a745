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

// Package audit holds the embedded column set every persisted entity
// carries, replacing the source's audit-mixin multiple inheritance with
// plain composition (spec.md §9).
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Fields is embedded by value in every entity record.
type Fields struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	CreatedBy uuid.UUID
	UpdatedBy uuid.UUID
	IsActive  bool
	Version   int64
}

// New stamps a brand-new record's audit fields.
func New(actor uuid.UUID, now time.Time) Fields {
	return Fields{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: actor,
		UpdatedBy: actor,
		IsActive:  true,
		Version:   1,
	}
}

// Touch advances UpdatedAt/UpdatedBy/Version for an in-place mutation.
func (f Fields) Touch(actor uuid.UUID, now time.Time) Fields {
	f.UpdatedAt = now
	f.UpdatedBy = actor
	f.Version++
	return f
}

// Deactivate performs a soft delete.
func (f Fields) Deactivate(actor uuid.UUID, now time.Time) Fields {
	f = f.Touch(actor, now)
	f.IsActive = false
	return f
}
