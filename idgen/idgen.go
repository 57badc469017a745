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

// Package idgen mints the opaque 128-bit identifiers every persisted
// entity uses.
package idgen

import "github.com/google/uuid"

// Nil is the zero-value UUID, used at API boundaries to represent an
// unset optional foreign key.
var Nil = uuid.Nil

// New returns a fresh random (v4) identifier.
func New() uuid.UUID {
	return uuid.New()
}

// Parse parses a canonical string representation.
func Parse(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// IsSet reports whether id is anything other than the zero value.
func IsSet(id uuid.UUID) bool {
	return id != uuid.Nil
}
