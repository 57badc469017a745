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

// Package sku implements the SKU sequence allocator (C2): collision-free
// SKU issuance under concurrent load via row-level locking on a
// per-(brand,category) counter.
package sku

import (
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/audit"
)

// Sequence is the per-(brand,category) counter record.
type Sequence struct {
	ID             uuid.UUID
	BrandID        uuid.UUID
	CategoryID     uuid.UUID
	Prefix         string
	Suffix         string
	PaddingLength  int
	FormatTemplate string
	NextSequence   int64
	TotalGenerated int64
	LastGenerated  string
	LastGeneratedAt time.Time
	IsActive       bool

	audit.Fields
}

// NewParams are the caller-supplied fields for get_or_create.
type NewParams struct {
	BrandID        uuid.UUID
	CategoryID     uuid.UUID
	Prefix         string
	Suffix         string
	PaddingLength  int
	FormatTemplate string
}

// issue renders the next SKU against s and advances its counters in
// place. It is a pure function over the owned record — the repository
// layer is responsible for locking the row before calling this and
// persisting the result after (spec.md §9: "expose aggregate methods as
// pure functions over an owned record plus a transaction handle").
func (s *Sequence) issue(brandCode, categoryCode, itemName string, customData map[string]string, now time.Time) (string, int64, error) {
	seqNum := s.NextSequence

	rc := RenderContext{
		Prefix:       s.Prefix,
		Suffix:       s.Suffix,
		Sequence:     seqNum,
		Padding:      s.PaddingLength,
		BrandCode:    brandCode,
		CategoryCode: categoryCode,
		ItemName:     itemName,
		CustomData:   customData,
	}

	rendered, err := Render(s.FormatTemplate, rc)
	if err != nil {
		return "", 0, err
	}

	s.NextSequence++
	s.TotalGenerated++
	s.LastGenerated = rendered
	s.LastGeneratedAt = now

	return rendered, seqNum, nil
}

// issueBulk renders count contiguous SKUs starting at the current
// NextSequence, advancing the counters once per SKU; the repository
// persists them once for the whole batch, per spec.md §4.2: "single
// locked section issues count contiguous numbers."
func (s *Sequence) issueBulk(count int, brandCode, categoryCode, itemName string, customData map[string]string, now time.Time) ([]string, []int64, error) {
	skus := make([]string, 0, count)
	nums := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		sku, num, err := s.issue(brandCode, categoryCode, itemName, customData, now)
		if err != nil {
			return nil, nil, err
		}
		skus = append(skus, sku)
		nums = append(nums, num)
	}
	return skus, nums, nil
}
