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
package sku

import (
	"testing"
	"time"
)

func TestRenderKnownKeys(t *testing.T) {
	rc := RenderContext{
		Prefix: "RNT", Suffix: "A", Sequence: 42, Padding: 5,
		BrandCode: "BRD", CategoryCode: "CAT", ItemName: "Heavy Duty Drill",
	}
	got, err := Render("{prefix}-{padding}-{suffix}", rc)
	if err != nil {
		t.Fatal(err)
	}
	if got != "RNT-00042-A" {
		t.Errorf("got %q", got)
	}

	got, err = Render("{brand}/{category}/{item}", rc)
	if err != nil {
		t.Fatal(err)
	}
	if got != "BRD/CAT/heavy-duty-drill" {
		t.Errorf("got %q", got)
	}
}

func TestValidateTemplateRejectsUnknownKey(t *testing.T) {
	if err := ValidateTemplate("{prefix}-{bogus}", nil); err == nil {
		t.Fatal("expected error for unknown key")
	}
	if err := ValidateTemplate("{prefix}-{region}", map[string]bool{"region": true}); err != nil {
		t.Fatalf("custom key should validate: %v", err)
	}
}

func TestIssueBulkContiguous(t *testing.T) {
	seq := Sequence{
		Prefix: "RNT", PaddingLength: 4, FormatTemplate: "{prefix}-{padding}",
		NextSequence: 42,
	}
	now := time.Now()

	skus, nums, err := seq.issueBulk(5, "BRD", "CAT", "Drill", nil, now)
	if err != nil {
		t.Fatal(err)
	}

	if len(skus) != 5 || len(nums) != 5 {
		t.Fatalf("expected 5 skus/nums, got %d/%d", len(skus), len(nums))
	}
	for i, n := range nums {
		if n != int64(42+i) {
			t.Errorf("nums[%d] = %d, want %d", i, n, 42+i)
		}
	}
	seen := map[string]bool{}
	for _, s := range skus {
		if seen[s] {
			t.Errorf("duplicate sku %s", s)
		}
		seen[s] = true
	}
	if seq.NextSequence != 47 {
		t.Errorf("NextSequence = %d, want 47", seq.NextSequence)
	}
	if seq.TotalGenerated != 5 {
		t.Errorf("TotalGenerated = %d, want 5", seq.TotalGenerated)
	}
}
