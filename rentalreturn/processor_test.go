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
package rentalreturn

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/money"
	"github.com/kestrel-holdings/rentalcore/txn"
)

func TestLineReturnStatus(t *testing.T) {
	line := &txn.Line{Quantity: money.QuantityFromInt(5), ReturnedQuantity: money.QuantityFromInt(2)}

	cases := []struct {
		name  string
		rb    ReturnBucketsInput
		late  bool
		want  txn.LineRentalStatus
	}{
		{"partial, on time", ReturnBucketsInput{Good: money.QuantityFromInt(1)}, false, txn.LinePartialReturn},
		{"partial, late", ReturnBucketsInput{Good: money.QuantityFromInt(1)}, true, txn.LineLatePartialReturn},
		{"full, on time", ReturnBucketsInput{Good: money.QuantityFromInt(3)}, false, txn.LineCompleted},
		{"full, late", ReturnBucketsInput{Good: money.QuantityFromInt(3)}, true, txn.LineLate},
		{"all damaged", ReturnBucketsInput{Damaged: money.QuantityFromInt(1)}, false, txn.LineDamaged},
	}
	for _, c := range cases {
		if got := lineReturnStatus(c.rb, line, c.rb.total(), c.late); got != c.want {
			t.Errorf("%s: lineReturnStatus() = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestNewDamageAssessmentRepairFeasible(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	minor := NewDamageAssessment(uuid.New(), "SCRATCH", "MINOR", money.MoneyFromFloat(10), nil, now)
	if !minor.RepairFeasible {
		t.Fatal("expected MINOR damage to be repair-feasible")
	}

	total := NewDamageAssessment(uuid.New(), "CRACKED_SCREEN", "BEYOND_REPAIR", money.MoneyFromFloat(500), nil, now)
	if total.RepairFeasible {
		t.Fatal("expected BEYOND_REPAIR damage to not be repair-feasible")
	}
}

func TestReturnBucketsInputTotal(t *testing.T) {
	rb := ReturnBucketsInput{
		Good:         money.QuantityFromInt(2),
		Damaged:      money.QuantityFromInt(1),
		BeyondRepair: money.QuantityFromInt(1),
		Lost:         money.QuantityFromInt(1),
	}
	want := money.QuantityFromInt(5)
	if !rb.total().Equal(want) {
		t.Fatalf("total() = %s, want %s", rb.total().String(), want.String())
	}
}
