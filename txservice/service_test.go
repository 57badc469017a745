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
package txservice

import (
	"testing"

	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/money"
)

func TestLineInputTaxAmount(t *testing.T) {
	rate, err := money.ParseRate("0.0825")
	if err != nil {
		t.Fatal(err)
	}
	l := LineInput{
		Quantity:       money.QuantityFromInt(2),
		UnitPrice:      money.MoneyFromFloat(50),
		DiscountAmount: money.MoneyFromFloat(10),
		TaxRate:        rate,
	}
	// (2*50 - 10) * 0.0825 = 90 * 0.0825 = 7.425 -> rounds to 7.43
	want := money.MoneyFromFloat(7.43)
	if !l.taxAmount().Equal(want) {
		t.Fatalf("taxAmount() = %s, want %s", l.taxAmount().String(), want.String())
	}
}

func TestBuildLinesAssignsSequentialLineNumbers(t *testing.T) {
	headerID := uuid.New()
	lines := []LineInput{
		{ItemID: uuid.New(), Quantity: money.QuantityFromInt(1), UnitPrice: money.MoneyFromFloat(10)},
		{ItemID: uuid.New(), Quantity: money.QuantityFromInt(2), UnitPrice: money.MoneyFromFloat(20)},
	}
	built := buildLines(headerID, lines)
	if len(built) != 2 {
		t.Fatalf("len(built) = %d, want 2", len(built))
	}
	for i, l := range built {
		if l.LineNumber != i+1 {
			t.Errorf("line %d: LineNumber = %d, want %d", i, l.LineNumber, i+1)
		}
		if l.TransactionHeaderID != headerID {
			t.Errorf("line %d: TransactionHeaderID not propagated", i)
		}
		if l.LineTotal.IsZero() && l.Quantity.IsPositive() {
			t.Errorf("line %d: LineTotal not computed", i)
		}
	}
}
