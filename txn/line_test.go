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
package txn

import (
	"strings"
	"testing"
	"time"

	"github.com/kestrel-holdings/rentalcore/money"
)

func TestLineComputeTotalFallsBackToPeriodCount(t *testing.T) {
	l := Line{
		Quantity:          money.QuantityFromInt(1),
		UnitPrice:         money.MoneyFromFloat(20),
		RentalPeriodCount: 3,
	}
	total := l.ComputeTotal()
	want := money.MoneyFromFloat(60)
	if !total.Equal(want) {
		t.Fatalf("line total = %s, want %s", total.String(), want.String())
	}
}

func TestLineComputeTotalDefaultsToSingleUnit(t *testing.T) {
	l := Line{
		Quantity:       money.QuantityFromInt(2),
		UnitPrice:      money.MoneyFromFloat(15),
		DiscountAmount: money.MoneyFromFloat(5),
	}
	total := l.ComputeTotal()
	want := money.MoneyFromFloat(25)
	if !total.Equal(want) {
		t.Fatalf("line total = %s, want %s", total.String(), want.String())
	}
}

func TestAppendNoteAppendsRatherThanOverwrites(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	l := Line{}

	l = l.AppendNote("first note", now)
	if !strings.Contains(l.Notes, "first note") {
		t.Fatalf("Notes = %q, want it to contain %q", l.Notes, "first note")
	}

	later := now.Add(time.Hour)
	l = l.AppendNote("second note", later)
	if !strings.Contains(l.Notes, "first note") || !strings.Contains(l.Notes, "second note") {
		t.Fatalf("Notes = %q, want both entries preserved", l.Notes)
	}
	if strings.Count(l.Notes, "\n") != 1 {
		t.Fatalf("Notes = %q, want exactly one separator", l.Notes)
	}
}
