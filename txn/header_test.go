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
	"testing"
	"time"

	"github.com/kestrel-holdings/rentalcore/money"
)

func TestRecomputeTotals(t *testing.T) {
	lines := []Line{
		{Quantity: money.QuantityFromInt(2), UnitPrice: money.MoneyFromFloat(10), DiscountAmount: money.MoneyFromFloat(1), TaxAmount: money.MoneyFromFloat(2)},
		{Quantity: money.QuantityFromInt(1), UnitPrice: money.MoneyFromFloat(5), DiscountAmount: money.Zero, TaxAmount: money.MoneyFromFloat(1)},
	}
	h := Header{Shipping: money.MoneyFromFloat(3)}
	next := h.RecomputeTotals(lines)

	if next.Subtotal.String() != "25.00" {
		t.Fatalf("subtotal = %s, want 25.00", next.Subtotal.String())
	}
	if next.Discount.String() != "1.00" {
		t.Fatalf("discount = %s, want 1.00", next.Discount.String())
	}
	if next.Tax.String() != "3.00" {
		t.Fatalf("tax = %s, want 3.00", next.Tax.String())
	}
	want := money.MoneyFromFloat(25 - 1 + 3 + 3)
	if !next.Total.Equal(want) {
		t.Fatalf("total = %s, want %s", next.Total.String(), want.String())
	}
}

func TestApplyPaymentStateMachine(t *testing.T) {
	h := Header{Total: money.MoneyFromFloat(100), PaymentStatus: PaymentPending}

	afterPartial, err := h.ApplyPayment(money.MoneyFromFloat(40), false, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if afterPartial.PaymentStatus != PaymentPartial {
		t.Fatalf("payment status = %s, want PARTIAL", afterPartial.PaymentStatus)
	}

	afterPaid, err := afterPartial.ApplyPayment(money.MoneyFromFloat(60), false, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if afterPaid.PaymentStatus != PaymentPaid || !afterPaid.IsPaid() {
		t.Fatalf("expected PAID and balance settled, got %+v", afterPaid)
	}
}

func TestApplyPaymentRejectsOverpaymentByDefault(t *testing.T) {
	h := Header{Total: money.MoneyFromFloat(50)}
	if _, err := h.ApplyPayment(money.MoneyFromFloat(60), false, time.Now()); err == nil {
		t.Fatal("expected ValidationError for overpayment")
	}
}

func TestAggregateRentalStatus(t *testing.T) {
	cases := []struct {
		name  string
		lines []Line
		want  RentalStatus
	}{
		{"all completed", []Line{{CurrentRentalStatus: LineCompleted}, {CurrentRentalStatus: LineCompleted}}, RentalCompleted},
		{"one late", []Line{{CurrentRentalStatus: LineCompleted}, {CurrentRentalStatus: LineLate}}, RentalLate},
		{"late partial", []Line{{CurrentRentalStatus: LineLatePartialReturn}}, RentalLatePartialReturn},
		{"one partial", []Line{{CurrentRentalStatus: LineCompleted}, {CurrentRentalStatus: LinePartialReturn}}, RentalPartialReturn},
		{"extended", []Line{{CurrentRentalStatus: LineExtended}}, RentalExtended},
		{"damaged rolls up as partial", []Line{{CurrentRentalStatus: LineCompleted}, {CurrentRentalStatus: LineDamaged}}, RentalPartialReturn},
		{"in progress default", []Line{{CurrentRentalStatus: LineInProgress}}, RentalInProgress},
	}
	for _, c := range cases {
		if got := AggregateRentalStatus(c.lines); got != c.want {
			t.Errorf("%s: AggregateRentalStatus() = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestLineComputeTotalWithDateDrivenMultiplier(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(3 * 24 * time.Hour)
	l := Line{
		Quantity:  money.QuantityFromInt(1),
		UnitPrice: money.MoneyFromFloat(20),
		RentalStart: &start,
		RentalEnd:   &end,
	}
	total := l.ComputeTotal()
	want := money.MoneyFromFloat(60)
	if !total.Equal(want) {
		t.Fatalf("line total = %s, want %s", total.String(), want.String())
	}
}
