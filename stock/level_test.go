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
package stock

import (
	"testing"

	"github.com/kestrel-holdings/rentalcore/money"
)

func q(i int64) money.Quantity { return money.QuantityFromInt(i) }

func TestRentOutThenReturnGoodIsIdentity(t *testing.T) {
	lvl := Level{Available: q(10)}

	out, err := lvl.RentOut(q(3), "loc")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Level.Available.Equal(q(7)) || !out.Level.OnRent.Equal(q(3)) {
		t.Fatalf("unexpected post-rentout state: %+v", out.Level)
	}

	back, err := out.Level.ReturnFromRent(ReturnBuckets{Good: q(3)})
	if err != nil {
		t.Fatal(err)
	}
	if !back.Level.Available.Equal(q(10)) || !back.Level.OnRent.IsZero() {
		t.Fatalf("rent-out/return-good round trip is not identity: %+v", back.Level)
	}
}

func TestAdjustPlusMinusIsNoOp(t *testing.T) {
	lvl := Level{Available: q(5)}

	up, err := lvl.Adjust(q(4), true, "count correction")
	if err != nil {
		t.Fatal(err)
	}
	down, err := up.Level.Adjust(q(-4), true, "count correction")
	if err != nil {
		t.Fatal(err)
	}
	if !down.Level.Available.Equal(q(5)) {
		t.Fatalf("adjust(+q)/adjust(-q) not a no-op: %+v", down.Level)
	}
}

func TestDamagedReturnDoesNotInflateAvailable(t *testing.T) {
	lvl := Level{OnRent: q(5)}
	m, err := lvl.ReturnFromRent(ReturnBuckets{Damaged: q(5)})
	if err != nil {
		t.Fatal(err)
	}
	if !m.Level.Available.IsZero() {
		t.Fatalf("available should stay 0, got %s", m.Level.Available.String())
	}
	if !m.Level.Damaged.Equal(q(5)) {
		t.Fatalf("damaged should be 5, got %s", m.Level.Damaged.String())
	}
	if !m.Level.OnRent.IsZero() {
		t.Fatalf("on_rent should be 0, got %s", m.Level.OnRent.String())
	}
}

func TestCheckoutOfAvailablePlusOneFails(t *testing.T) {
	lvl := Level{Available: q(3)}
	if _, err := lvl.RentOut(q(4), "loc-1"); err == nil {
		t.Fatal("expected InsufficientStockError")
	}
}

func TestReturningMoreThanOnRentFails(t *testing.T) {
	lvl := Level{OnRent: q(5)}
	if _, err := lvl.ReturnFromRent(ReturnBuckets{Good: q(6)}); err == nil {
		t.Fatal("expected InventoryConsistencyError")
	}
}

func TestTransferOutInConservesTotal(t *testing.T) {
	src := Level{Available: q(20)}
	dst := Level{}

	out, err := src.TransferOut(q(7), "rebalance", "src")
	if err != nil {
		t.Fatal(err)
	}
	in, err := dst.TransferIn(q(7), "rebalance")
	if err != nil {
		t.Fatal(err)
	}

	if !out.Level.OnHand().Add(in.Level.OnHand()).Equal(q(20)) {
		t.Fatalf("transfer did not conserve total: src=%s dst=%s",
			out.Level.OnHand().String(), in.Level.OnHand().String())
	}
}

func TestTransferRoundTripIsNoOp(t *testing.T) {
	a := Level{Available: q(10)}
	b := Level{Available: q(0)}

	outA, err := a.TransferOut(q(5), "r", "a")
	if err != nil {
		t.Fatal(err)
	}
	inB, err := b.TransferIn(q(5), "r")
	if err != nil {
		t.Fatal(err)
	}

	outB, err := inB.Level.TransferOut(q(5), "r", "b")
	if err != nil {
		t.Fatal(err)
	}
	inA, err := outA.Level.TransferIn(q(5), "r")
	if err != nil {
		t.Fatal(err)
	}

	if !inA.Level.OnHand().Equal(a.OnHand()) || !outB.Level.OnHand().Equal(b.OnHand()) {
		t.Fatalf("transfer(A->B)+transfer(B->A) is not a no-op")
	}
}

func TestUpdateAverageCostWeighting(t *testing.T) {
	lvl := Level{Available: q(10), AverageCost: money.MoneyFromFloat(20)}
	next := lvl.UpdateAverageCost(q(10), money.MoneyFromFloat(30))
	if next.AverageCost.String() != "25.00" {
		t.Fatalf("average_cost = %s, want 25.00", next.AverageCost.String())
	}
}

func TestStockStatusDerivation(t *testing.T) {
	cases := []struct {
		name string
		lvl  Level
		want Status
	}{
		{"empty", Level{}, OutOfStock},
		{"low", Level{Available: q(1), ReorderPoint: q(5)}, LowStock},
		{"over", Level{Available: q(100), MaximumStock: q(50)}, Overstocked},
		{"in stock", Level{Available: q(20), ReorderPoint: q(5), MaximumStock: q(50)}, InStock},
	}
	for _, c := range cases {
		if got := c.lvl.Status(); got != c.want {
			t.Errorf("%s: Status() = %s, want %s", c.name, got, c.want)
		}
	}
}
