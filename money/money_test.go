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
package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewMoneyRoundsHalfUp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"10.005", "10.01"},
		{"10.004", "10.00"},
		{"-10.005", "-10.01"},
		{"2.675", "2.68"},
		{"0.125", "0.13"},
		{"100", "100.00"},
	}

	for _, c := range cases {
		d, err := decimal.NewFromString(c.in)
		if err != nil {
			t.Fatalf("parse %q: %v", c.in, err)
		}
		got := NewMoney(d).String()
		if got != c.want {
			t.Errorf("NewMoney(%s) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestMoneyAddSubRoundTrip(t *testing.T) {
	a := MoneyFromFloat(10.10)
	b := MoneyFromFloat(5.05)
	sum := a.Add(b)
	if sum.String() != "15.15" {
		t.Errorf("sum = %s, want 15.15", sum.String())
	}
	if diff := sum.Sub(b); !diff.Equal(a) {
		t.Errorf("sum.Sub(b) = %s, want %s", diff.String(), a.String())
	}
}

func TestMaxZero(t *testing.T) {
	if got := MaxZero(MoneyFromFloat(-5)); !got.IsZero() {
		t.Errorf("MaxZero(-5) = %s, want 0", got.String())
	}
	if got := MaxZero(MoneyFromFloat(5)); !got.Equal(MoneyFromFloat(5)) {
		t.Errorf("MaxZero(5) = %s, want 5.00", got.String())
	}
}

func TestRateGreaterThanOne(t *testing.T) {
	if RateFromFloat(0.5).GreaterThanOne() {
		t.Error("0.5 should not be > 1")
	}
	if !RateFromFloat(1.5).GreaterThanOne() {
		t.Error("1.5 should be > 1")
	}
}

func TestQuantityArithmetic(t *testing.T) {
	q := QuantityFromInt(10)
	q = q.Sub(QuantityFromInt(3))
	if q.AsInt64() != 7 {
		t.Errorf("q = %d, want 7", q.AsInt64())
	}
}
