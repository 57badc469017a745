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

// Package money provides fixed-precision decimal types for monetary
// amounts, rates, and quantities so the core never derives a persisted
// value from a floating-point computation.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits a Money value carries.
const Scale = 2

// Money is a fixed-precision monetary amount, always rounded half-up to
// two fractional digits at construction.
type Money struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Money{d: decimal.Zero}

// NewMoney rounds d half-up to Scale and wraps it.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: roundHalfUp(d, Scale)}
}

// MoneyFromFloat builds a Money from a float64. Reserved for literal
// constants and test fixtures — computed results must flow through
// decimal.Decimal end to end, never through float64.
func MoneyFromFloat(f float64) Money {
	return NewMoney(decimal.NewFromFloat(f))
}

// ParseMoney parses a decimal string.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return NewMoney(d), nil
}

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Add(o Money) Money { return NewMoney(m.d.Add(o.d)) }
func (m Money) Sub(o Money) Money { return NewMoney(m.d.Sub(o.d)) }
func (m Money) Neg() Money        { return NewMoney(m.d.Neg()) }

// Mul multiplies by an arbitrary decimal (e.g. a Quantity) and rounds the
// result to Scale.
func (m Money) Mul(d decimal.Decimal) Money { return NewMoney(m.d.Mul(d)) }

// MulRate applies a Rate (e.g. a tax or discount rate) and rounds to Scale.
func (m Money) MulRate(r Rate) Money { return NewMoney(m.d.Mul(r.d)) }

func (m Money) IsZero() bool     { return m.d.IsZero() }
func (m Money) IsNegative() bool { return m.d.IsNegative() }
func (m Money) IsPositive() bool { return m.d.IsPositive() }

func (m Money) GreaterThan(o Money) bool      { return m.d.GreaterThan(o.d) }
func (m Money) GreaterThanOrEqual(o Money) bool { return m.d.GreaterThanOrEqual(o.d) }
func (m Money) LessThan(o Money) bool         { return m.d.LessThan(o.d) }
func (m Money) LessThanOrEqual(o Money) bool  { return m.d.LessThanOrEqual(o.d) }
func (m Money) Equal(o Money) bool            { return m.d.Equal(o.d) }
func (m Money) Cmp(o Money) int               { return m.d.Cmp(o.d) }

// Max returns the larger of two Money values. It does not clamp: if both
// are negative the result is negative (see MaxZero for clamping).
func Max(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// MaxZero clamps m to be no lower than zero — used for refund/balance
// computations that must never go negative.
func MaxZero(m Money) Money {
	if m.IsNegative() {
		return Zero
	}
	return m
}

func (m Money) String() string { return m.d.StringFixed(Scale) }

func (m Money) Value() (driver.Value, error) { return m.d.Value() }

func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.d = roundHalfUp(d, Scale)
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) { return m.d.MarshalJSON() }

func (m *Money) UnmarshalJSON(data []byte) error {
	if err := m.d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.d = roundHalfUp(m.d, Scale)
	return nil
}

// roundHalfUp rounds d to the given number of fractional digits using
// round-half-away-from-zero, since decimal.Decimal.Round uses half-even.
func roundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	exp := decimal.New(1, places)
	shifted := d.Mul(exp)
	half := decimal.NewFromFloat(0.5)
	var rounded decimal.Decimal
	if shifted.IsNegative() {
		rounded = shifted.Sub(half).Ceil()
	} else {
		rounded = shifted.Add(half).Floor()
	}
	return rounded.DivRound(exp, places+4).Truncate(places)
}
