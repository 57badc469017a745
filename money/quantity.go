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
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// QuantityScale is the minimum number of fractional digits a Quantity
// carries, to support fractional units (e.g. 0.5 m^3).
const QuantityScale = 2

// Quantity is a fixed-precision stock/line quantity. Unlike Money it is
// not rounded at construction — the underlying decimal keeps full
// precision. String formats to QuantityScale digits; Value and Scan pass
// the full-precision decimal to and from the database unchanged.
type Quantity struct {
	d decimal.Decimal
}

var ZeroQuantity = Quantity{d: decimal.Zero}

func NewQuantity(d decimal.Decimal) Quantity { return Quantity{d: d} }

func QuantityFromInt(i int64) Quantity { return Quantity{d: decimal.NewFromInt(i)} }

func QuantityFromFloat(f float64) Quantity { return Quantity{d: decimal.NewFromFloat(f)} }

func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	return Quantity{d: d}, nil
}

func (q Quantity) Decimal() decimal.Decimal { return q.d }

func (q Quantity) Add(o Quantity) Quantity { return Quantity{d: q.d.Add(o.d)} }
func (q Quantity) Sub(o Quantity) Quantity { return Quantity{d: q.d.Sub(o.d)} }
func (q Quantity) Neg() Quantity           { return Quantity{d: q.d.Neg()} }

func (q Quantity) IsZero() bool     { return q.d.IsZero() }
func (q Quantity) IsNegative() bool { return q.d.IsNegative() }
func (q Quantity) IsPositive() bool { return q.d.IsPositive() }

func (q Quantity) GreaterThan(o Quantity) bool         { return q.d.GreaterThan(o.d) }
func (q Quantity) GreaterThanOrEqual(o Quantity) bool  { return q.d.GreaterThanOrEqual(o.d) }
func (q Quantity) LessThan(o Quantity) bool            { return q.d.LessThan(o.d) }
func (q Quantity) LessThanOrEqual(o Quantity) bool     { return q.d.LessThanOrEqual(o.d) }
func (q Quantity) Equal(o Quantity) bool               { return q.d.Equal(o.d) }

// AsInt64 truncates to an integer count, used when a caller needs a plain
// unit count (e.g. number of serialized units to select).
func (q Quantity) AsInt64() int64 { return q.d.IntPart() }

func (q Quantity) String() string { return q.d.StringFixed(QuantityScale) }

func (q Quantity) Value() (driver.Value, error) { return q.d.Value() }

func (q *Quantity) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	q.d = d
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) { return q.d.MarshalJSON() }

func (q *Quantity) UnmarshalJSON(data []byte) error { return q.d.UnmarshalJSON(data) }
