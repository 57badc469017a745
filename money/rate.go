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

// RateScale is the number of fractional digits a Rate carries (tax and
// discount rates, expressed as a fraction of 1, e.g. 0.0825 for 8.25%).
const RateScale = 4

// Rate is a fixed-precision percentage/fraction used for tax and discount
// calculations.
type Rate struct {
	d decimal.Decimal
}

var ZeroRate = Rate{d: decimal.Zero}

func NewRate(d decimal.Decimal) Rate {
	return Rate{d: roundHalfUp(d, RateScale)}
}

func RateFromFloat(f float64) Rate {
	return NewRate(decimal.NewFromFloat(f))
}

func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, fmt.Errorf("parse rate %q: %w", s, err)
	}
	return NewRate(d), nil
}

func (r Rate) Decimal() decimal.Decimal { return r.d }

func (r Rate) IsZero() bool     { return r.d.IsZero() }
func (r Rate) IsNegative() bool { return r.d.IsNegative() }

// GreaterThanOne reports whether the rate exceeds 100%, used to validate
// discount rates per the ValidationError "discount > 100%" case in §7.
func (r Rate) GreaterThanOne() bool { return r.d.GreaterThan(decimal.NewFromInt(1)) }

func (r Rate) String() string { return r.d.StringFixed(RateScale) }

func (r Rate) Value() (driver.Value, error) { return r.d.Value() }

func (r *Rate) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	r.d = roundHalfUp(d, RateScale)
	return nil
}

func (r Rate) MarshalJSON() ([]byte, error) { return r.d.MarshalJSON() }

func (r *Rate) UnmarshalJSON(data []byte) error {
	if err := r.d.UnmarshalJSON(data); err != nil {
		return err
	}
	r.d = roundHalfUp(r.d, RateScale)
	return nil
}
