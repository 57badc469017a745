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
package unit

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCanTransitionGraph(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{Available, Rented, true},
		{Available, Reserved, true},
		{Available, Sold, true},
		{Available, UnderRepair, true},
		{Available, Damaged, true},
		{Available, Lost, true},
		{Available, BeyondRepair, false},
		{Reserved, Available, true},
		{Reserved, Rented, true},
		{Reserved, Damaged, false},
		{Rented, Available, true},
		{Rented, Damaged, true},
		{Rented, BeyondRepair, true},
		{Rented, Lost, true},
		{Rented, Sold, false},
		{UnderRepair, Available, true},
		{UnderRepair, BeyondRepair, true},
		{UnderRepair, Rented, false},
		{Damaged, UnderRepair, true},
		{Damaged, BeyondRepair, true},
		{Damaged, Available, true},
		{BeyondRepair, Available, false},
		{Sold, Available, false},
		{Lost, Available, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestTransitionRejectsDamagedToAvailableWithoutRepair(t *testing.T) {
	u := Unit{Status: Damaged, Condition: ConditionDamaged}
	if _, err := u.Transition(Available, Good, uuid.New(), time.Now()); err == nil {
		t.Fatal("expected IllegalStateTransitionError for unrepaired unit")
	}
}

func TestTransitionAllowsDamagedToAvailableAfterRepair(t *testing.T) {
	now := time.Now()
	u := Unit{Status: Damaged, Condition: ConditionDamaged}
	repaired := u.RecordRepair(now, uuid.New())

	next, err := repaired.Transition(Available, Good, uuid.New(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Status != Available || next.Condition != Good {
		t.Fatalf("unexpected post-transition state: %+v", next)
	}
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	u := Unit{Status: Sold}
	if _, err := u.Transition(Available, "", uuid.New(), time.Now()); err == nil {
		t.Fatal("expected IllegalStateTransitionError from a terminal status")
	}
}

func TestIsRentalEligible(t *testing.T) {
	cases := []struct {
		name string
		u    Unit
		want bool
	}{
		{"available unblocked", Unit{Status: Available, IsRentalBlocked: false}, true},
		{"available blocked", Unit{Status: Available, IsRentalBlocked: true}, false},
		{"reserved", Unit{Status: Reserved}, false},
		{"rented", Unit{Status: Rented}, false},
	}
	for _, c := range cases {
		if got := c.u.IsRentalEligible(); got != c.want {
			t.Errorf("%s: IsRentalEligible() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestStatusAndConditionValidity(t *testing.T) {
	if !Available.IsValid() || Status("BOGUS").IsValid() {
		t.Fatal("Status.IsValid misbehaves")
	}
	if !Good.IsValid() || Condition("BOGUS").IsValid() {
		t.Fatal("Condition.IsValid misbehaves")
	}
}
