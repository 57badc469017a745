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

	"github.com/google/uuid"
)

func TestEventPayloadRoundTrip(t *testing.T) {
	headerID := uuid.New()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	ev := NewPaymentEvent(headerID, map[string]any{
		"amount": "40.00",
		"method": "CARD",
	}, now)

	raw, err := ev.EncodePayload()
	if err != nil {
		t.Fatal(err)
	}

	var decoded Event
	if err := decoded.DecodePayload(raw); err != nil {
		t.Fatal(err)
	}
	if decoded.Data["amount"] != "40.00" || decoded.Data["method"] != "CARD" {
		t.Fatalf("decoded payload = %+v, want amount/method preserved", decoded.Data)
	}
}

func TestEventConstructorsSetCategoryAndType(t *testing.T) {
	headerID := uuid.New()
	now := time.Now()

	cases := []struct {
		name      string
		ev        Event
		wantType  string
		wantCat   EventCategory
	}{
		{"transaction", NewTransactionEvent(headerID, nil, now), "TRANSACTION", EventGeneral},
		{"inventory", NewInventoryEvent(headerID, nil, now), "INVENTORY_UPDATE", EventInventory},
		{"payment", NewPaymentEvent(headerID, nil, now), "PAYMENT_UPDATE", EventPayment},
		{"error", NewErrorEvent(headerID, nil, now), "ERROR", EventError},
	}
	for _, c := range cases {
		if c.ev.EventType != c.wantType {
			t.Errorf("%s: EventType = %s, want %s", c.name, c.ev.EventType, c.wantType)
		}
		if c.ev.Category != c.wantCat {
			t.Errorf("%s: Category = %s, want %s", c.name, c.ev.Category, c.wantCat)
		}
		if c.ev.TransactionHeaderID != headerID {
			t.Errorf("%s: TransactionHeaderID not propagated", c.name)
		}
		if c.ev.Status != "RECORDED" {
			t.Errorf("%s: Status = %s, want RECORDED", c.name, c.ev.Status)
		}
	}
}
