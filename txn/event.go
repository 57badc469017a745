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
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// EventCategory enumerates spec.md §3's Transaction Event categories.
type EventCategory string

const (
	EventGeneral   EventCategory = "GENERAL"
	EventInventory EventCategory = "INVENTORY"
	EventPayment   EventCategory = "PAYMENT"
	EventError     EventCategory = "ERROR"
)

// Event is the tagged-variant replacement (spec.md §9) for the source's
// runtime-dispatched event-factory methods: one type, one constructor per
// category, encoded as jsonb via goccy/go-json.
type Event struct {
	ID                  uuid.UUID
	TransactionHeaderID uuid.UUID
	EventType           string
	Category            EventCategory
	Data                map[string]any
	Status              string
	EventTimestamp      time.Time
}

func newEvent(headerID uuid.UUID, eventType string, category EventCategory, data map[string]any, now time.Time) Event {
	return Event{
		ID:                  uuid.New(),
		TransactionHeaderID: headerID,
		EventType:           eventType,
		Category:            category,
		Data:                data,
		Status:              "RECORDED",
		EventTimestamp:      now,
	}
}

// NewTransactionEvent replaces the source's create_transaction_event.
func NewTransactionEvent(headerID uuid.UUID, data map[string]any, now time.Time) Event {
	return newEvent(headerID, "TRANSACTION", EventGeneral, data, now)
}

// NewInventoryEvent replaces the source's create_inventory_event.
func NewInventoryEvent(headerID uuid.UUID, data map[string]any, now time.Time) Event {
	return newEvent(headerID, "INVENTORY_UPDATE", EventInventory, data, now)
}

// NewPaymentEvent replaces the source's create_payment_event.
func NewPaymentEvent(headerID uuid.UUID, data map[string]any, now time.Time) Event {
	return newEvent(headerID, "PAYMENT_UPDATE", EventPayment, data, now)
}

// NewErrorEvent records a failed operation for audit purposes.
func NewErrorEvent(headerID uuid.UUID, data map[string]any, now time.Time) Event {
	return newEvent(headerID, "ERROR", EventError, data, now)
}

// EncodePayload marshals Data to the jsonb representation persisted in
// transaction_events.event_data.
func (e Event) EncodePayload() ([]byte, error) {
	return json.Marshal(e.Data)
}

// DecodePayload populates Data from a stored jsonb payload.
func (e *Event) DecodePayload(raw []byte) error {
	return json.Unmarshal(raw, &e.Data)
}
