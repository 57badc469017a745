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

// Package catalog holds the minimal reference-data entities (Location,
// Item, Customer, Supplier, Brand, Category) the transaction/inventory
// core validates against. Full master-data management (CRM, catalog
// editing UI) is an external collaborator per spec.md §1; this package
// owns only existence/active checks and the handful of item attributes
// C6/C7/C8 need.
package catalog

import (
	"github.com/google/uuid"

	"github.com/kestrel-holdings/rentalcore/audit"
	"github.com/kestrel-holdings/rentalcore/money"
)

// LocationType enumerates §3's location types.
type LocationType string

const (
	LocationStore          LocationType = "STORE"
	LocationWarehouse      LocationType = "WAREHOUSE"
	LocationServiceCenter  LocationType = "SERVICE_CENTER"
)

func (t LocationType) IsValid() bool {
	switch t {
	case LocationStore, LocationWarehouse, LocationServiceCenter:
		return true
	}
	return false
}

// Location is a physical site.
type Location struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Type        LocationType
	Address     string
	ContactName string
	ContactPhone string

	audit.Fields
}

// RentalPeriod enumerates the billing unit a rental rate is quoted per.
type RentalPeriod string

const (
	PeriodHourly  RentalPeriod = "HOURLY"
	PeriodDaily   RentalPeriod = "DAILY"
	PeriodWeekly  RentalPeriod = "WEEKLY"
	PeriodMonthly RentalPeriod = "MONTHLY"
)

// Item is a catalog entry referenced by stock levels, units, and lines.
type Item struct {
	ID                    uuid.UUID
	Name                  string
	SKU                   string
	BrandID               uuid.UUID
	CategoryID            uuid.UUID
	UnitOfMeasurement     string
	RentalRatePerPeriod   money.Money
	RentalPeriod          RentalPeriod
	SalePrice             money.Money
	PurchasePrice         money.Money
	SecurityDeposit       money.Money
	IsRentable            bool
	IsSaleable            bool
	SerialNumberRequired  bool

	audit.Fields
}

// Customer is a minimal existence/active record; full CRM is out of
// scope (spec.md §1).
type Customer struct {
	ID uuid.UUID
	Name string
	audit.Fields
}

// Supplier is a minimal existence/active record.
type Supplier struct {
	ID uuid.UUID
	Name string
	audit.Fields
}

// Brand backs the {brand} SKU template key and Item.BrandID.
type Brand struct {
	ID   uuid.UUID
	Name string
	Code string
	audit.Fields
}

// Category backs the {category} SKU template key and Item.CategoryID.
type Category struct {
	ID   uuid.UUID
	Name string
	Code string
	audit.Fields
}
