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
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary renders a human-readable operational snapshot in Markdown,
// intended for terminal rendering via glamour.
func (s *Store) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	fmt.Fprintf(&builder, "# %s\n\n", s.Name)
	builder.WriteString("## Details\n\n")
	fmt.Fprintf(&builder, "Owner: %s\n\n", s.Owner)

	locationCount, err := s.ActiveLocationCount(ctx)
	if err != nil {
		return "", err
	}
	p.Fprintf(&builder, "  * Active Locations: %d\n", locationCount)

	itemCount, err := s.ActiveItemCount(ctx)
	if err != nil {
		return "", err
	}
	p.Fprintf(&builder, "  * Active Items: %d\n", itemCount)

	openTxns, err := s.OpenTransactionCount(ctx)
	if err != nil {
		return "", err
	}
	p.Fprintf(&builder, "  * Open Transactions: %d\n", openTxns)

	onHand, err := s.TotalOnHandQuantity(ctx)
	if err != nil {
		return "", err
	}
	p.Fprintf(&builder, "  * Total On-Hand Quantity: %.2f\n\n", onHand)

	lastMovement, err := s.LastMovementAt(ctx)
	if err != nil {
		return "", err
	}
	if lastMovement.Equal(time.Time{}) {
		builder.WriteString("Last Movement: Never\n")
	} else {
		age := timeago.English.Format(lastMovement)
		fmt.Fprintf(&builder, "Last Movement: %s (%s)\n", age, lastMovement.Local().Format("01/02/2006"))
	}

	return builder.String(), nil
}
