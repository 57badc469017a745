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

// Package loadsim drives concurrent workers against a live deployment to
// exercise the SKU-sequence row lock named in spec.md §5: many goroutines
// racing one sku.Repository.GenerateSKU scope should never observe a
// duplicate or a gap. Stock-level locking is not exercised here.
package loadsim

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/kestrel-holdings/rentalcore/sku"
)

// Workers drives N goroutines issuing SKUs against one sequence scope.
// It is a real concurrency harness, not a test double: it talks to the
// live pool behind sku.Repository the same way any other caller does.
type Workers struct {
	Repo  *sku.Repository
	Count int
	// RatePerSecond caps how fast workers hit the locked section, so a
	// demo run against a shared database stays well clear of pool
	// exhaustion and statement timeouts.
	RatePerSecond float64
}

// Report summarizes one run: the sequence numbers every worker observed,
// and whether the post-run scan found a duplicate or a gap.
type Report struct {
	Issued      int
	Duplicates  []int64
	Gaps        []int64
	Elapsed     time.Duration
	FirstErrors []error
}

// Run spins up w.Count goroutines, each issuing one SKU from the given
// scope, rate-limited by w.RatePerSecond, and scores every issued number
// in a concurrent-safe haxmap so the final gap/duplicate scan never races
// the workers that are still running.
func (w *Workers) Run(ctx context.Context, scope sku.NewParams, itemName string, actor uuid.UUID) (*Report, error) {
	seq, err := w.Repo.GetOrCreate(ctx, scope, actor, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("loadsim: get_or_create scope: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(w.RatePerSecond), 1)
	scoreboard := haxmap.New[int64, int]()
	var errCount int64
	var firstErrors []error
	var errMu sync.Mutex
	var duplicates []int64

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(w.Count)
	for i := 0; i < w.Count; i++ {
		go func(worker int) {
			defer wg.Done()
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			_, num, err := w.Repo.GenerateSKU(ctx, seq.ID, scope.Prefix, scope.Suffix, itemName, nil, actor, time.Now().UTC())
			if err != nil {
				atomic.AddInt64(&errCount, 1)
				errMu.Lock()
				if len(firstErrors) < 5 {
					firstErrors = append(firstErrors, err)
				}
				errMu.Unlock()
				return
			}
			if _, loaded := scoreboard.GetOrSet(num, worker); loaded {
				errMu.Lock()
				duplicates = append(duplicates, num)
				errMu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	var issued []int64
	scoreboard.ForEach(func(num int64, worker int) bool {
		issued = append(issued, num)
		return true
	})
	sort.Slice(issued, func(i, j int) bool { return issued[i] < issued[j] })

	report := &Report{
		Issued:      len(issued) + len(duplicates),
		Duplicates:  duplicates,
		Elapsed:     time.Since(start),
		FirstErrors: firstErrors,
	}

	seen := make(map[int64]bool, len(issued))
	for i, n := range issued {
		if seen[n] {
			report.Duplicates = append(report.Duplicates, n)
		}
		seen[n] = true
		if i > 0 && n != issued[i-1]+1 {
			for gap := issued[i-1] + 1; gap < n; gap++ {
				report.Gaps = append(report.Gaps, gap)
			}
		}
	}

	return report, nil
}
