// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package quota tracks the per-day message counter.
//
// The counter is scoped to the UTC calendar day, globally across sessions
// and profiles; it is compared against the active profile's daily limit at
// check time. There is no decrement and no reset: the day rolling over
// abandons the old key. Stale keys are pruned on write so the store does not
// grow without bound.
package quota

import (
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/divine-tui/internal/store"
)

// counterPrefix is the key prefix for per-day counters. The day components
// use the UTC year, zero-based month and day of month.
const counterPrefix = "divine_message_count_"

// retentionDays is how long abandoned day counters are kept before Increment
// prunes them.
const retentionDays = 30

// =============================================================================
// TRACKER
// =============================================================================

// Tracker reads and increments the day-scoped message counter.
type Tracker struct {
	store *store.Store

	// Now is the clock; overridable in tests. Defaults to time.Now.
	Now func() time.Time
}

// NewTracker creates a tracker backed by the given store.
func NewTracker(s *store.Store) *Tracker {
	return &Tracker{store: s, Now: time.Now}
}

// DayKey derives the counter key for the current UTC calendar day. Identical
// across calls within the same UTC day, unique across days.
func (t *Tracker) DayKey() string {
	return dayKeyFor(t.Now().UTC())
}

func dayKeyFor(day time.Time) string {
	day = day.UTC()
	return counterPrefix +
		strconv.Itoa(day.Year()) + "_" +
		strconv.Itoa(int(day.Month())-1) + "_" +
		strconv.Itoa(day.Day())
}

// Count returns today's counter, defaulting to zero when the key is absent
// or unparsable.
func (t *Tracker) Count() int {
	raw, ok := t.store.Get(t.DayKey())
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Increment adds one to today's counter, persists it best-effort, and
// returns the new value. Write failures leave the caller with the
// incremented value for this process; the counter simply won't survive a
// restart.
func (t *Tracker) Increment() int {
	n := t.Count() + 1
	if err := t.store.Set(t.DayKey(), strconv.Itoa(n)); err == nil {
		t.prune()
	}
	return n
}

// Exhausted reports whether today's counter has reached limit.
func (t *Tracker) Exhausted(limit int) bool {
	return t.Count() >= limit
}

// =============================================================================
// PRUNING
// =============================================================================

// prune deletes counter keys older than retentionDays. Piggybacks on writes
// so reads stay a single lookup.
func (t *Tracker) prune() {
	cutoff := t.Now().UTC().AddDate(0, 0, -retentionDays)

	for _, key := range t.store.Keys(counterPrefix) {
		day, ok := parseDayKey(key)
		if !ok {
			// Not a counter of ours; leave it alone.
			continue
		}
		if day.Before(cutoff) {
			t.store.Delete(key)
		}
	}
}

// parseDayKey recovers the UTC day from a counter key.
func parseDayKey(key string) (time.Time, bool) {
	rest := strings.TrimPrefix(key, counterPrefix)
	parts := strings.Split(rest, "_")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	year, err1 := strconv.Atoi(parts[0])
	month0, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month0 < 0 || month0 > 11 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month0+1), day, 0, 0, 0, 0, time.UTC), true
}
