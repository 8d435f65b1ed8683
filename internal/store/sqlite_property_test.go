package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: RecentTrades returns at most limit trades, ordered by entry
// time, and they are the latest ones the trader journaled.
func TestProperty_RecentTradesAreLatestInOrder(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "recent_property.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	run := 0

	properties.Property("recent trades are the latest, oldest first", prop.ForAll(
		func(offsets []int, limit int) bool {
			ctx := context.Background()
			run++
			user := fmt.Sprintf("user-%d", run)

			// Distinct entry minutes keep the expected order unambiguous.
			seen := map[int]bool{}
			var latest time.Time
			count := 0
			for i, off := range offsets {
				if seen[off] {
					continue
				}
				seen[off] = true
				entry := clock.Add(-time.Duration(off) * time.Minute)
				tr := openTrade(fmt.Sprintf("%s-%d", user, i), user, entry, 1)
				if err := store.SaveTrade(ctx, tr); err != nil {
					t.Logf("save failed: %v", err)
					return false
				}
				if entry.After(latest) {
					latest = entry
				}
				count++
			}

			got, err := store.RecentTrades(ctx, user, limit)
			if err != nil {
				return false
			}
			want := count
			if limit < want {
				want = limit
			}
			if len(got) != want {
				return false
			}
			for i := 1; i < len(got); i++ {
				if !got[i-1].EntryTime.Before(got[i].EntryTime) {
					return false
				}
			}
			if count > 0 && !got[len(got)-1].EntryTime.Equal(latest) {
				return false
			}
			return true
		},
		gen.SliceOfN(15, gen.IntRange(0, 10000)),
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
