package pipeline

import (
	"context"
	"testing"

	"github.com/ivoronin/dupedog/internal/progress"
	"github.com/ivoronin/dupedog/internal/types"
)

func TestHashPassPrefersCacheOverCompute(t *testing.T) {
	r := &types.FileRecord{Path: "/a", Size: 10, Modified: 5}
	snapshot := map[string]types.CacheEntry{
		"/a": {Path: "/a", Size: 10, Modified: 5, FullHash: "cached-hash"},
	}

	computeCalled := false
	hashed, persist := hashPass(context.Background(), []*types.FileRecord{r}, snapshot, 1, nil, 1,
		func(e types.CacheEntry) string { return e.FullHash },
		func(fr *types.FileRecord, h string) types.CacheEntry {
			fr.FullHash = h
			return types.CacheEntry{Path: fr.Path, Size: fr.Size, Modified: fr.Modified, FullHash: h}
		},
		func(path string, size int64) (string, bool) {
			computeCalled = true
			return "computed-hash", true
		},
	)

	if computeCalled {
		t.Error("compute was called despite a valid cache hit")
	}
	if len(hashed) != 1 || hashed[0].FullHash != "cached-hash" {
		t.Fatalf("got FullHash=%q, want cached-hash", hashed[0].FullHash)
	}
	if len(persist) != 1 || persist[0].FullHash != "cached-hash" {
		t.Fatalf("persist entry = %+v, want FullHash=cached-hash", persist)
	}
}

func TestHashPassFallsBackToComputeOnStaleCache(t *testing.T) {
	r := &types.FileRecord{Path: "/a", Size: 10, Modified: 99} // modified differs from cache
	snapshot := map[string]types.CacheEntry{
		"/a": {Path: "/a", Size: 10, Modified: 5, FullHash: "stale-hash"},
	}

	hashed, _ := hashPass(context.Background(), []*types.FileRecord{r}, snapshot, 1, nil, 1,
		func(e types.CacheEntry) string { return e.FullHash },
		func(fr *types.FileRecord, h string) types.CacheEntry {
			fr.FullHash = h
			return types.CacheEntry{Path: fr.Path, Size: fr.Size, Modified: fr.Modified, FullHash: h}
		},
		func(path string, size int64) (string, bool) { return "fresh-hash", true },
	)

	if hashed[0].FullHash != "fresh-hash" {
		t.Fatalf("got FullHash=%q, want fresh-hash (cache entry was stale)", hashed[0].FullHash)
	}
}

func TestHashPassCoalescesHardlinksIntoOneCompute(t *testing.T) {
	a := &types.FileRecord{Path: "/a", Size: 10, Dev: 1, Ino: 7}
	b := &types.FileRecord{Path: "/b", Size: 10, Dev: 1, Ino: 7}

	computeCount := 0
	hashed, persist := hashPass(context.Background(), []*types.FileRecord{a, b}, nil, 2, nil, 1,
		func(e types.CacheEntry) string { return e.FullHash },
		func(fr *types.FileRecord, h string) types.CacheEntry {
			fr.FullHash = h
			return types.CacheEntry{Path: fr.Path, Size: fr.Size, FullHash: h}
		},
		func(path string, size int64) (string, bool) {
			computeCount++
			return "shared-hash", true
		},
	)

	if computeCount != 1 {
		t.Fatalf("compute called %d times, want 1 (hardlinks should coalesce)", computeCount)
	}
	for _, r := range hashed {
		if r.FullHash != "shared-hash" {
			t.Errorf("record %s FullHash=%q, want shared-hash", r.Path, r.FullHash)
		}
	}
	if len(persist) != 2 {
		t.Fatalf("got %d persist entries, want 2 (one per path, even though compute ran once)", len(persist))
	}
}

func TestHashPassComputeFailureDropsRecordSilently(t *testing.T) {
	r := &types.FileRecord{Path: "/a", Size: 10}

	hashed, persist := hashPass(context.Background(), []*types.FileRecord{r}, nil, 1, nil, 1,
		func(e types.CacheEntry) string { return e.FullHash },
		func(fr *types.FileRecord, h string) types.CacheEntry {
			fr.FullHash = h
			return types.CacheEntry{Path: fr.Path, FullHash: h}
		},
		func(path string, size int64) (string, bool) { return "", false },
	)

	if len(persist) != 0 {
		t.Fatalf("got %d persist entries, want 0 when compute fails", len(persist))
	}
	if hashed[0].FullHash != "" {
		t.Fatalf("record was assigned a hash despite compute failing")
	}
}

func TestEmitProgressIfDueCrossesBoundary(t *testing.T) {
	ch := make(chan progress.Event, 10)
	sink := progress.Sink(ch)

	emitProgressIfDue(sink, 3, 5, 20, "/a", 5) // crosses from bucket 0 to bucket 1
	emitProgressIfDue(sink, 5, 6, 20, "/b", 5) // stays in bucket 1, no emit
	emitProgressIfDue(sink, 19, 20, 20, "/c", 5) // reaches total, always emits

	close(ch)
	var events []progress.Event
	for ev := range ch {
		events = append(events, ev)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (boundary-cross and final)", len(events))
	}
	if events[0].Current != 5 || events[1].Current != 20 {
		t.Fatalf("got events %+v, want Current 5 then 20", events)
	}
}
