package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ivoronin/dupedog/internal/progress"
	"github.com/ivoronin/dupedog/internal/types"
)

// hashPass hashes every coalescing group in records, preferring a
// cache hit over calling compute, and returns the (mutated in place)
// input records alongside a CacheEntry for every record that ended
// this pass with a hash - including records whose group turned out to
// be a singleton, so the work is never wasted on a future scan.
//
// cachedHash extracts the relevant hash field from a types.CacheEntry.
// assign stores the computed hash on a record and builds the
// CacheEntry to persist for it. compute invokes the Hasher when no
// cache hit is available.
func hashPass(
	ctx context.Context,
	records []*types.FileRecord,
	snapshot map[string]types.CacheEntry,
	workers int,
	sink progress.Sink,
	progressInterval int64,
	cachedHash func(types.CacheEntry) string,
	assign func(r *types.FileRecord, hash string) types.CacheEntry,
	compute func(path string, size int64) (string, bool),
) (hashed []*types.FileRecord, persist []types.CacheEntry) {
	total := int64(len(records))
	groups := coalesceByInode(records)

	sem := types.NewSemaphore(workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var processed atomic.Int64

	for _, group := range groups {
		wg.Add(1)
		go func(group []*types.FileRecord) {
			defer wg.Done()

			if ctx != nil && ctx.Err() != nil {
				return
			}

			sem.Acquire()
			defer sem.Release()

			rep := group[0]
			hash, ok := resolveGroupHash(group, rep, snapshot, cachedHash, compute)

			if ok {
				entries := make([]types.CacheEntry, 0, len(group))
				for _, r := range group {
					entries = append(entries, assign(r, hash))
				}
				mu.Lock()
				persist = append(persist, entries...)
				mu.Unlock()
			}

			newCount := processed.Add(int64(len(group)))
			prevCount := newCount - int64(len(group))
			emitProgressIfDue(sink, prevCount, newCount, total, rep.Path, progressInterval)
		}(group)
	}
	wg.Wait()

	return records, persist
}

// resolveGroupHash returns the hash shared by every record in group:
// a cached value if any member's path has a valid cache entry for the
// given field, otherwise the result of computing it once on rep.
func resolveGroupHash(
	group []*types.FileRecord,
	rep *types.FileRecord,
	snapshot map[string]types.CacheEntry,
	cachedHash func(types.CacheEntry) string,
	compute func(path string, size int64) (string, bool),
) (string, bool) {
	for _, r := range group {
		entry, found := snapshot[r.Path]
		if !found || !entry.MatchesRecord(r) {
			continue
		}
		if h := cachedHash(entry); h != "" {
			return h, true
		}
	}

	return compute(rep.Path, int64(rep.Size))
}

// emitProgressIfDue emits an event when the running count crosses an
// interval boundary, or once the pass is fully done. Crossing
// (instead of exact multiples) keeps cadence correct even when a
// coalesced group advances the count by more than one record at once.
func emitProgressIfDue(sink progress.Sink, prevCount, newCount, total int64, file string, interval int64) {
	if interval < 1 {
		interval = 1
	}
	due := newCount/interval != prevCount/interval || newCount == total
	if due {
		progress.Emit(sink, newCount, total, file)
	}
}
