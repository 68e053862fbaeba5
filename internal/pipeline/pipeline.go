// Package pipeline orchestrates the three-pass duplicate-elimination
// algorithm: group by size, confirm with a cheap partial hash, confirm
// survivors with a full hash, then persist every computed hash to the
// cache in one batch.
//
// # Why three passes
//
// Hashing is the expensive operation. Grouping by size for free
// eliminates most files. Of what remains, a 16KiB-ish partial hash
// eliminates most non-duplicates without reading the rest of the file.
// Only true candidates pay for a full streaming hash. Each pass's
// survivors strictly shrink the candidate set, so later passes are
// always cheaper than they would be without the passes before them.
//
// # Concurrency
//
// Pass 0 fans the traverser out across roots in parallel. Pass 2 and
// Pass 3 each hash their candidate set in parallel, bounded by a
// semaphore sized to the caller's worker count. There is no ordering
// guarantee within a pass; the only ordering guarantee is between
// passes - Pass 2 completes fully before Pass 3 begins, and the cache
// write in Pass 4 happens after Pass 3.
package pipeline

import (
	"context"
	"sync"

	"github.com/ivoronin/dupedog/internal/cache"
	"github.com/ivoronin/dupedog/internal/hasher"
	"github.com/ivoronin/dupedog/internal/progress"
	"github.com/ivoronin/dupedog/internal/reporter"
	"github.com/ivoronin/dupedog/internal/scanner"
	"github.com/ivoronin/dupedog/internal/types"
)

// progressPartialInterval is the cadence at which Pass 2 emits progress
// events - every 5 records, since partial hashing is cheap.
const progressPartialInterval = 5

// StartScan runs the full pipeline over cfg and returns the resulting
// equivalence groups. The only error this can return is a failure to
// read the cache snapshot - everything else (unreadable files, broken
// roots, cache write failures) degrades the result quietly, per the
// correctness-preserving-over-complete error policy: a missed
// duplicate is always safer than a false-positive group.
//
// sink receives progress events and may be nil. errSink receives
// non-fatal errors for diagnostics (directories the traverser could
// not list, and a failed cache write) and may be nil; sends to it
// never block.
func StartScan(ctx context.Context, cfg types.ScanConfig, sink progress.Sink, hashCache *cache.Cache, errSink chan<- error) (types.ScanResult, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	// Pass 0: traverse every root in parallel, concatenate.
	all := traverseRoots(ctx, cfg.Roots, cfg.Filters, workers, errSink)
	if len(all) == 0 {
		return types.ScanResult{}, nil
	}

	// Pass 1: group by size, discard singletons.
	bySize := make(map[uint64][]*types.FileRecord)
	for _, r := range all {
		bySize[r.Size] = append(bySize[r.Size], r)
	}
	var s1 []*types.FileRecord
	for _, group := range bySize {
		if len(group) >= 2 {
			s1 = append(s1, group...)
		}
	}
	if len(s1) == 0 {
		return types.ScanResult{}, nil
	}

	snapshot, err := hashCache.Snapshot()
	if err != nil {
		return types.ScanResult{}, err
	}

	var toPersist []types.CacheEntry

	// Pass 2: partial hash.
	partialHashed, persistFromPass2 := hashPass(ctx, s1, snapshot, workers, sink, progressPartialInterval,
		func(e types.CacheEntry) string { return e.PartialHash },
		func(r *types.FileRecord, h string) types.CacheEntry {
			r.PartialHash = h
			return types.CacheEntry{Path: r.Path, Size: r.Size, Modified: r.Modified, PartialHash: h}
		},
		func(path string, size int64) (string, bool) { return hasher.Partial(path, size) },
	)
	toPersist = append(toPersist, persistFromPass2...)

	byPartial := make(map[sizeHashKey][]*types.FileRecord)
	for _, r := range partialHashed {
		if r.PartialHash == "" {
			continue
		}
		key := sizeHashKey{r.Size, r.PartialHash}
		byPartial[key] = append(byPartial[key], r)
	}
	var s2 []*types.FileRecord
	for _, group := range byPartial {
		if len(group) >= 2 {
			s2 = append(s2, group...)
		}
	}

	if len(s2) == 0 {
		if err := hashCache.BatchUpsert(toPersist); err != nil {
			logUpsertFailure(errSink, err)
		}
		return types.ScanResult{}, nil
	}

	// Pass 3: full hash.
	fullHashed, persistFromPass3 := hashPass(ctx, s2, snapshot, workers, sink, 1,
		func(e types.CacheEntry) string { return e.FullHash },
		func(r *types.FileRecord, h string) types.CacheEntry {
			r.FullHash = h
			return types.CacheEntry{Path: r.Path, Size: r.Size, Modified: r.Modified, FullHash: h}
		},
		func(path string, _ int64) (string, bool) { return hasher.Full(path) },
	)
	toPersist = append(toPersist, persistFromPass3...)

	byFull := make(map[sizeHashKey][]*types.FileRecord)
	for _, r := range fullHashed {
		if r.FullHash == "" {
			continue
		}
		key := sizeHashKey{r.Size, r.FullHash}
		byFull[key] = append(byFull[key], r)
	}
	var groups [][]*types.FileRecord
	for _, group := range byFull {
		if len(group) >= 2 {
			groups = append(groups, group)
		}
	}

	// Pass 4: persist every record that ended the scan with a hash,
	// including singletons, so a future scan can reuse the work.
	if err := hashCache.BatchUpsert(toPersist); err != nil {
		logUpsertFailure(errSink, err)
	}

	return reporter.Report(groups), nil
}

type sizeHashKey struct {
	size uint64
	hash string
}

// traverseRoots fans scanner.Scan out across roots in parallel and
// concatenates the results. Order across roots (and within a root) is
// unspecified.
func traverseRoots(ctx context.Context, roots []string, filters types.ScanFilters, workers int, errSink chan<- error) []*types.FileRecord {
	type rootResult struct {
		records []*types.FileRecord
	}

	results := make([]rootResult, len(roots))
	var wg sync.WaitGroup
	for i, root := range roots {
		wg.Add(1)
		go func(i int, root string) {
			defer wg.Done()
			results[i] = rootResult{records: scanner.Scan(ctx, root, filters, workers, errSink)}
		}(i, root)
	}
	wg.Wait()

	var all []*types.FileRecord
	for _, r := range results {
		all = append(all, r.records...)
	}
	return all
}

func logUpsertFailure(errSink chan<- error, err error) {
	if errSink == nil {
		return
	}
	select {
	case errSink <- err:
	default:
	}
}
