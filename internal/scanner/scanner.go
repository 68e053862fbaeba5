// Package scanner provides parallel filesystem scanning for duplicate
// detection - the Traverser of the three-pass pipeline.
//
// # Concurrency Model
//
// Scan employs a fan-out/fan-in architecture per root:
//
//  1. WALKER GOROUTINES (fan-out) - one per directory discovered,
//     concurrency bounded by a semaphore sized to the caller's worker
//     count. Each walker acquires the semaphore, lists its directory,
//     hands admitted files to the collector, spawns a walker per
//     subdirectory, then releases the semaphore.
//  2. COLLECTOR GOROUTINE (fan-in) - drains the result channel into a
//     slice. Runs until the channel is closed.
//
// Symbolic links are never followed - entries are only admitted if
// their directory entry type is a regular file, which also excludes
// devices and sockets. I/O errors on individual entries are swallowed
// without a report; a directory that cannot be listed is skipped and
// its error is sent on errSink. The root itself failing to open yields
// an empty result, never an error return, per the "local recovery
// dominates" error policy.
package scanner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ivoronin/dupedog/internal/types"
)

// batchSize bounds how many directory entries are read per ReadDir
// call, keeping memory bounded when listing directories with millions
// of entries.
const batchSize = 1000

// Scan walks root and returns every regular file beneath it that
// passes filters, with Size and Modified populated and both hashes
// empty. Ordering is unspecified.
//
// ctx is checked between directories (cooperative cancellation only -
// a walker already mid-listing finishes that listing). errSink receives
// the non-fatal errors of directories that could not be listed (and of
// a root that cannot be made absolute); it may be nil.
func Scan(ctx context.Context, root string, filters types.ScanFilters, workers int, errSink chan<- error) []*types.FileRecord {
	if workers < 1 {
		workers = 1
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		sendError(errSink, err)
		return nil
	}

	w := &walker{
		ctx:      ctx,
		filters:  filters,
		sem:      types.NewSemaphore(workers),
		resultCh: make(chan *types.FileRecord, 1000),
		errSink:  errSink,
	}

	var results []*types.FileRecord
	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for r := range w.resultCh {
			results = append(results, r)
		}
	}()

	w.walkDirectory(absRoot)
	w.wg.Wait()
	close(w.resultCh)
	collectorWg.Wait()

	return results
}

type walker struct {
	ctx     context.Context
	filters types.ScanFilters
	sem     types.Semaphore
	errSink chan<- error

	wg       sync.WaitGroup
	resultCh chan *types.FileRecord
}

func (w *walker) walkDirectory(dir string) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		if w.ctx != nil && w.ctx.Err() != nil {
			return
		}

		w.sem.Acquire()
		defer w.sem.Release()

		files, subdirs, err := w.listDirectory(dir)
		if err != nil {
			sendError(w.errSink, err)
			return
		}

		for _, f := range files {
			w.resultCh <- f
		}

		for _, sub := range subdirs {
			w.walkDirectory(sub)
		}
	}()
}

// listDirectory reads a single directory, returning admitted files and
// subdirectories to recurse into. This is the only place directory I/O
// occurs - protected by the walker's semaphore.
func (w *walker) listDirectory(dirPath string) (files []*types.FileRecord, subdirs []string, err error) {
	dir, err := os.Open(dirPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = dir.Close() }()

	for {
		entries, err := dir.ReadDir(batchSize)
		if len(entries) == 0 {
			if err != nil && err != io.EOF {
				return files, subdirs, err
			}
			break
		}

		for _, entry := range entries {
			f, sub := w.processEntry(dirPath, entry)
			if f != nil {
				files = append(files, f)
			}
			if sub != "" {
				subdirs = append(subdirs, sub)
			}
		}
	}

	return files, subdirs, nil
}

// processEntry applies the filtering pipeline to one directory entry,
// in the order specified: absolute-path blacklist, directory-name
// blacklist (pruning), hidden filter, extension whitelist, size floor.
func (w *walker) processEntry(dirPath string, entry os.DirEntry) (file *types.FileRecord, subdir string) {
	name := entry.Name()
	fullPath := filepath.Join(dirPath, name)

	if isPathBlacklisted(fullPath) {
		return nil, ""
	}

	if entry.IsDir() {
		if isDirBlacklisted(name) {
			return nil, ""
		}
		if !w.filters.ScanHidden && isHidden(name) {
			return nil, ""
		}
		return nil, fullPath
	}

	// Symlinks, devices, sockets, etc. are never admitted.
	if !entry.Type().IsRegular() {
		return nil, ""
	}

	if !w.filters.ScanHidden && isHidden(name) {
		return nil, ""
	}

	if !admitExtension(name, w.filters) {
		return nil, ""
	}

	info, err := entry.Info()
	if err != nil {
		return nil, "" // race or permission error: drop silently
	}

	if uint64(info.Size()) < w.filters.MinFileSize {
		return nil, ""
	}

	return newFileRecord(fullPath, info), ""
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

func sendError(errSink chan<- error, err error) {
	if errSink == nil || err == nil {
		return
	}
	select {
	case errSink <- err:
	default:
	}
}
