// Package types provides shared data types used across the dupedog codebase.
package types

import (
	"cmp"
	"slices"
)

// FileRecord is one file considered by the pipeline.
//
// Dev and Ino are populated by the traverser on platforms that expose
// inode metadata (unix) and are never part of the public JSON shape -
// they only let the pipeline coalesce hardlinks before hashing. Two
// FileRecords with equal (Size, FullHash) are byte-identical regardless
// of Dev/Ino.
type FileRecord struct {
	Path        string `json:"path"`
	Size        uint64 `json:"size"`
	Modified    uint64 `json:"modified"`
	PartialHash string `json:"partial_hash,omitempty"`
	FullHash    string `json:"full_hash,omitempty"`

	Dev uint64 `json:"-"`
	Ino uint64 `json:"-"`
}

// HasInode reports whether Dev/Ino were populated by the traverser.
func (f *FileRecord) HasInode() bool { return f.Ino != 0 }

// CacheEntry is a persisted row keyed by Path.
//
// A stored (PartialHash, FullHash) is valid only while the corresponding
// file's (Size, Modified) still matches; any mismatch invalidates both
// hashes for that path.
type CacheEntry struct {
	Path        string
	Size        uint64
	Modified    uint64
	PartialHash string
	FullHash    string
}

// MatchesRecord reports whether this cache entry's (size, modified) is
// still valid for fr - i.e. the file has not changed since it was cached.
func (e *CacheEntry) MatchesRecord(fr *FileRecord) bool {
	return e.Size == fr.Size && e.Modified == fr.Modified
}

// ScanFilters controls which files the traverser admits.
type ScanFilters struct {
	ScanHidden  bool
	ScanImages  bool
	ScanVideos  bool
	ScanZips    bool
	MinFileSize uint64
}

// ScanConfig is the full set of inputs to a scan.
type ScanConfig struct {
	Roots     []string
	Filters   ScanFilters
	Workers   int
	CachePath string
}

// ScanResult is the final output of a scan: a list of duplicate groups,
// each with >= 2 byte-identical FileRecords.
type ScanResult struct {
	Groups [][]*FileRecord `json:"groups"`
}

// Semaphore implements a counting semaphore using a buffered channel.
// It limits concurrent access to a resource by blocking when the limit
// is reached.
type Semaphore chan struct{}

// NewSemaphore creates a semaphore that allows up to n concurrent
// acquisitions.
func NewSemaphore(n int) Semaphore { return make(chan struct{}, n) }

// Acquire blocks until a slot is available, then claims it.
func (s Semaphore) Acquire() { s <- struct{}{} }

// Release frees a slot, unblocking one waiting Acquire call.
func (s Semaphore) Release() { <-s }

// Sorted is an ordered collection that maintains sort order by a key
// function. T is the element type, K is the comparable key type. Once
// constructed, items are guaranteed to be sorted by key.
type Sorted[T any, K cmp.Ordered] struct {
	items []T
}

// NewSorted creates a sorted collection from items using keyFunc for
// ordering. Items are copied and sorted at construction time.
func NewSorted[T any, K cmp.Ordered](items []T, keyFunc func(T) K) Sorted[T, K] {
	sorted := make([]T, len(items))
	copy(sorted, items)
	slices.SortFunc(sorted, func(a, b T) int {
		return cmp.Compare(keyFunc(a), keyFunc(b))
	})
	return Sorted[T, K]{items: sorted}
}

// Items returns the sorted items.
func (s Sorted[T, K]) Items() []T { return s.items }

// Len returns the number of items.
func (s Sorted[T, K]) Len() int { return len(s.items) }
