// Package hasher computes content digests used to confirm duplicate
// files.
//
// Two digests are produced. The partial hash is cheap: it reads only
// the head of a file, plus its tail for files large enough that a
// shared container header (MP4, MKV, JPEG variants commonly share
// multi-kilobyte headers) would otherwise force every file of that
// format into full hashing. The full hash streams the entire file and
// is the authoritative identity of its bytes.
//
// Both operations are pure - they never touch the hash cache. Caching
// cached-vs-computed decisions is the pipeline's responsibility.
package hasher

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

const (
	// probeSize is the size of the head/tail read for the partial hash.
	probeSize = 16 * 1024
	// partialThreshold is the file size above which the tail is also read.
	partialThreshold = 32 * 1024
	// blockSize is the read buffer size used while streaming the full hash.
	blockSize = 64 * 1024
)

// Partial computes the partial hash of the file at path, sized size
// bytes. It reads up to probeSize bytes from the start, and - if size
// exceeds partialThreshold - an additional probeSize bytes from the
// tail. Both chunks feed the same hash context, head first.
//
// Returns ("", false) for empty files, unreadable files, or any I/O
// error - the caller drops the record from later passes in that case.
func Partial(path string, size int64) (digest string, ok bool) {
	if size <= 0 {
		return "", false
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()

	headN, err := io.CopyN(h, f, probeSize)
	if err != nil && err != io.EOF {
		return "", false
	}
	if headN == 0 {
		return "", false
	}

	if size > partialThreshold {
		tailStart := size - probeSize
		if _, err := f.Seek(tailStart, io.SeekStart); err != nil {
			return "", false
		}
		if _, err := io.CopyN(h, f, probeSize); err != nil && err != io.EOF {
			return "", false
		}
	}

	return hex.EncodeToString(h.Sum(nil)), true
}

// Full streams the entire file at path through the hash context using
// a blockSize buffer and returns the finalized digest.
//
// Returns ("", false) on any I/O error.
func Full(path string) (digest string, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	buf := make([]byte, blockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", false
	}

	return hex.EncodeToString(h.Sum(nil)), true
}
