//go:build !unix

package scanner

import (
	"os"

	"github.com/ivoronin/dupedog/internal/types"
)

// newFileRecord builds a FileRecord from os.FileInfo. Dev/Ino are left
// zero on platforms without a syscall.Stat_t - hardlink coalescing
// simply becomes a no-op there, since every record is its own
// coalescing group.
func newFileRecord(path string, info os.FileInfo) *types.FileRecord {
	return &types.FileRecord{
		Path:     path,
		Size:     uint64(info.Size()),
		Modified: uint64(info.ModTime().Unix()),
	}
}
