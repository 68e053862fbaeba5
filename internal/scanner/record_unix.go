//go:build unix

package scanner

import (
	"os"
	"syscall"

	"github.com/ivoronin/dupedog/internal/types"
)

// newFileRecord builds a FileRecord from os.FileInfo, populating Dev/Ino
// from the platform stat struct so the pipeline can coalesce hardlinks.
func newFileRecord(path string, info os.FileInfo) *types.FileRecord {
	fr := &types.FileRecord{
		Path:     path,
		Size:     uint64(info.Size()),
		Modified: uint64(info.ModTime().Unix()),
	}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		fr.Dev = uint64(stat.Dev) //nolint:unconvert // platform-dependent type
		fr.Ino = stat.Ino
	}
	return fr
}
