package pipeline

import "github.com/ivoronin/dupedog/internal/types"

// inodeKey identifies a file by device and inode, the same pair
// os.SameFile uses to recognize hardlinks. Two records sharing an
// inodeKey are guaranteed byte-identical without hashing either.
type inodeKey struct {
	dev, ino uint64
}

// coalesceByInode partitions records sharing an inode into groups, so
// the caller hashes one representative per group instead of once per
// path. Records with no inode information (HasInode() == false, e.g.
// on platforms without syscall.Stat_t) are never coalesced - each is
// its own singleton group.
//
// This is an I/O-avoidance optimization only: final duplicate status is
// always decided by comparing (size, hash) across records, so failing
// to coalesce two hardlinks just costs extra I/O, and an incorrect
// coalesce of two distinct files is not possible since (dev, ino) is
// the operating system's own unique identifier for a file.
func coalesceByInode(records []*types.FileRecord) [][]*types.FileRecord {
	byInode := make(map[inodeKey][]*types.FileRecord)
	var groups [][]*types.FileRecord

	for _, r := range records {
		if !r.HasInode() {
			groups = append(groups, []*types.FileRecord{r})
			continue
		}
		key := inodeKey{r.Dev, r.Ino}
		byInode[key] = append(byInode[key], r)
	}

	for _, g := range byInode {
		groups = append(groups, g)
	}

	return groups
}
