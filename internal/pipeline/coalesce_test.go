package pipeline

import (
	"testing"

	"github.com/ivoronin/dupedog/internal/types"
)

func TestCoalesceByInodeGroupsSharedInode(t *testing.T) {
	a := &types.FileRecord{Path: "/a", Dev: 1, Ino: 100}
	b := &types.FileRecord{Path: "/b", Dev: 1, Ino: 100} // hardlink of a
	c := &types.FileRecord{Path: "/c", Dev: 1, Ino: 200}

	groups := coalesceByInode([]*types.FileRecord{a, b, c})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	sizes := map[int]int{}
	for _, g := range groups {
		sizes[len(g)]++
	}
	if sizes[2] != 1 || sizes[1] != 1 {
		t.Fatalf("got group sizes %v, want one pair and one singleton", sizes)
	}
}

func TestCoalesceByInodeNoInodeIsAllSingletons(t *testing.T) {
	a := &types.FileRecord{Path: "/a"}
	b := &types.FileRecord{Path: "/b"}

	groups := coalesceByInode([]*types.FileRecord{a, b})
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2 singletons for records with no inode info", len(groups))
	}
}

func TestCoalesceByInodeEmptyInput(t *testing.T) {
	if groups := coalesceByInode(nil); len(groups) != 0 {
		t.Fatalf("got %d groups for nil input, want 0", len(groups))
	}
}
