package reporter

import (
	"testing"

	"github.com/ivoronin/dupedog/internal/types"
)

func TestReportProjectsGroupsVerbatim(t *testing.T) {
	a := &types.FileRecord{Path: "/a", Size: 10, FullHash: "h"}
	b := &types.FileRecord{Path: "/b", Size: 10, FullHash: "h"}

	result := Report([][]*types.FileRecord{{a, b}})

	if len(result.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(result.Groups))
	}
	if len(result.Groups[0]) != 2 {
		t.Fatalf("got %d records in group, want 2", len(result.Groups[0]))
	}
}

func TestReportNilGroupsYieldsEmptyResult(t *testing.T) {
	result := Report(nil)
	if len(result.Groups) != 0 {
		t.Fatalf("got %d groups, want 0", len(result.Groups))
	}
}
