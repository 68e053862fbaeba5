// Package reporter shapes the pipeline's final duplicate groups into
// the caller-facing ScanResult. It holds no logic of its own - every
// invariant (size/hash equality, minimum cardinality, uniqueness) is
// already established by the pipeline; this is a thin projection.
package reporter

import "github.com/ivoronin/dupedog/internal/types"

// Report projects groups - each already confirmed byte-identical and
// of length >= 2 - into a ScanResult. Group and record order is
// unspecified.
func Report(groups [][]*types.FileRecord) types.ScanResult {
	return types.ScanResult{Groups: groups}
}
