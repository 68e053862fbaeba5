// Package trash defines the boundary between this module and whatever
// collaborator actually moves files to the OS trash. This module never
// performs that move itself - deletion is always someone else's
// responsibility, reached through the Deleter interface below.
package trash

// DeleteResult reports how many of a requested batch of paths were
// successfully removed.
type DeleteResult struct {
	SuccessCount int
	FailCount    int
}

// Deleter removes files, typically by moving them to the platform
// trash/recycle bin rather than unlinking them outright. Implementations
// live outside this module; callers of the pipeline are expected to
// supply one when they want to act on a ScanResult.
type Deleter interface {
	Delete(paths []string) DeleteResult
}

// NullDeleter reports every path as failed without touching the
// filesystem. Useful where a Deleter is required but deletion is
// disabled.
type NullDeleter struct{}

// Delete implements Deleter by doing nothing.
func (NullDeleter) Delete(paths []string) DeleteResult {
	return DeleteResult{FailCount: len(paths)}
}

// RecordingDeleter captures every call it receives instead of deleting
// anything, so caller-side tests can assert on what would have been
// deleted.
type RecordingDeleter struct {
	Calls [][]string
}

// Delete records paths and reports success for all of them.
func (d *RecordingDeleter) Delete(paths []string) DeleteResult {
	d.Calls = append(d.Calls, append([]string(nil), paths...))
	return DeleteResult{SuccessCount: len(paths)}
}
