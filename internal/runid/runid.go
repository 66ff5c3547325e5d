// Package runid generates the run identifier used to name checkpoint and
// report files for one orchestrator invocation.
package runid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a fresh run ID: a UUIDv4, unique per process invocation.
func New() string {
	return uuid.NewString()
}

// Timestamp formats t the way report/state filenames embed it:
// YYYYMMDD_HHMMSS, matching the teacher's deterministic-filename convention.
func Timestamp(t time.Time) string {
	return t.UTC().Format("20060102_150405")
}

// ReportFilename returns the stem (without extension) for a report pair
// emitted at t, e.g. "crawl_report_20260729_120000".
func ReportFilename(t time.Time) string {
	return fmt.Sprintf("crawl_report_%s", Timestamp(t))
}

// CheckpointFilename returns the state filename for a frontier checkpoint
// taken at t under the given run ID.
func CheckpointFilename(runID string, t time.Time) string {
	return fmt.Sprintf("checkpoint_%s_%s", runID, Timestamp(t))
}
