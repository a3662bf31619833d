// Package storage implements the result-persistence boundary (spec §4.2/§6):
// a key→JSON-document writer keyed by job id. Storage failures are logged
// but are never surfaced as a JobError and never trigger healing — the
// scheduler has already decided the job succeeded by the time Save is
// called.
package storage

import "github.com/weaver-engine/weaver/internal/models"

// Sink is the storage contract the scheduler depends on. Implementations
// must tolerate concurrent Save calls with distinct JobIDs; concurrent Save
// calls for the same JobID are last-write-wins and are the caller's problem
// to avoid (spec §5).
type Sink interface {
	Save(result *models.JobResult) error
}
