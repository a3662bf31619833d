package models

// JobResult is the outcome of a successfully executed Job (spec §3). Output
// maps a synthetic per-action key (spec §4.4's "<verb>:<discriminator>"
// scheme, or a bare verb for singleton actions) to that action's returned
// JSON-able value.
type JobResult struct {
	JobID   string                 `json:"job_id"`
	Success bool                   `json:"success"`
	Output  map[string]interface{} `json:"output"`
}

// NewJobResult returns a successful, empty-output result ready for actions
// to populate.
func NewJobResult(jobID string) *JobResult {
	return &JobResult{
		JobID:   jobID,
		Success: true,
		Output:  make(map[string]interface{}),
	}
}
