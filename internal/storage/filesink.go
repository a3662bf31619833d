package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/weaver-engine/weaver/internal/models"
)

// FileSink is the default Sink: one pretty-printed JSON file per job at
// <folder>/<job_id>.json (spec §4.2/§6). Writes are last-write-wins, the
// same contract the teacher's BadgerDB connection documents for its own
// on-disk store.
type FileSink struct {
	folder string
	logger arbor.ILogger
}

// NewFileSink creates the output folder (if missing) and returns a sink
// rooted at it.
func NewFileSink(folder string, logger arbor.ILogger) (*FileSink, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage folder %q: %w", folder, err)
	}
	return &FileSink{folder: folder, logger: logger}, nil
}

// Save writes result to <folder>/<job_id>.json. A write failure is returned
// to the caller (the scheduler logs it) but — per spec §4.2 — never changes
// the JobResult.Success already reported.
func (s *FileSink) Save(result *models.JobResult) error {
	path := filepath.Join(s.folder, result.JobID+".json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", result.JobID).Msg("Failed to marshal job result")
		return fmt.Errorf("failed to marshal result for job %q: %w", result.JobID, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		s.logger.Warn().Err(err).Str("job_id", result.JobID).Str("path", path).Msg("Failed to write job result")
		return fmt.Errorf("failed to write result for job %q: %w", result.JobID, err)
	}

	s.logger.Debug().Str("job_id", result.JobID).Str("path", path).Msg("Job result saved")
	return nil
}
