package storage

import (
	"encoding/json"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/weaver-engine/weaver/internal/models"
)

// BadgerSink is an alternative Sink backed by an embedded BadgerDB instance
// instead of one file per job, for deployments that would rather not grow a
// directory unbounded. Same contract as FileSink: Save is last-write-wins,
// keyed by job id, and storage failures never affect JobResult.Success.
//
// Grounded in the teacher's internal/storage/badger connection setup, but
// using the raw badger API directly rather than badgerhold — this sink only
// ever needs Get/Set by a single string key, no secondary indexes.
type BadgerSink struct {
	db     *badger.DB
	logger arbor.ILogger
}

// NewBadgerSink opens (or creates) a BadgerDB database at path.
func NewBadgerSink(path string, logger arbor.ILogger) (*BadgerSink, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %q: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("Badger result sink opened")
	return &BadgerSink{db: db, logger: logger}, nil
}

// Save writes result under the key "result:<job_id>".
func (s *BadgerSink) Save(result *models.JobResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", result.JobID).Msg("Failed to marshal job result")
		return fmt.Errorf("failed to marshal result for job %q: %w", result.JobID, err)
	}

	key := []byte("result:" + result.JobID)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", result.JobID).Msg("Failed to write job result to badger")
		return fmt.Errorf("failed to write result for job %q: %w", result.JobID, err)
	}

	s.logger.Debug().Str("job_id", result.JobID).Msg("Job result saved to badger")
	return nil
}

// Get retrieves a previously saved result, used by tests and by operators
// inspecting a running store. Not part of the Sink interface — it's a
// read-path convenience specific to this implementation.
func (s *BadgerSink) Get(jobID string) (*models.JobResult, error) {
	var result models.JobResult
	key := []byte("result:" + jobID)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &result)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read result for job %q: %w", jobID, err)
	}
	return &result, nil
}

// Close releases the underlying database handle.
func (s *BadgerSink) Close() error {
	return s.db.Close()
}
