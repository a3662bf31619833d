package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/weaver-engine/weaver/internal/models"
)

func TestFileSinkSaveWritesReadableJSON(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, arbor.NewLogger())
	require.NoError(t, err)

	result := models.NewJobResult("job-1")
	result.Output["extract:h1"] = []string{"Hi", "Yo"}

	require.NoError(t, sink.Save(result))

	data, err := os.ReadFile(filepath.Join(dir, "job-1.json"))
	require.NoError(t, err)

	var reread models.JobResult
	require.NoError(t, json.Unmarshal(data, &reread))
	assert.Equal(t, "job-1", reread.JobID)
	assert.True(t, reread.Success)
	assert.ElementsMatch(t, []interface{}{"Hi", "Yo"}, reread.Output["extract:h1"])
}

func TestFileSinkSaveOverwritesExistingResult(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(dir, arbor.NewLogger())
	require.NoError(t, err)

	first := models.NewJobResult("job-2")
	first.Output["extract:h1"] = "first"
	require.NoError(t, sink.Save(first))

	second := models.NewJobResult("job-2")
	second.Output["extract:h1"] = "second"
	require.NoError(t, sink.Save(second))

	data, err := os.ReadFile(filepath.Join(dir, "job-2.json"))
	require.NoError(t, err)
	var reread models.JobResult
	require.NoError(t, json.Unmarshal(data, &reread))
	assert.Equal(t, "second", reread.Output["extract:h1"])
}

func TestNewFileSinkCreatesMissingFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	_, err := NewFileSink(dir, arbor.NewLogger())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
