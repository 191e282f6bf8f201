package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

func TestLog_AppendWritesOneFilePerTask(t *testing.T) {
	dir := t.TempDir()
	l := NewLog(dir)

	require.NoError(t, l.Append(Record{
		TaskID: "task-a", Timestamp: time.Now(), Action: "LOGIN",
		Provider: "dom", Outcome: model.OutcomeSuccess,
	}))
	require.NoError(t, l.Append(Record{
		TaskID: "task-a", Timestamp: time.Now(), Action: "FILL_CONTENT",
		Provider: "dom", Outcome: model.OutcomeSuccess,
	}))
	require.NoError(t, l.Append(Record{
		TaskID: "task-b", Timestamp: time.Now(), Action: "LOGIN",
		Provider: "dom", Outcome: model.OutcomeFailed,
		Error: &model.ErrorInfo{Kind: model.ErrAuthRejected, Message: "bad creds"},
	}))
	require.NoError(t, l.Close("task-a"))
	require.NoError(t, l.Close("task-b"))

	aLines := readLines(t, filepath.Join(dir, "task-a.jsonl"))
	require.Len(t, aLines, 2)

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(aLines[0]), &rec))
	assert.Equal(t, "task-a", rec.TaskID)
	assert.Equal(t, "LOGIN", rec.Action)

	bLines := readLines(t, filepath.Join(dir, "task-b.jsonl"))
	require.Len(t, bLines, 1)
	require.NoError(t, json.Unmarshal([]byte(bLines[0]), &rec))
	require.NotNil(t, rec.Error)
	assert.Equal(t, model.ErrAuthRejected, rec.Error.Kind)
}

func TestLog_CloseUnknownTaskIsNoop(t *testing.T) {
	l := NewLog(t.TempDir())
	assert.NoError(t, l.Close("never-appended"))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}
