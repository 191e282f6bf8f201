package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// Record is one phase-transition or failover entry in the persisted run
// log (spec.md §6 "Persisted state"): {task_id, timestamp, action,
// provider, outcome, details, screenshot_ref?, error?}.
type Record struct {
	TaskID        string            `json:"task_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Action        string            `json:"action"`
	Provider      string            `json:"provider"`
	Outcome       model.Outcome     `json:"outcome"`
	Details       map[string]string `json:"details,omitempty"`
	ScreenshotRef string            `json:"screenshot_ref,omitempty"`
	Error         *model.ErrorInfo  `json:"error,omitempty"`
}

// Log is an append-only, one-file-per-task JSON-lines writer: one file per
// task_id so concurrent runs never interleave writes.
type Log struct {
	dir string
	mu  sync.Mutex
	fh  map[string]*os.File
}

func NewLog(dir string) *Log {
	return &Log{dir: dir, fh: make(map[string]*os.File)}
}

func (l *Log) Append(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.fh[r.TaskID]
	if !ok {
		if err := os.MkdirAll(l.dir, 0o755); err != nil {
			return fmt.Errorf("create audit dir: %w", err)
		}
		path := filepath.Join(l.dir, r.TaskID+".jsonl")
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open audit file: %w", err)
		}
		l.fh[r.TaskID] = f
	}

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}

// Close releases the open file handle for a finished task.
func (l *Log) Close(taskID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, ok := l.fh[taskID]
	if !ok {
		return nil
	}
	delete(l.fh, taskID)
	return f.Close()
}
