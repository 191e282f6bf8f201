// Package recovery implements C6: the post-failure "demote to draft" and
// state-capture strategy (spec.md §4.6).
package recovery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kingofalbert/publish-orchestrator/internal/audit"
	"github.com/kingofalbert/publish-orchestrator/internal/model"
	"github.com/kingofalbert/publish-orchestrator/internal/provider"
)

// Record is the state captured into the run log on terminal failure.
type Record struct {
	Timestamp    time.Time
	ErrorKind    model.ErrorKind
	ErrorMessage string
	Screenshot   string
	PostID       string
	DraftSaved   bool
	RecoveryErr  string
}

// Strategy attempts save_draft() on the active provider, best-effort and
// bounded by a short timeout, then captures a Record. Recovery failure is
// logged but never re-raised — the original failure is what the caller
// sees (§4.6).
type Strategy struct {
	Timeout time.Duration
	Log     *zap.Logger
	Shots   *audit.ScreenshotStore
}

func New(log *zap.Logger, shots *audit.ScreenshotStore) *Strategy {
	return &Strategy{Timeout: 15 * time.Second, Log: log, Shots: shots}
}

func (s *Strategy) Recover(ctx context.Context, p provider.Provider, originalErr *model.PhaseError) Record {
	rec := Record{
		Timestamp:    time.Now(),
		ErrorKind:    originalErr.Kind,
		ErrorMessage: originalErr.Message,
	}

	if postID, err := p.GetCurrentPostID(ctx); err == nil {
		rec.PostID = postID
	}
	if shot, err := p.CaptureScreenshot(ctx); err == nil && s.Shots != nil {
		if ref, err := s.Shots.Put(shot); err == nil {
			rec.Screenshot = ref
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	if err := p.SaveDraft(timeoutCtx); err != nil {
		rec.DraftSaved = false
		rec.RecoveryErr = err.Error()
		s.Log.Warn("recovery save_draft failed",
			zap.String("original_error_kind", string(originalErr.Kind)),
			zap.Error(err))
	} else {
		rec.DraftSaved = true
	}

	return rec
}
