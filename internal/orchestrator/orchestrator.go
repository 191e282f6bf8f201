// Package orchestrator implements C7: the phase-sequencing, retry,
// failover, and session-handoff state machine (spec.md §4.7). It is the
// only component that owns a provider instance; providers own the
// browser/session beneath them (§9 "one-way dependency").
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingofalbert/publish-orchestrator/internal/audit"
	"github.com/kingofalbert/publish-orchestrator/internal/cache"
	"github.com/kingofalbert/publish-orchestrator/internal/config"
	"github.com/kingofalbert/publish-orchestrator/internal/metrics"
	"github.com/kingofalbert/publish-orchestrator/internal/model"
	"github.com/kingofalbert/publish-orchestrator/internal/provider"
	"github.com/kingofalbert/publish-orchestrator/internal/recovery"
	"github.com/kingofalbert/publish-orchestrator/internal/safety"
)

// ProviderFactory builds a fresh, unstarted Provider instance. The
// orchestrator owns the instance it builds for the lifetime of one run;
// failover discards it and builds a new one from the fallback factory.
type ProviderFactory func() provider.Provider

// Orchestrator drives one publish_article run at a time per instance
// (spec.md §5 "cooperative, single-task-per-run"); run N instances
// concurrently for parallelism.
type Orchestrator struct {
	Settings     config.Settings
	Selectors    *config.SelectorBundle
	Instructions *config.InstructionBundle

	Providers map[string]ProviderFactory // keyed by provider name ("dom", "llm")

	// CostEstimators supplies the §4.8 cost curve for each provider name.
	// dom's estimator ignores token count; llm's scales with it via the
	// provider's optional tokenReporter.
	CostEstimators map[string]metrics.CostEstimator

	Safety   *safety.Validator
	Recovery *recovery.Strategy
	Metrics  *metrics.Sink
	Cache    *cache.SelectorCache
	Perf     *cache.PerfTracker
	Audit    *audit.Log
	Shots    *audit.ScreenshotStore
	Log      *zap.Logger
	Now      func() time.Time

	registry *runRegistry
	once     sync.Once
}

// runState is the per-run mutable scratch space the phase functions share.
// It wraps model.PublishContext plus bookkeeping the model type doesn't
// need to expose publicly.
type runState struct {
	pctx           model.PublishContext
	provider       provider.Provider
	phaseResults   []model.PhaseResult
	warnings       []string
	screenshots    []string
	safetyReport   safety.Report
	terminalCalled bool
	startTime      time.Time
	fallbackFired  bool
}

// Publish is the single public entry point (spec.md §6). Callable
// concurrently from multiple tasks; each call gets its own PublishContext.
func (o *Orchestrator) Publish(ctx context.Context, req model.PublishRequest) (model.PublishResult, error) {
	if err := req.Validate(); err != nil {
		return model.PublishResult{Success: false, Error: &model.ErrorInfo{
			Kind: model.ErrInvalidArticleKind, Message: err.Error(),
		}}, nil
	}

	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	o.once.Do(func() { o.registry = newRunRegistry() })

	taskID := uuid.NewString()
	rs := &runState{
		pctx: model.PublishContext{
			TaskID:          taskID,
			Request:         req,
			CurrentProvider: o.Settings.DefaultProvider,
			StartedAt:       now(),
		},
		startTime: now(),
	}

	runCtx, cancel := context.WithTimeout(ctx, o.Settings.RunTimeout)
	defer cancel()

	o.registry.put(rs)
	defer o.registry.remove(taskID)

	result := o.run(runCtx, rs)
	result.DurationSeconds = now().Sub(rs.startTime).Seconds()

	outcome := "failure"
	if result.Success {
		outcome = "success"
	}
	if o.Metrics != nil {
		o.Metrics.ArticlesTotal.WithLabelValues(outcome, result.ProviderUsed).Inc()
		o.Metrics.PublishDuration.WithLabelValues(result.ProviderUsed).Observe(result.DurationSeconds)
	}
	_ = o.Audit.Close(taskID)

	return result, nil
}

// run drives the phase sequence in order (§4.7), building the final
// PublishResult. Errors from individual phases are handled by runPhase;
// run just sequences the calls and reacts to SAFETY_BLOCKED / timeout /
// unrecoverable failure.
func (o *Orchestrator) run(ctx context.Context, rs *runState) model.PublishResult {
	if err := o.runPhase(ctx, rs, model.PhaseInitialize, o.phaseInitialize); err != nil {
		return o.terminalFailure(rs, err)
	}
	if err := o.runPhase(ctx, rs, model.PhaseLogin, o.phaseLogin); err != nil {
		return o.terminalFailure(rs, err)
	}
	if err := o.runPhase(ctx, rs, model.PhaseFillContent, o.phaseFillContent); err != nil {
		return o.terminalFailure(rs, err)
	}
	if err := o.runPhase(ctx, rs, model.PhaseSaveDraft, o.phaseSaveDraft); err != nil {
		return o.terminalFailure(rs, err)
	}

	if len(rs.pctx.Request.Images) > 0 {
		if err := o.runPhase(ctx, rs, model.PhaseProcessImages, o.phaseProcessImages); err != nil {
			return o.terminalFailure(rs, err)
		}
	}
	if err := o.runPhase(ctx, rs, model.PhaseSetSEO, o.phaseSetSEO); err != nil {
		return o.terminalFailure(rs, err)
	}
	if taxonomyPresent(rs.pctx.Request.Taxonomy) {
		if err := o.runPhase(ctx, rs, model.PhaseSetTaxonomy, o.phaseSetTaxonomy); err != nil {
			return o.terminalFailure(rs, err)
		}
	}
	if len(rs.pctx.Request.RelatedArticles) > 0 {
		if err := o.runPhase(ctx, rs, model.PhaseInsertRelated, o.phaseInsertRelated); err != nil {
			return o.terminalFailure(rs, err)
		}
	}
	if len(rs.pctx.Request.FAQs) > 0 {
		if err := o.runPhase(ctx, rs, model.PhaseInsertFAQ, o.phaseInsertFAQ); err != nil {
			return o.terminalFailure(rs, err)
		}
	}

	// Safety gate: runs exactly once, only when intent != SAVE_DRAFT.
	if rs.pctx.Request.Intent.Kind != model.IntentSaveDraft {
		if err := o.runPhase(ctx, rs, model.PhaseSafetyGate, o.phaseSafetyGate); err != nil {
			return o.terminalFailure(rs, err)
		}
		if !rs.safetyReport.Safe {
			pe := model.NewPhaseError(model.ErrSafetyBlocked, "safety gate reported a critical failure", nil)
			return o.terminalFailure(rs, pe)
		}
	}

	if err := o.runTerminalPhase(ctx, rs); err != nil {
		return o.handleTerminalFailure(ctx, rs, err)
	}
	if err := o.runPhase(ctx, rs, model.PhaseCaptureURL, o.phaseCaptureURL); err != nil {
		// URL capture failing after a successful terminal call is reported
		// as success-with-warning; the publish already happened.
		rs.warnings = append(rs.warnings, "failed to capture published URL: "+err.Error())
	} else {
		o.verifyPublishedURL(rs)
	}
	_ = o.runPhase(ctx, rs, model.PhaseClose, o.phaseClose)

	return o.success(rs)
}

func taxonomyPresent(t model.Taxonomy) bool {
	return t.PrimaryCategory != "" || len(t.SecondaryCategories) > 0 || len(t.Tags) > 0
}

// tokenReporter is an optional capability providers may implement to report
// per-run token consumption (only the llm provider does); recordCost treats
// its absence as zero tokens, matching the dom provider's constant cost.
type tokenReporter interface {
	TokenUsage() int
}

func (o *Orchestrator) recordCost(rs *runState) {
	estimator, ok := o.CostEstimators[rs.pctx.CurrentProvider]
	if !ok {
		return
	}
	tokens := 0
	if tr, ok := rs.provider.(tokenReporter); ok {
		tokens = tr.TokenUsage()
	}
	cost := estimator(len(rs.pctx.Request.Images) > 0, tokens)
	rs.pctx.CostUSD += cost
	if o.Metrics != nil {
		o.Metrics.CostEstimateDollars.WithLabelValues(rs.pctx.CurrentProvider, string(rs.pctx.Request.Intent.Kind)).Add(cost)
	}
}

func (o *Orchestrator) success(rs *runState) model.PublishResult {
	o.recordCost(rs)
	return model.PublishResult{
		Success:           true,
		TaskID:            rs.pctx.TaskID,
		URL:               rs.pctx.PublishedURL,
		ProviderUsed:      rs.pctx.CurrentProvider,
		FallbackTriggered: rs.pctx.FallbackTriggered,
		RetryCount:        rs.pctx.RetryCount,
		CostUSD:           rs.pctx.CostUSD,
		Phases:            rs.phaseResults,
		Screenshots:       rs.screenshots,
		Warnings:          rs.warnings,
	}
}

func (o *Orchestrator) terminalFailure(rs *runState, pe *model.PhaseError) model.PublishResult {
	o.recordCost(rs)
	// SAFETY_BLOCKED never routes through recovery's save_draft attempt in
	// a way that would retry the terminal write, but the draft itself may
	// already exist from PhaseSaveDraft — recovery just records that.
	var recRecord recovery.Record
	if rs.provider != nil && o.Recovery != nil {
		recCtx := context.Background()
		recRecord = o.Recovery.Recover(recCtx, rs.provider, pe)
		o.logAudit(rs, "recovery", model.OutcomeSuccess, map[string]string{
			"draft_saved": fmt.Sprintf("%v", recRecord.DraftSaved),
		}, "")
	}

	meta := map[string]string{}
	if recRecord.DraftSaved {
		meta["draft_saved"] = "true"
		meta["post_id"] = recRecord.PostID
	}

	return model.PublishResult{
		Success:      false,
		TaskID:       rs.pctx.TaskID,
		ProviderUsed: rs.pctx.CurrentProvider,
		FallbackTriggered: rs.pctx.FallbackTriggered,
		RetryCount:   rs.pctx.RetryCount,
		CostUSD:      rs.pctx.CostUSD,
		Error:        &model.ErrorInfo{Kind: pe.Kind, Message: pe.Message},
		Phases:       rs.phaseResults,
		Screenshots:  rs.screenshots,
		Warnings:     rs.warnings,
		Metadata:     meta,
	}
}

// handleTerminalFailure implements the "ambiguous state" reconciliation
// from §4.7: after the terminal call fails, never re-issue it; query
// introspection and report success-with-warning if there's evidence of
// publication, otherwise fail and route through recovery.
func (o *Orchestrator) handleTerminalFailure(ctx context.Context, rs *runState, pe *model.PhaseError) model.PublishResult {
	if rs.provider != nil {
		postID, _ := rs.provider.GetCurrentPostID(ctx)
		url, urlErr := rs.provider.GetPublishedURL(ctx)
		if postID != "" || (urlErr == nil && url != "") {
			rs.pctx.PublishedURL = url
			rs.pctx.PostID = postID
			rs.warnings = append(rs.warnings, string(model.ErrAmbiguousPublish)+": "+pe.Message)
			result := o.success(rs)
			// Surface the ambiguity even though the run is reported as a
			// success, per spec.md scenario 6.
			return result
		}
	}
	return o.terminalFailure(rs, pe)
}

func (o *Orchestrator) logAudit(rs *runState, action string, outcome model.Outcome, details map[string]string, screenshotRef string) {
	if o.Audit == nil {
		return
	}
	_ = o.Audit.Append(audit.Record{
		TaskID:        rs.pctx.TaskID,
		Timestamp:     time.Now(),
		Action:        action,
		Provider:      rs.pctx.CurrentProvider,
		Outcome:       outcome,
		Details:       details,
		ScreenshotRef: screenshotRef,
	})
}
