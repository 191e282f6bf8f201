package orchestrator

import (
	"context"
	"strconv"
	"time"

	"github.com/kingofalbert/publish-orchestrator/internal/cache"
	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

type phaseFn func(ctx context.Context, rs *runState) *model.PhaseError

// runPhase implements the per-phase retry loop and one-shot failover from
// §4.7. It is the only place retry_count is incremented and the only
// place failover fires.
func (o *Orchestrator) runPhase(ctx context.Context, rs *runState, phase model.Phase, fn phaseFn) *model.PhaseError {
	localRetries := 0

	for {
		if ctx.Err() != nil {
			// Whole-run deadline expired (§5): cancel cooperatively, never
			// retry, let the caller route through recovery as TIMEOUT.
			return model.NewPhaseError(model.ErrTimeout, "run deadline expired before phase "+string(phase), ctx.Err())
		}

		start := time.Now()
		err := fn(ctx, rs)
		elapsed := time.Since(start)

		if o.Metrics != nil {
			o.Metrics.OperationDuration.WithLabelValues(string(phase), rs.pctx.CurrentProvider).Observe(elapsed.Seconds())
		}
		if o.Perf != nil {
			o.Perf.Record(perfRecordFor(phase, rs.pctx.CurrentProvider, start, err))
		}

		if err == nil {
			rs.pctx.CompletedPhases = append(rs.pctx.CompletedPhases, phase)
			rs.phaseResults = append(rs.phaseResults, model.PhaseResult{
				Action:  string(phase),
				Target:  rs.pctx.CurrentProvider,
				Outcome: model.OutcomeSuccess,
			})
			o.logAudit(rs, string(phase), model.OutcomeSuccess, nil, "")
			return nil
		}

		if o.Metrics != nil {
			o.Metrics.OperationErrors.WithLabelValues(string(phase), rs.pctx.CurrentProvider, string(err.Kind)).Inc()
		}

		if !err.Transient {
			// FATAL: no in-provider retry. PROVIDER_EXHAUSTED below is the
			// only fatal kind that still attempts failover.
			rs.phaseResults = append(rs.phaseResults, model.PhaseResult{
				Action: string(phase), Target: rs.pctx.CurrentProvider, Outcome: model.OutcomeFailed,
			})
			o.logAudit(rs, string(phase), model.OutcomeFailed, map[string]string{"error_kind": string(err.Kind)}, "")
			return err
		}

		localRetries++
		rs.pctx.RetryCount++
		if localRetries <= o.Settings.MaxRetries {
			rs.phaseResults = append(rs.phaseResults, model.PhaseResult{
				Action: string(phase), Target: rs.pctx.CurrentProvider, Outcome: model.OutcomeRetried,
			})
			o.logAudit(rs, string(phase), model.OutcomeRetried, map[string]string{"error_kind": string(err.Kind), "attempt": strconv.Itoa(localRetries)}, "")
			delay := o.Settings.RetryBaseDelay * time.Duration(localRetries)
			select {
			case <-ctx.Done():
				return model.NewPhaseError(model.ErrTimeout, "run deadline expired during retry backoff", ctx.Err())
			case <-time.After(delay):
			}
			continue
		}

		// Retries exhausted on this provider.
		rs.phaseResults = append(rs.phaseResults, model.PhaseResult{
			Action: string(phase), Target: rs.pctx.CurrentProvider, Outcome: model.OutcomeFailed,
		})
		exhausted := model.NewPhaseError(model.ErrProviderExhausted, "retries exhausted on provider "+rs.pctx.CurrentProvider, err)
		o.logAudit(rs, string(phase), model.OutcomeFailed, map[string]string{"error_kind": string(exhausted.Kind)}, "")

		if o.canFailover(rs) {
			if failoverErr := o.failover(ctx, rs, phase); failoverErr != nil {
				return failoverErr
			}
			localRetries = 0
			continue // restart the current phase on the new provider
		}

		return exhausted
	}
}

// runTerminalPhase issues the TERMINAL phase exactly once. Unlike
// runPhase, it never retries and never fails over: spec.md §4.7's
// "never re-issue the terminal call" discipline means any failure here
// — transient-classified or not — must flow straight to the caller's
// handleTerminalFailure reconciliation. Running phaseTerminal through
// the generic retry loop would retry a transient-classified failure
// (ELEMENT_NOT_FOUND/NAVIGATION_TIMEOUT both are, per
// internal/model/errors.go), land back on phaseTerminal's
// already-called guard, and return nil — fabricating a success the
// provider never confirmed.
func (o *Orchestrator) runTerminalPhase(ctx context.Context, rs *runState) *model.PhaseError {
	start := time.Now()
	err := o.phaseTerminal(ctx, rs)
	elapsed := time.Since(start)

	if o.Metrics != nil {
		o.Metrics.OperationDuration.WithLabelValues(string(model.PhaseTerminal), rs.pctx.CurrentProvider).Observe(elapsed.Seconds())
	}
	if o.Perf != nil {
		o.Perf.Record(perfRecordFor(model.PhaseTerminal, rs.pctx.CurrentProvider, start, err))
	}

	if err == nil {
		rs.pctx.CompletedPhases = append(rs.pctx.CompletedPhases, model.PhaseTerminal)
		rs.phaseResults = append(rs.phaseResults, model.PhaseResult{
			Action:  string(model.PhaseTerminal),
			Target:  rs.pctx.CurrentProvider,
			Outcome: model.OutcomeSuccess,
		})
		o.logAudit(rs, string(model.PhaseTerminal), model.OutcomeSuccess, nil, "")
		return nil
	}

	if o.Metrics != nil {
		o.Metrics.OperationErrors.WithLabelValues(string(model.PhaseTerminal), rs.pctx.CurrentProvider, string(err.Kind)).Inc()
	}
	rs.phaseResults = append(rs.phaseResults, model.PhaseResult{
		Action: string(model.PhaseTerminal), Target: rs.pctx.CurrentProvider, Outcome: model.OutcomeFailed,
	})
	o.logAudit(rs, string(model.PhaseTerminal), model.OutcomeFailed, map[string]string{"error_kind": string(err.Kind)}, "")
	return err
}

func (o *Orchestrator) canFailover(rs *runState) bool {
	return o.Settings.FallbackEnabled && !rs.fallbackFired && o.Settings.FallbackProvider != "" &&
		o.Settings.FallbackProvider != rs.pctx.CurrentProvider
}

func perfRecordFor(phase model.Phase, providerName string, start time.Time, err *model.PhaseError) cache.OperationRecord {
	rec := cache.OperationRecord{
		Name:    string(phase) + "/" + providerName,
		Start:   start,
		End:     time.Now(),
		Success: err == nil,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
