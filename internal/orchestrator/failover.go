package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// failover implements the protocol from §4.7: capture cookies, close the
// current provider, initialize the fallback with those cookies, flip the
// context flags, and let the caller restart the failed phase.
func (o *Orchestrator) failover(ctx context.Context, rs *runState, failedPhase model.Phase) *model.PhaseError {
	fromName := rs.pctx.CurrentProvider
	toName := o.Settings.FallbackProvider

	var cookies []model.Cookie
	if rs.provider != nil {
		cookies, _ = rs.provider.GetCookies(ctx) // best-effort per §4.7 step 1
		_ = rs.provider.Close(ctx)               // step 2
	}

	factory, ok := o.Providers[toName]
	if !ok {
		return model.NewPhaseError(model.ErrProviderExhausted, "fallback provider "+toName+" is not configured", nil)
	}
	next := factory()
	if err := next.Initialize(ctx, rs.pctx.Request.TargetCMS.URL, cookies); err != nil {
		return model.NewPhaseError(model.ErrProviderExhausted, "fallback provider failed to initialize", err)
	}

	rs.provider = next
	rs.pctx.SessionCookies = cookies
	rs.pctx.FallbackTriggered = true
	rs.pctx.CurrentProvider = toName
	rs.fallbackFired = true

	if o.Metrics != nil {
		o.Metrics.FallbackTotal.WithLabelValues(fromName, toName, string(failedPhase)).Inc()
	}
	o.Log.Warn("provider failover",
		zap.String("task_id", rs.pctx.TaskID),
		zap.String("from", fromName),
		zap.String("to", toName),
		zap.String("failed_phase", string(failedPhase)))
	o.logAudit(rs, "failover", model.OutcomeSuccess, map[string]string{"from": fromName, "to": toName, "phase": string(failedPhase)}, "")

	return nil
}
