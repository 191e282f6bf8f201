// Package safety implements the C5 preflight gate (spec.md §4.5): a fixed
// sequence of checks run immediately before the terminal publish branch.
package safety

import (
	"context"
	"time"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
	"github.com/kingofalbert/publish-orchestrator/internal/provider"
)

// Check is one named preflight result.
type Check struct {
	Name     string
	Passed   bool
	Message  string
	Critical bool
}

// Report is the outcome of the whole preflight sequence.
type Report struct {
	Safe     bool
	Checks   []Check
	Warnings []string
	Errors   []string
}

// Clock lets tests substitute a fixed "now" for the schedule-validity check.
type Clock func() time.Time

// Validator runs the fixed preflight sequence from §4.5.
type Validator struct {
	Now Clock
}

func New() *Validator {
	return &Validator{Now: time.Now}
}

// Validate runs every check and returns a Report. Only Critical failures
// set Safe=false; the orchestrator aborts publish on any critical failure.
func (v *Validator) Validate(ctx context.Context, req model.PublishRequest, p provider.Provider) Report {
	var report Report
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}

	addCheck := func(c Check) {
		report.Checks = append(report.Checks, c)
		if !c.Passed {
			if c.Critical {
				report.Errors = append(report.Errors, c.Message)
			} else {
				report.Warnings = append(report.Warnings, c.Message)
			}
		}
	}

	// 1. Title presence and length — critical.
	titleOK := len(req.Article.Title) >= 5
	addCheck(Check{
		Name:     "title_length",
		Passed:   titleOK,
		Critical: true,
		Message:  checkMessage(titleOK, "title length ok", "title shorter than 5 characters"),
	})

	// 2. Body presence and length — critical.
	bodyOK := len(req.Article.Body) >= 50
	addCheck(Check{
		Name:     "body_length",
		Passed:   bodyOK,
		Critical: true,
		Message:  checkMessage(bodyOK, "body length ok", "body shorter than 50 characters"),
	})

	// 3. Draft status — critical.
	draftOK := false
	if err := withTimeout(ctx, 10*time.Second, func(c context.Context) error {
		ok, err := p.VerifyDraftStatus(c)
		draftOK = ok
		return err
	}); err != nil {
		draftOK = false
	}
	addCheck(Check{
		Name:     "draft_status",
		Passed:   draftOK,
		Critical: true,
		Message:  checkMessage(draftOK, "draft status verified", "provider could not verify draft status"),
	})

	// 4. Content saved — non-critical.
	savedOK := false
	if err := withTimeout(ctx, 10*time.Second, func(c context.Context) error {
		ok, err := p.VerifyContentSaved(c)
		savedOK = ok
		return err
	}); err != nil {
		savedOK = false
	}
	addCheck(Check{
		Name:     "content_saved",
		Passed:   savedOK,
		Critical: false,
		Message:  checkMessage(savedOK, "content saved", "provider reports content not confirmed saved"),
	})

	// 5. Intent echo — non-critical, always recorded for audit.
	addCheck(Check{
		Name:     "intent_echo",
		Passed:   true,
		Critical: false,
		Message:  "intent=" + string(req.Intent.Kind),
	})

	// 6. Taxonomy presence — non-critical.
	taxOK := req.Taxonomy.PrimaryCategory != "" || len(req.Taxonomy.SecondaryCategories) > 0
	addCheck(Check{
		Name:     "taxonomy_presence",
		Passed:   taxOK,
		Critical: false,
		Message:  checkMessage(taxOK, "category set", "no category set on article"),
	})

	// 7. Schedule validity — critical only when intent is SCHEDULE.
	if req.Intent.Kind == model.IntentSchedule {
		scheduleOK := req.Intent.At.After(now())
		addCheck(Check{
			Name:     "schedule_validity",
			Passed:   scheduleOK,
			Critical: true,
			Message:  checkMessage(scheduleOK, "schedule time in the future", "schedule time is not in the future"),
		})
	}

	report.Safe = len(report.Errors) == 0
	return report
}

func checkMessage(ok bool, passMsg, failMsg string) string {
	if ok {
		return passMsg
	}
	return failMsg
}

func withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	c, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(c)
}
