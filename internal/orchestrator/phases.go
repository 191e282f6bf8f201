package orchestrator

import (
	"context"
	"sort"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

func (o *Orchestrator) currentProviderFactory(rs *runState) ProviderFactory {
	return o.Providers[rs.pctx.CurrentProvider]
}

func (o *Orchestrator) phaseInitialize(ctx context.Context, rs *runState) *model.PhaseError {
	factory := o.currentProviderFactory(rs)
	if factory == nil {
		return model.NewPhaseError(model.ErrConfigInvalid, "no provider factory registered for "+rs.pctx.CurrentProvider, nil)
	}
	rs.provider = factory()
	if err := rs.provider.Initialize(ctx, rs.pctx.Request.TargetCMS.URL, rs.pctx.SessionCookies); err != nil {
		return classify(model.ErrNavigationTimeout, "provider initialize failed", err)
	}
	return nil
}

func (o *Orchestrator) phaseLogin(ctx context.Context, rs *runState) *model.PhaseError {
	p := rs.provider
	if len(rs.pctx.SessionCookies) > 0 {
		// Cookie-authenticated branch: verify dashboard visibility instead
		// of filling the form. This folds the "hybrid" orchestrator's
		// cookie-first start into the ordinary LOGIN phase (SPEC_FULL.md
		// Closed Open Question #2).
		if err := p.WaitFor(ctx, "dashboard_sentinel", o.Settings.ElementTimeout); err == nil {
			cookies, _ := p.GetCookies(ctx)
			rs.pctx.SessionCookies = cookies
			return nil
		}
	}

	if err := p.Navigate(ctx, rs.pctx.Request.TargetCMS.URL); err != nil {
		return classify(model.ErrNavigationTimeout, "navigate to login failed", err)
	}
	creds := rs.pctx.Request.Credentials
	if err := p.FillInput(ctx, "login_username", creds.Username); err != nil {
		return classify(model.ErrElementNotFound, "fill username failed", err)
	}
	if err := p.FillInput(ctx, "login_password", creds.Password); err != nil {
		return classify(model.ErrElementNotFound, "fill password failed", err)
	}
	if err := p.Click(ctx, "login_submit"); err != nil {
		return classify(model.ErrElementNotFound, "click login submit failed", err)
	}
	if err := p.WaitFor(ctx, "dashboard_sentinel", o.Settings.ElementTimeout); err != nil {
		return model.NewPhaseError(model.ErrAuthRejected, "login did not reach dashboard", err)
	}
	cookies, err := p.GetCookies(ctx)
	if err != nil {
		return classify(model.ErrNavigationTimeout, "capture cookies failed", err)
	}
	rs.pctx.SessionCookies = cookies
	return nil
}

func (o *Orchestrator) phaseFillContent(ctx context.Context, rs *runState) *model.PhaseError {
	p := rs.provider
	req := rs.pctx.Request

	if err := p.NavigateToNewPost(ctx); err != nil {
		return classify(model.ErrNavigationTimeout, "navigate to new post failed", err)
	}
	if err := p.SetTitle(ctx, req.Article.Title); err != nil {
		return classify(model.ErrElementNotFound, "set title failed", err)
	}
	// Body must be set before images so paragraph indexes resolve against
	// realized DOM (§4.2 critical invariant).
	if err := p.SetBody(ctx, req.Article.Body); err != nil {
		return classify(model.ErrElementNotFound, "set body failed", err)
	}
	return nil
}

func (o *Orchestrator) phaseSaveDraft(ctx context.Context, rs *runState) *model.PhaseError {
	if err := rs.provider.SaveDraft(ctx); err != nil {
		return classify(model.ErrUploadFailed, "save draft failed", err)
	}
	if err := rs.provider.WaitForMessage(ctx, "draft saved", o.Settings.ElementTimeout); err != nil {
		return classify(model.ErrElementNotFound, "draft saved notice not observed", err)
	}
	return nil
}

// phaseProcessImages inserts images in ascending position order (§5
// ordering guarantee, §8 invariant). Upload order is unspecified; each
// image's metadata write precedes its insertion; the featured-image
// selection happens after the image exists in the media library.
func (o *Orchestrator) phaseProcessImages(ctx context.Context, rs *runState) *model.PhaseError {
	p := rs.provider
	images := append([]model.Image(nil), rs.pctx.Request.Images...)
	sort.SliceStable(images, func(i, j int) bool { return images[i].Position < images[j].Position })

	for _, img := range images {
		if err := p.UploadToMediaLibrary(ctx, img); err != nil {
			return classify(model.ErrUploadFailed, "upload image "+img.Filename+" failed", err)
		}
		if err := p.InsertImageAtPosition(ctx, img, img.Position); err != nil {
			return classify(model.ErrElementNotFound, "insert image "+img.Filename+" failed", err)
		}
		if img.IsFeatured {
			if err := p.SetFeaturedImage(ctx, img); err != nil {
				return classify(model.ErrElementNotFound, "set featured image failed", err)
			}
		}
	}
	return nil
}

func (o *Orchestrator) phaseSetSEO(ctx context.Context, rs *runState) *model.PhaseError {
	if err := rs.provider.SetSEO(ctx, rs.pctx.Request.Article.SEO); err != nil {
		if pe, ok := model.AsPhaseError(err); ok && pe.Kind == model.ErrSEOPluginMissing {
			rs.warnings = append(rs.warnings, "no SEO plugin detected; skipped SEO field population")
			return nil
		}
		return classify(model.ErrElementNotFound, "set SEO failed", err)
	}
	return nil
}

func (o *Orchestrator) phaseSetTaxonomy(ctx context.Context, rs *runState) *model.PhaseError {
	if err := rs.provider.SetTaxonomy(ctx, rs.pctx.Request.Taxonomy); err != nil {
		return classify(model.ErrElementNotFound, "set taxonomy failed", err)
	}
	return nil
}

func (o *Orchestrator) phaseInsertRelated(ctx context.Context, rs *runState) *model.PhaseError {
	if err := rs.provider.InsertRelatedArticles(ctx, rs.pctx.Request.RelatedArticles); err != nil {
		return classify(model.ErrElementNotFound, "insert related articles failed", err)
	}
	return nil
}

func (o *Orchestrator) phaseInsertFAQ(ctx context.Context, rs *runState) *model.PhaseError {
	if err := rs.provider.InsertFAQSchema(ctx, rs.pctx.Request.FAQs); err != nil {
		return classify(model.ErrElementNotFound, "insert FAQ schema failed", err)
	}
	return nil
}

func (o *Orchestrator) phaseSafetyGate(ctx context.Context, rs *runState) *model.PhaseError {
	report := o.Safety.Validate(ctx, rs.pctx.Request, rs.provider)
	rs.safetyReport = report
	rs.warnings = append(rs.warnings, report.Warnings...)
	if !report.Safe {
		// Not a returned error here: run() inspects rs.safetyReport.Safe
		// immediately after this phase succeeds, so SAFETY_BLOCKED never
		// triggers the retry loop (it is not transient and must not be
		// retried or failed-over, per §4.5/§7).
		return nil
	}
	return nil
}

func (o *Orchestrator) phaseTerminal(ctx context.Context, rs *runState) *model.PhaseError {
	if rs.terminalCalled {
		// Exactly-once discipline (§4.7, §8 invariant): never invoked twice
		// regardless of retries.
		return nil
	}
	p := rs.provider
	intent := rs.pctx.Request.Intent

	var err error
	switch intent.Kind {
	case model.IntentSaveDraft:
		err = p.SaveDraft(ctx)
	case model.IntentPublish:
		err = p.Publish(ctx)
	case model.IntentSchedule:
		err = p.Schedule(ctx, intent.At)
	}
	rs.terminalCalled = true
	if err != nil {
		return classify(model.ErrNavigationTimeout, "terminal call failed", err)
	}
	return nil
}

func (o *Orchestrator) phaseCaptureURL(ctx context.Context, rs *runState) *model.PhaseError {
	url, err := rs.provider.GetPublishedURL(ctx)
	if err != nil {
		return classify(model.ErrElementNotFound, "capture published URL failed", err)
	}
	rs.pctx.PublishedURL = url
	return nil
}

func (o *Orchestrator) phaseClose(ctx context.Context, rs *runState) *model.PhaseError {
	if rs.provider == nil {
		return nil
	}
	if err := rs.provider.Close(ctx); err != nil {
		return classify(model.ErrNavigationTimeout, "provider close failed", err)
	}
	return nil
}

// classify preserves a *model.PhaseError err already carries (a provider
// is expected to return one), or wraps a bare error under fallback as the
// given kind.
func classify(fallback model.ErrorKind, message string, err error) *model.PhaseError {
	if pe, ok := model.AsPhaseError(err); ok {
		return pe
	}
	return model.NewPhaseError(fallback, message, err)
}
