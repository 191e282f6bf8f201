// Package provider defines the uniform capability surface every
// automation back-end exposes (spec.md §4.1). The orchestrator relies on
// nothing beyond this interface — it never reaches past a provider into a
// concrete browser or model client.
package provider

import (
	"context"
	"time"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// Provider is the contract both the DOM-driven and LLM-driven back-ends
// satisfy. Every method may suspend and every method returns a
// *model.PhaseError on failure, never a bare error or a panic.
type Provider interface {
	// Lifecycle
	Initialize(ctx context.Context, cmsBaseURL string, cookies []model.Cookie) error
	Close(ctx context.Context) error

	// Session surface
	GetCookies(ctx context.Context) ([]model.Cookie, error)
	CaptureScreenshot(ctx context.Context) ([]byte, error)

	// Navigation
	Navigate(ctx context.Context, url string) error
	NavigateToNewPost(ctx context.Context) error

	// Edit primitives (named, not selector-level)
	FillInput(ctx context.Context, namedField, value string) error
	FillTextarea(ctx context.Context, namedField, value string) error
	Click(ctx context.Context, namedButton string) error
	WaitFor(ctx context.Context, namedElement string, timeout time.Duration) error
	WaitForMessage(ctx context.Context, substring string, timeout time.Duration) error

	// Composite operations
	SetTitle(ctx context.Context, title string) error
	SetBody(ctx context.Context, bodyHTML string) error
	InsertImageAtPosition(ctx context.Context, img model.Image, paragraphIndex int) error
	UploadToMediaLibrary(ctx context.Context, img model.Image) error
	SetFeaturedImage(ctx context.Context, img model.Image) error
	SetTaxonomy(ctx context.Context, tax model.Taxonomy) error
	SetSEO(ctx context.Context, seo model.SEO) error
	InsertRelatedArticles(ctx context.Context, urls []model.RelatedArticle) error
	InsertFAQSchema(ctx context.Context, faqs []model.FAQ) error
	SaveDraft(ctx context.Context) error
	Publish(ctx context.Context) error
	Schedule(ctx context.Context, at time.Time) error
	GetPublishedURL(ctx context.Context) (string, error)

	// Introspection (used by the safety validator, C5)
	VerifyDraftStatus(ctx context.Context) (bool, error)
	VerifyContentSaved(ctx context.Context) (bool, error)
	GetCurrentPostID(ctx context.Context) (string, error)

	// Name identifies the provider for metrics/audit labels ("dom", "llm").
	Name() string
}
