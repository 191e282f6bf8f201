package safety

import (
	"context"
	"time"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// fakeProvider is a minimal provider.Provider stand-in exercising only the
// introspection methods the validator calls.
type fakeProvider struct {
	draftOK   bool
	draftErr  error
	savedOK   bool
	savedErr  error
}

func (f *fakeProvider) Initialize(context.Context, string, []model.Cookie) error { return nil }
func (f *fakeProvider) Close(context.Context) error                             { return nil }
func (f *fakeProvider) GetCookies(context.Context) ([]model.Cookie, error)      { return nil, nil }
func (f *fakeProvider) CaptureScreenshot(context.Context) ([]byte, error)       { return nil, nil }
func (f *fakeProvider) Navigate(context.Context, string) error                 { return nil }
func (f *fakeProvider) NavigateToNewPost(context.Context) error                { return nil }
func (f *fakeProvider) FillInput(context.Context, string, string) error        { return nil }
func (f *fakeProvider) FillTextarea(context.Context, string, string) error     { return nil }
func (f *fakeProvider) Click(context.Context, string) error                    { return nil }
func (f *fakeProvider) WaitFor(context.Context, string, time.Duration) error   { return nil }
func (f *fakeProvider) WaitForMessage(context.Context, string, time.Duration) error {
	return nil
}
func (f *fakeProvider) SetTitle(context.Context, string) error { return nil }
func (f *fakeProvider) SetBody(context.Context, string) error  { return nil }
func (f *fakeProvider) InsertImageAtPosition(context.Context, model.Image, int) error {
	return nil
}
func (f *fakeProvider) UploadToMediaLibrary(context.Context, model.Image) error { return nil }
func (f *fakeProvider) SetFeaturedImage(context.Context, model.Image) error     { return nil }
func (f *fakeProvider) SetTaxonomy(context.Context, model.Taxonomy) error       { return nil }
func (f *fakeProvider) SetSEO(context.Context, model.SEO) error                 { return nil }
func (f *fakeProvider) InsertRelatedArticles(context.Context, []model.RelatedArticle) error {
	return nil
}
func (f *fakeProvider) InsertFAQSchema(context.Context, []model.FAQ) error { return nil }
func (f *fakeProvider) SaveDraft(context.Context) error                   { return nil }
func (f *fakeProvider) Publish(context.Context) error                    { return nil }
func (f *fakeProvider) Schedule(context.Context, time.Time) error         { return nil }
func (f *fakeProvider) GetPublishedURL(context.Context) (string, error)   { return "", nil }
func (f *fakeProvider) VerifyDraftStatus(context.Context) (bool, error) {
	return f.draftOK, f.draftErr
}
func (f *fakeProvider) VerifyContentSaved(context.Context) (bool, error) {
	return f.savedOK, f.savedErr
}
func (f *fakeProvider) GetCurrentPostID(context.Context) (string, error) { return "", nil }
func (f *fakeProvider) Name() string                                     { return "fake" }
