package orchestrator

import (
	"context"
	"time"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// fakeProvider is a hand-written test double for provider.Provider. Every
// method defaults to a quiet success; callers set only the fields the
// scenario under test cares about. setBodyFn and publishFn are call hooks
// since those are the two primitives the retry/failover/terminal tests
// need to drive across multiple invocations.
type fakeProvider struct {
	nameVal string

	initializeErr error
	closeErr      error

	cookies       []model.Cookie
	getCookiesErr error

	screenshot    []byte
	screenshotErr error

	navigateErr        error
	navigateNewPostErr error
	fillInputErr       error
	fillTextareaErr    error
	clickErr           error
	waitForErr         error
	waitForMessageErr  error

	setTitleErr error
	setBodyFn   func() error

	insertImageErr   error
	uploadErr        error
	setFeaturedErr   error
	setTaxonomyErr   error
	setSEOErr        error
	insertRelatedErr error
	insertFAQErr     error

	saveDraftErr error
	saveDraftCalls int
	publishFn    func() error
	publishCalls int
	scheduleErr  error

	publishedURL    string
	publishedURLErr error

	draftStatusOK   bool
	draftStatusErr  error
	contentSavedOK  bool
	contentSavedErr error

	postID    string
	postIDErr error

	tokenUsage int
}

func (f *fakeProvider) Initialize(context.Context, string, []model.Cookie) error { return f.initializeErr }
func (f *fakeProvider) Close(context.Context) error                             { return f.closeErr }
func (f *fakeProvider) GetCookies(context.Context) ([]model.Cookie, error) {
	return f.cookies, f.getCookiesErr
}
func (f *fakeProvider) CaptureScreenshot(context.Context) ([]byte, error) {
	return f.screenshot, f.screenshotErr
}
func (f *fakeProvider) Navigate(context.Context, string) error            { return f.navigateErr }
func (f *fakeProvider) NavigateToNewPost(context.Context) error           { return f.navigateNewPostErr }
func (f *fakeProvider) FillInput(context.Context, string, string) error   { return f.fillInputErr }
func (f *fakeProvider) FillTextarea(context.Context, string, string) error {
	return f.fillTextareaErr
}
func (f *fakeProvider) Click(context.Context, string) error { return f.clickErr }
func (f *fakeProvider) WaitFor(context.Context, string, time.Duration) error {
	return f.waitForErr
}
func (f *fakeProvider) WaitForMessage(context.Context, string, time.Duration) error {
	return f.waitForMessageErr
}
func (f *fakeProvider) SetTitle(context.Context, string) error { return f.setTitleErr }
func (f *fakeProvider) SetBody(context.Context, string) error {
	if f.setBodyFn != nil {
		return f.setBodyFn()
	}
	return nil
}
func (f *fakeProvider) InsertImageAtPosition(context.Context, model.Image, int) error {
	return f.insertImageErr
}
func (f *fakeProvider) UploadToMediaLibrary(context.Context, model.Image) error { return f.uploadErr }
func (f *fakeProvider) SetFeaturedImage(context.Context, model.Image) error    { return f.setFeaturedErr }
func (f *fakeProvider) SetTaxonomy(context.Context, model.Taxonomy) error      { return f.setTaxonomyErr }
func (f *fakeProvider) SetSEO(context.Context, model.SEO) error                { return f.setSEOErr }
func (f *fakeProvider) InsertRelatedArticles(context.Context, []model.RelatedArticle) error {
	return f.insertRelatedErr
}
func (f *fakeProvider) InsertFAQSchema(context.Context, []model.FAQ) error { return f.insertFAQErr }
func (f *fakeProvider) SaveDraft(context.Context) error {
	f.saveDraftCalls++
	return f.saveDraftErr
}
func (f *fakeProvider) Publish(context.Context) error {
	f.publishCalls++
	if f.publishFn != nil {
		return f.publishFn()
	}
	return nil
}
func (f *fakeProvider) Schedule(context.Context, time.Time) error { return f.scheduleErr }
func (f *fakeProvider) GetPublishedURL(context.Context) (string, error) {
	return f.publishedURL, f.publishedURLErr
}
func (f *fakeProvider) VerifyDraftStatus(context.Context) (bool, error) {
	return f.draftStatusOK, f.draftStatusErr
}
func (f *fakeProvider) VerifyContentSaved(context.Context) (bool, error) {
	return f.contentSavedOK, f.contentSavedErr
}
func (f *fakeProvider) GetCurrentPostID(context.Context) (string, error) {
	return f.postID, f.postIDErr
}
func (f *fakeProvider) Name() string { return f.nameVal }

// TokenUsage implements the orchestrator's optional tokenReporter capability.
func (f *fakeProvider) TokenUsage() int { return f.tokenUsage }
