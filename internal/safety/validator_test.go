package safety

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

func validRequest() model.PublishRequest {
	return model.PublishRequest{
		Article:  model.Article{Title: "A perfectly reasonable headline", Body: "<p>" + string(make([]byte, 60)) + "</p>"},
		Taxonomy: model.Taxonomy{PrimaryCategory: "News"},
		Intent:   model.SaveDraft(),
	}
}

func TestValidate_AllChecksPass(t *testing.T) {
	v := New()
	p := &fakeProvider{draftOK: true, savedOK: true}

	report := v.Validate(context.Background(), validRequest(), p)
	assert.True(t, report.Safe)
	assert.Empty(t, report.Errors)
	assert.Len(t, report.Checks, 6)
}

func TestValidate_ShortTitleIsCriticalFailure(t *testing.T) {
	v := New()
	p := &fakeProvider{draftOK: true, savedOK: true}
	req := validRequest()
	req.Article.Title = "hi"

	report := v.Validate(context.Background(), req, p)
	assert.False(t, report.Safe)
	require.NotEmpty(t, report.Errors)
}

func TestValidate_DraftStatusFailureIsCritical(t *testing.T) {
	v := New()
	p := &fakeProvider{draftOK: false, savedOK: true}

	report := v.Validate(context.Background(), validRequest(), p)
	assert.False(t, report.Safe)
}

func TestValidate_ContentNotSavedIsWarningOnly(t *testing.T) {
	v := New()
	p := &fakeProvider{draftOK: true, savedOK: false}

	report := v.Validate(context.Background(), validRequest(), p)
	assert.True(t, report.Safe)
	assert.NotEmpty(t, report.Warnings)
}

func TestValidate_MissingTaxonomyIsWarningOnly(t *testing.T) {
	v := New()
	p := &fakeProvider{draftOK: true, savedOK: true}
	req := validRequest()
	req.Taxonomy = model.Taxonomy{}

	report := v.Validate(context.Background(), req, p)
	assert.True(t, report.Safe)
	assert.NotEmpty(t, report.Warnings)
}

func TestValidate_ScheduleInPastIsCriticalFailure(t *testing.T) {
	fixedNow := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	v := &Validator{Now: func() time.Time { return fixedNow }}
	p := &fakeProvider{draftOK: true, savedOK: true}

	req := validRequest()
	req.Intent = model.ScheduleAt(fixedNow.Add(-time.Hour))

	report := v.Validate(context.Background(), req, p)
	assert.False(t, report.Safe)
}

func TestValidate_ScheduleInFuturePasses(t *testing.T) {
	fixedNow := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	v := &Validator{Now: func() time.Time { return fixedNow }}
	p := &fakeProvider{draftOK: true, savedOK: true}

	req := validRequest()
	req.Intent = model.ScheduleAt(fixedNow.Add(time.Hour))

	report := v.Validate(context.Background(), req, p)
	assert.True(t, report.Safe)
}
