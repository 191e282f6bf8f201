package orchestrator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

func newVerifyOrchestrator(verify bool) *Orchestrator {
	s := testSettings()
	s.PostPublishVerify = verify
	return &Orchestrator{Settings: s}
}

func TestVerifyPublishedURL_SkipsWhenDisabled(t *testing.T) {
	o := newVerifyOrchestrator(false)
	rs := &runState{pctx: model.PublishContext{PublishedURL: "http://example.invalid/post/1"}}

	o.verifyPublishedURL(rs)

	assert.Empty(t, rs.warnings)
}

func TestVerifyPublishedURL_SkipsWhenURLEmpty(t *testing.T) {
	o := newVerifyOrchestrator(true)
	rs := &runState{pctx: model.PublishContext{}}

	o.verifyPublishedURL(rs)

	assert.Empty(t, rs.warnings)
}

func TestVerifyPublishedURL_NoWarningOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	o := newVerifyOrchestrator(true)
	rs := &runState{pctx: model.PublishContext{PublishedURL: srv.URL}}

	o.verifyPublishedURL(rs)

	assert.Empty(t, rs.warnings)
}

func TestVerifyPublishedURL_WarnsOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	o := newVerifyOrchestrator(true)
	rs := &runState{pctx: model.PublishContext{PublishedURL: srv.URL}}

	o.verifyPublishedURL(rs)

	assert.Len(t, rs.warnings, 1)
	assert.Contains(t, rs.warnings[0], "404")
}

func TestVerifyPublishedURL_WarnsOnUnreachable(t *testing.T) {
	o := newVerifyOrchestrator(true)
	rs := &runState{pctx: model.PublishContext{PublishedURL: "http://127.0.0.1:1/unreachable"}}

	o.verifyPublishedURL(rs)

	assert.Len(t, rs.warnings, 1)
	assert.Contains(t, rs.warnings[0], "post-publish verification failed")
}
