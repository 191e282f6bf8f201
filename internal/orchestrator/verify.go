package orchestrator

import (
	"fmt"

	"github.com/gocolly/colly/v2"
)

// verifyPublishedURL implements the optional post-publish check from
// spec.md §4.2: re-fetch the "view post" URL captured by phaseCaptureURL
// and assert it resolves with HTTP 200. It never fails the run — the
// publish already happened by the time this runs — it only appends a
// warning when the fetch comes back non-200 or errors outright.
func (o *Orchestrator) verifyPublishedURL(rs *runState) {
	if !o.Settings.PostPublishVerify || rs.pctx.PublishedURL == "" {
		return
	}

	var status int
	var fetchErr error

	c := colly.NewCollector()
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(rs.pctx.PublishedURL); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if fetchErr != nil {
		rs.warnings = append(rs.warnings, fmt.Sprintf("post-publish verification failed: %v", fetchErr))
		return
	}
	if status != 200 {
		rs.warnings = append(rs.warnings, fmt.Sprintf("post-publish verification: published URL returned HTTP %d", status))
	}
}
