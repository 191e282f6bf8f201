// Package dom implements C2: a deterministic back-end that drives a
// headless browser through CSS selectors, managing the go-rod
// launcher/connect lifecycle and cookie capture for a
// single-page-per-run CMS publish driver.
package dom

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kingofalbert/publish-orchestrator/internal/cache"
	"github.com/kingofalbert/publish-orchestrator/internal/config"
	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// Config configures one DOM provider instance.
type Config struct {
	CMSKind            string
	Headless           bool
	ElementTimeout     time.Duration
	NavigationDeadline time.Duration
	// NewPostPath is the CMS-relative path for "create a new post"
	// (e.g. "/wp-admin/post-new.php"); opaque configuration per §4.9.
	NewPostPath string
	Selectors   *config.SelectorBundle
	Cache       *cache.SelectorCache
	Perf        *cache.PerfTracker
}

// Provider drives a WordPress-class admin UI via go-rod.
type Provider struct {
	cfg     Config
	browser *rod.Browser
	page    *rod.Page

	// bodyHTML mirrors the editor's current content so composite ops
	// (InsertImageAtPosition, InsertRelatedArticles, InsertFAQSchema) can
	// compute structural insertions without re-reading the DOM (§4.2).
	bodyHTML string
	// uploadedMedia maps an image's Filename to the CMS-served media URL
	// recorded by UploadToMediaLibrary, consumed by InsertImageAtPosition.
	uploadedMedia map[string]string
}

func New(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return "dom" }

func (p *Provider) Initialize(ctx context.Context, cmsBaseURL string, cookies []model.Cookie) error {
	controlURL, err := launcher.New().Headless(p.cfg.Headless).Launch()
	if err != nil {
		return model.NewPhaseError(model.ErrNavigationTimeout, "failed to launch browser", err)
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return model.NewPhaseError(model.ErrNavigationTimeout, "failed to connect to browser", err)
	}
	p.browser = browser

	page, err := browser.Page(proto.TargetCreateTarget{URL: cmsBaseURL})
	if err != nil {
		return model.NewPhaseError(model.ErrNavigationTimeout, "failed to open page", err)
	}
	p.page = page.Context(ctx)

	if len(cookies) > 0 {
		if err := p.setCookies(cookies); err != nil {
			return model.NewPhaseError(model.ErrNavigationTimeout, "failed to restore cookies", err)
		}
	}
	return nil
}

func (p *Provider) Close(ctx context.Context) error {
	if p.page != nil {
		_ = p.page.Close()
	}
	if p.browser != nil {
		return p.browser.Close()
	}
	return nil
}

func (p *Provider) GetCookies(ctx context.Context) ([]model.Cookie, error) {
	raw, err := proto.NetworkGetCookies{}.Call(p.page)
	if err != nil {
		return nil, model.NewPhaseError(model.ErrNavigationTimeout, "get cookies failed", err)
	}
	out := make([]model.Cookie, 0, len(raw.Cookies))
	for _, c := range raw.Cookies {
		out = append(out, model.Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
	}
	return out, nil
}

func (p *Provider) setCookies(cookies []model.Cookie) error {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path,
		})
	}
	return proto.NetworkSetCookies{Cookies: params}.Call(p.page)
}

func (p *Provider) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	data, err := p.page.Screenshot(true, nil)
	if err != nil {
		return nil, model.NewPhaseError(model.ErrNavigationTimeout, "screenshot failed", err)
	}
	return data, nil
}

func (p *Provider) Navigate(ctx context.Context, url string) error {
	if err := p.page.Timeout(p.cfg.NavigationDeadline).Navigate(url); err != nil {
		return model.NewPhaseError(model.ErrNavigationTimeout, "navigate failed: "+url, err)
	}
	return nil
}

func (p *Provider) NavigateToNewPost(ctx context.Context) error {
	if p.cfg.NewPostPath == "" {
		return model.NewPhaseError(model.ErrConfigInvalid, "no new_post_path configured", nil)
	}
	origin, err := p.origin()
	if err != nil {
		return model.NewPhaseError(model.ErrNavigationTimeout, "could not determine CMS origin", err)
	}
	return p.Navigate(ctx, origin+p.cfg.NewPostPath)
}

func (p *Provider) origin() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(info.URL)
	if err != nil {
		return "", err
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}

// resolveSelector consults the cache first; on miss it probes candidates
// in order and memoizes the first visible match (§4.2 "Selector
// resolution"). On a wait_for failure against a cached selector the entry
// is invalidated and candidates are retried.
func (p *Provider) resolveSelector(namedElement string) (string, error) {
	key := cache.SelectorKey{NamedElement: namedElement, CMSKind: p.cfg.CMSKind}
	if sel, ok := p.cfg.Cache.Get(key); ok {
		if el, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel); err == nil && el != nil {
			return sel, nil
		}
		p.cfg.Cache.Invalidate(&key)
	}

	candidates := p.cfg.Selectors.Candidates(p.cfg.CMSKind, namedElement)
	if len(candidates) == 0 {
		return "", fmt.Errorf("no selector candidates for %s", namedElement)
	}
	for _, sel := range candidates {
		el, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel)
		if err == nil && el != nil {
			p.cfg.Cache.Set(key, sel)
			return sel, nil
		}
	}
	return "", fmt.Errorf("no candidate selector resolved for %s", namedElement)
}

func (p *Provider) timed(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	if p.cfg.Perf != nil {
		p.cfg.Perf.Record(cache.OperationRecord{Name: name, Start: start, End: time.Now(), Success: err == nil})
	}
	return err
}

func (p *Provider) FillInput(ctx context.Context, namedField, value string) error {
	return p.timed("fill_input/"+namedField, func() error {
		sel, err := p.resolveSelector(namedField)
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, err.Error(), err)
		}
		el, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel)
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, "element vanished: "+namedField, err)
		}
		if err := el.SelectAllText(); err == nil {
			_ = el.Input("")
		}
		if err := el.Input(value); err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, "input failed: "+namedField, err)
		}
		return nil
	})
}

func (p *Provider) FillTextarea(ctx context.Context, namedField, value string) error {
	return p.FillInput(ctx, namedField, value)
}

func (p *Provider) Click(ctx context.Context, namedButton string) error {
	return p.timed("click/"+namedButton, func() error {
		sel, err := p.resolveSelector(namedButton)
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, err.Error(), err)
		}
		el, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel)
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, "element vanished: "+namedButton, err)
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, "click failed: "+namedButton, err)
		}
		return nil
	})
}

func (p *Provider) WaitFor(ctx context.Context, namedElement string, timeout time.Duration) error {
	return p.timed("wait_for/"+namedElement, func() error {
		sel, err := p.resolveSelector(namedElement)
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, err.Error(), err)
		}
		_, err = p.page.Timeout(timeout).Element(sel)
		if err != nil {
			key := cache.SelectorKey{NamedElement: namedElement, CMSKind: p.cfg.CMSKind}
			p.cfg.Cache.Invalidate(&key)
			return model.NewPhaseError(model.ErrElementNotFound, "wait_for timed out: "+namedElement, err)
		}
		return nil
	})
}

func (p *Provider) WaitForMessage(ctx context.Context, substring string, timeout time.Duration) error {
	return p.timed("wait_for_message", func() error {
		deadline := time.Now().Add(timeout)
		for time.Now().Before(deadline) {
			html, err := p.page.HTML()
			if err == nil && strings.Contains(html, substring) {
				return nil
			}
			time.Sleep(200 * time.Millisecond)
		}
		return model.NewPhaseError(model.ErrElementNotFound, "message not observed: "+substring, nil)
	})
}
