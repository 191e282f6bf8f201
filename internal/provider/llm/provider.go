// Package llm implements C3: a fallback back-end that substitutes visual
// screenshots and natural-language instructions for CSS selectors (spec.md
// §4.3). It still drives a go-rod browser for the actual display — only the
// element-resolution strategy changes, from named-selector lookup to a
// vision/tool-calling conversation with google.golang.org/genai.
package llm

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"google.golang.org/genai"

	"github.com/kingofalbert/publish-orchestrator/internal/config"
	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// Config configures one LLM provider instance.
type Config struct {
	Headless           bool
	ElementTimeout     time.Duration
	NavigationDeadline time.Duration
	NewPostPath        string

	APIKey string
	Model  string // e.g. "gemini-3-flash-preview"

	// MaxIterations bounds a single instruct() call's tool-calling loop
	// (spec.md §4.3 "a running iteration cap bounds any single call").
	MaxIterations int

	Instructions *config.InstructionBundle
}

// Provider drives the same display surface as the dom provider, but every
// primitive is issued through a templated instruction + screenshot + tool
// call loop instead of a resolved CSS selector.
type Provider struct {
	cfg     Config
	browser *rod.Browser
	page    *rod.Page
	client  *genai.Client

	bodyHTML      string
	uploadedMedia map[string]string

	// lastTerminalResult is the model's "done" result string from the most
	// recent Publish/Schedule call, consumed by GetPublishedURL and
	// GetCurrentPostID (§4.3 "Success extraction").
	lastTerminalResult string

	// tokensUsed accumulates PromptTokenCount + CandidatesTokenCount across
	// every model call this run has made (§4.3 "per-call token usage").
	tokensUsed int
}

func New(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

func (p *Provider) Name() string { return "llm" }

// TokenUsage reports accumulated token consumption for this run, consumed
// by the orchestrator's cost estimator (metrics.LLMProviderCost).
func (p *Provider) TokenUsage() int { return p.tokensUsed }

func (p *Provider) Initialize(ctx context.Context, cmsBaseURL string, cookies []model.Cookie) error {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.cfg.APIKey})
	if err != nil {
		return model.NewPhaseError(model.ErrConfigInvalid, "failed to create genai client", err)
	}
	p.client = client

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
		params = append(params, &proto.NetworkCookieParam{Name: c.Name, Value: c.Value, Domain: c.Domain, Path: c.Path})
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
	info, err := p.page.Info()
	if err != nil {
		return model.NewPhaseError(model.ErrNavigationTimeout, "could not determine CMS origin", err)
	}
	return p.Navigate(ctx, originOf(info.URL)+p.cfg.NewPostPath)
}

// Primitives are issued as ad-hoc instructions, not from the C9 bundle: the
// bundle only names composite-operation actions (spec.md §4.9's required
// action list). The instruction text is generated inline here.

func (p *Provider) FillInput(ctx context.Context, namedField, value string) error {
	return p.instruct(ctx, fmt.Sprintf("Fill the field labeled or identified as %q with the exact text: %s", namedField, value))
}

func (p *Provider) FillTextarea(ctx context.Context, namedField, value string) error {
	return p.FillInput(ctx, namedField, value)
}

func (p *Provider) Click(ctx context.Context, namedButton string) error {
	return p.instruct(ctx, fmt.Sprintf("Click the control labeled or identified as %q.", namedButton))
}

func (p *Provider) WaitFor(ctx context.Context, namedElement string, timeout time.Duration) error {
	return p.instruct(ctx, fmt.Sprintf("Wait until the element identified as %q becomes visible on screen, then call done.", namedElement))
}

func (p *Provider) WaitForMessage(ctx context.Context, substring string, timeout time.Duration) error {
	return p.instruct(ctx, fmt.Sprintf("Wait until a message containing %q appears on screen, then call done.", substring))
}

func originOf(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
