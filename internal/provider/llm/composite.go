package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// runAction renders action from the C9 instruction bundle and drives it
// through the tool-calling loop, returning the model's final result string
// (spec.md §4.3, §4.9).
func (p *Provider) runAction(ctx context.Context, action string, vars map[string]string) (string, error) {
	rendered, _, err := p.cfg.Instructions.Get(action, vars)
	if err != nil {
		return "", model.NewPhaseError(model.ErrConfigInvalid, "instruction render failed: "+action, err)
	}
	result, err := p.converse(ctx, rendered)
	if err != nil {
		return "", err
	}
	return result, nil
}

func (p *Provider) SetTitle(ctx context.Context, title string) error {
	_, err := p.runAction(ctx, "set_title", map[string]string{"title": title})
	return err
}

func (p *Provider) SetBody(ctx context.Context, bodyHTML string) error {
	body := bodyHTML
	if markdown, err := bodyToMarkdown(bodyHTML); err == nil {
		body = markdown
		p.tokensUsed += estimateBodyTokens(markdown)
	}
	_, err := p.runAction(ctx, "set_body", map[string]string{"body": body})
	if err == nil {
		p.bodyHTML = bodyHTML
	}
	return err
}

func (p *Provider) InsertImageAtPosition(ctx context.Context, img model.Image, paragraphIndex int) error {
	mediaURL, ok := p.uploadedMedia[img.Filename]
	if !ok {
		return model.NewPhaseError(model.ErrUploadFailed, "image not uploaded before insertion: "+img.Filename, nil)
	}
	_, err := p.runAction(ctx, "insert_image", map[string]string{
		"filename": img.Filename,
		"url":      mediaURL,
		"alt":      img.AltText,
		"caption":  img.Caption,
		"position": strconv.Itoa(paragraphIndex),
	})
	return err
}

func (p *Provider) UploadToMediaLibrary(ctx context.Context, img model.Image) error {
	result, err := p.converse(ctx, fmt.Sprintf(
		"Upload the local file %q to the media library, set its alt text to %q and caption to %q, then call done with the resulting media URL as the result string.",
		img.LocalPath, img.AltText, img.Caption))
	if err != nil {
		return err
	}
	if p.uploadedMedia == nil {
		p.uploadedMedia = make(map[string]string)
	}
	if strings.HasPrefix(result, "http") {
		p.uploadedMedia[img.Filename] = result
	} else {
		p.uploadedMedia[img.Filename] = img.SourceURL
	}
	return nil
}

func (p *Provider) SetFeaturedImage(ctx context.Context, img model.Image) error {
	_, err := p.runAction(ctx, "set_featured_image", map[string]string{"filename": img.Filename})
	return err
}

func (p *Provider) SetTaxonomy(ctx context.Context, tax model.Taxonomy) error {
	_, err := p.runAction(ctx, "set_taxonomy", map[string]string{
		"primary_category":    tax.PrimaryCategory,
		"secondary_categories": strings.Join(tax.SecondaryCategories, ", "),
		"tags":                strings.Join(tax.Tags, ", "),
	})
	return err
}

func (p *Provider) SetSEO(ctx context.Context, seo model.SEO) error {
	_, err := p.runAction(ctx, "set_seo", map[string]string{
		"meta_title":       seo.MetaTitle,
		"meta_description": seo.MetaDescription,
		"focus_keyword":    seo.FocusKeyword,
	})
	return err
}

func (p *Provider) InsertRelatedArticles(ctx context.Context, items []model.RelatedArticle) error {
	if len(items) == 0 {
		return nil
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.URL)
	}
	_, err := p.runAction(ctx, "insert_related_articles", map[string]string{"items": b.String()})
	return err
}

func (p *Provider) InsertFAQSchema(ctx context.Context, faqs []model.FAQ) error {
	if len(faqs) == 0 {
		return nil
	}
	var b strings.Builder
	for _, f := range faqs {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", f.Question, f.Answer)
	}
	_, err := p.runAction(ctx, "insert_faq_schema", map[string]string{"faqs": b.String()})
	return err
}

func (p *Provider) SaveDraft(ctx context.Context) error {
	_, err := p.runAction(ctx, "save_draft", nil)
	return err
}

// Publish is a terminal call: its result string is expected to carry the
// {article_id, article_url, status} payload (§4.3 "Success extraction").
func (p *Provider) Publish(ctx context.Context) error {
	result, err := p.runAction(ctx, "publish", nil)
	if err != nil {
		return err
	}
	p.lastTerminalResult = result
	return nil
}

func (p *Provider) Schedule(ctx context.Context, at time.Time) error {
	result, err := p.runAction(ctx, "schedule", map[string]string{
		"date": at.Format("2006-01-02"),
		"time": at.Format("15:04"),
	})
	if err != nil {
		return err
	}
	p.lastTerminalResult = result
	return nil
}

// GetPublishedURL prefers the structured payload captured from the last
// terminal call, falling back to scraping the visible editor URL (§4.3).
func (p *Provider) GetPublishedURL(ctx context.Context) (string, error) {
	if _, url, _, ok := extractTerminalPayload(p.lastTerminalResult); ok && url != "" {
		return url, nil
	}
	info, err := p.page.Info()
	if err != nil {
		return "", model.NewPhaseError(model.ErrElementNotFound, "could not read editor URL", err)
	}
	return info.URL, nil
}

func (p *Provider) VerifyDraftStatus(ctx context.Context) (bool, error) {
	result, err := p.converse(ctx, "Look at the screen. Is there a clear indication the draft has been saved? Call done with \"true\" or \"false\".")
	if err != nil {
		return false, err
	}
	return strings.Contains(strings.ToLower(result), "true"), nil
}

func (p *Provider) VerifyContentSaved(ctx context.Context) (bool, error) {
	postID, err := p.GetCurrentPostID(ctx)
	return err == nil && postID != "", nil
}

func (p *Provider) GetCurrentPostID(ctx context.Context) (string, error) {
	if id, _, _, ok := extractTerminalPayload(p.lastTerminalResult); ok && id != "" {
		return id, nil
	}
	result, err := p.page.Eval(`() => new URLSearchParams(window.location.search).get('post')`)
	if err != nil || result == nil {
		return "", nil
	}
	return result.Value.String(), nil
}
