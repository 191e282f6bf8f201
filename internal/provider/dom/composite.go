package dom

import (
	"context"
	"strconv"
	"time"

	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// seoPluginPriority is the vendor probe order from original_source's
// playwright_wordpress_publisher.py, generalized into selector-bundle
// lookups (SPEC_FULL.md "SEO plugin auto-detection vendor list").
var seoPluginPriority = []string{
	"seo_plugin.yoast",
	"seo_plugin.rankmath",
	"seo_plugin.aioseo",
	"seo_plugin.seopress",
	"seo_plugin.theseoframework",
}

func (p *Provider) SetTitle(ctx context.Context, title string) error {
	return p.FillInput(ctx, "new_post_title", title)
}

func (p *Provider) SetBody(ctx context.Context, bodyHTML string) error {
	return p.timed("set_body", func() error {
		sel, err := p.resolveSelector("new_post_body")
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, err.Error(), err)
		}
		el, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel)
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, "body editor not found", err)
		}
		if err := el.Eval(`(html) => { this.innerHTML = html }`, bodyHTML); err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, "failed to set body HTML", err)
		}
		p.bodyHTML = bodyHTML
		return nil
	})
}

// InsertImageAtPosition computes the insertion point against the realized
// body (which must already be in place, §4.2 critical invariant) and
// writes the updated body back through the same editor element.
func (p *Provider) InsertImageAtPosition(ctx context.Context, img model.Image, paragraphIndex int) error {
	return p.timed("insert_image", func() error {
		mediaURL, ok := p.uploadedMedia[img.Filename]
		if !ok {
			return model.NewPhaseError(model.ErrUploadFailed, "image not uploaded before insertion: "+img.Filename, nil)
		}
		updated, err := insertAtParagraph(p.bodyHTML, imageTagHTML(img, mediaURL), paragraphIndex)
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, "failed to compute image insertion point", err)
		}
		return p.writeBody(updated)
	})
}

func (p *Provider) writeBody(html string) error {
	sel, err := p.resolveSelector("new_post_body")
	if err != nil {
		return model.NewPhaseError(model.ErrElementNotFound, err.Error(), err)
	}
	el, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel)
	if err != nil {
		return model.NewPhaseError(model.ErrElementNotFound, "body editor not found", err)
	}
	if err := el.Eval(`(html) => { this.innerHTML = html }`, html); err != nil {
		return model.NewPhaseError(model.ErrElementNotFound, "failed to write body HTML", err)
	}
	p.bodyHTML = html
	return nil
}

func (p *Provider) UploadToMediaLibrary(ctx context.Context, img model.Image) error {
	return p.timed("upload_media", func() error {
		if err := p.Click(ctx, "media_upload_dialog"); err != nil {
			return err
		}
		sel, err := p.resolveSelector("media_upload_dialog")
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, err.Error(), err)
		}
		fileInput, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel)
		if err != nil {
			return model.NewPhaseError(model.ErrUploadFailed, "upload input not found", err)
		}
		if err := fileInput.SetFiles([]string{img.LocalPath}); err != nil {
			return model.NewPhaseError(model.ErrUploadFailed, "set files failed: "+img.Filename, err)
		}
		if err := p.FillInput(ctx, "media_alt_field", img.AltText); err != nil {
			return model.NewPhaseError(model.ErrUploadFailed, "alt text fill failed", err)
		}
		if err := p.FillInput(ctx, "media_caption_field", img.Caption); err != nil {
			return model.NewPhaseError(model.ErrUploadFailed, "caption fill failed", err)
		}
		if p.uploadedMedia == nil {
			p.uploadedMedia = make(map[string]string)
		}
		// The CMS assigns the served URL once the upload completes; the
		// selector bundle names the element that exposes it after upload.
		mediaURL, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel).Property("value")
		if err == nil {
			p.uploadedMedia[img.Filename] = mediaURL.String()
		} else {
			p.uploadedMedia[img.Filename] = img.SourceURL
		}
		return nil
	})
}

// SetFeaturedImage is issued after the image exists in the media library
// (§5 ordering guarantee), using a distinct sidebar control (§4.2).
func (p *Provider) SetFeaturedImage(ctx context.Context, img model.Image) error {
	return p.Click(ctx, "featured_image_control")
}

func (p *Provider) SetTaxonomy(ctx context.Context, tax model.Taxonomy) error {
	return p.timed("set_taxonomy", func() error {
		if tax.PrimaryCategory != "" {
			if err := p.checkCategoryBox(tax.PrimaryCategory); err != nil {
				return err
			}
			if err := p.Click(ctx, "category_make_primary"); err != nil {
				return err
			}
		}
		for _, cat := range tax.SecondaryCategories {
			if err := p.checkCategoryBox(cat); err != nil {
				return err
			}
		}
		for _, tag := range tax.Tags {
			if err := p.FillInput(ctx, "tag_input", tag); err != nil {
				return err
			}
			if err := p.pressEnter(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Provider) checkCategoryBox(name string) error {
	sel, err := p.resolveSelector("category_checkbox")
	if err != nil {
		return model.NewPhaseError(model.ErrElementNotFound, err.Error(), err)
	}
	el, err := p.page.Timeout(p.cfg.ElementTimeout).ElementR(sel, name)
	if err != nil {
		return model.NewPhaseError(model.ErrElementNotFound, "category checkbox not found: "+name, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return model.NewPhaseError(model.ErrElementNotFound, "category click failed: "+name, err)
	}
	return nil
}

func (p *Provider) pressEnter() error {
	return p.page.Keyboard.Type(input.Enter)
}

// SetSEO auto-detects the active SEO plugin by probing for a
// vendor-specific container, in priority order, before filling its
// title/description/focus-keyword fields (§4.2).
func (p *Provider) SetSEO(ctx context.Context, seo model.SEO) error {
	return p.timed("set_seo", func() error {
		var vendor string
		for _, probe := range seoPluginPriority {
			if cands := p.cfg.Selectors.Candidates(p.cfg.CMSKind, probe); len(cands) > 0 {
				if _, err := p.page.Timeout(2 * time.Second).Element(cands[0]); err == nil {
					vendor = probe
					break
				}
			}
		}
		if vendor == "" {
			return model.NewPhaseError(model.ErrSEOPluginMissing, "no SEO plugin container detected", nil)
		}
		if err := p.FillInput(ctx, vendor+".meta_title", seo.MetaTitle); err != nil {
			return err
		}
		if err := p.FillTextarea(ctx, vendor+".meta_description", seo.MetaDescription); err != nil {
			return err
		}
		if seo.FocusKeyword != "" {
			if err := p.FillInput(ctx, vendor+".focus_keyword", seo.FocusKeyword); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Provider) InsertRelatedArticles(ctx context.Context, items []model.RelatedArticle) error {
	return p.timed("insert_related", func() error {
		if len(items) == 0 {
			return nil
		}
		return p.writeBody(p.bodyHTML + relatedArticlesHTML(items))
	})
}

func (p *Provider) InsertFAQSchema(ctx context.Context, faqs []model.FAQ) error {
	return p.timed("insert_faq", func() error {
		if len(faqs) == 0 {
			return nil
		}
		block, err := faqSchemaHTML(faqs)
		if err != nil {
			return model.NewPhaseError(model.ErrElementNotFound, "failed to build FAQ schema", err)
		}
		return p.writeBody(p.bodyHTML + block)
	})
}

func (p *Provider) SaveDraft(ctx context.Context) error {
	return p.Click(ctx, "save_draft_button")
}

func (p *Provider) Publish(ctx context.Context) error {
	if err := p.Click(ctx, "publish_button"); err != nil {
		return err
	}
	if cands := p.cfg.Selectors.Candidates(p.cfg.CMSKind, "publish_confirm"); len(cands) > 0 {
		_ = p.Click(ctx, "publish_confirm") // two-step confirmation where required
	}
	return p.WaitFor(ctx, "published_panel", p.cfg.ElementTimeout)
}

func (p *Provider) Schedule(ctx context.Context, at time.Time) error {
	if err := p.Click(ctx, "schedule_affordance"); err != nil {
		return err
	}
	if err := p.FillInput(ctx, "schedule_date_field", at.Format("2006-01-02")); err != nil {
		return err
	}
	if err := p.FillInput(ctx, "schedule_time_field", at.Format("15:04")); err != nil {
		return err
	}
	return p.Publish(ctx)
}

func (p *Provider) GetPublishedURL(ctx context.Context) (string, error) {
	sel, err := p.resolveSelector("view_post_link")
	if err != nil {
		return "", model.NewPhaseError(model.ErrElementNotFound, err.Error(), err)
	}
	el, err := p.page.Timeout(p.cfg.ElementTimeout).Element(sel)
	if err != nil {
		return "", model.NewPhaseError(model.ErrElementNotFound, "view post link not found", err)
	}
	href, err := el.Property("href")
	if err != nil {
		return "", model.NewPhaseError(model.ErrElementNotFound, "view post link has no href", err)
	}
	return href.String(), nil
}

func (p *Provider) VerifyDraftStatus(ctx context.Context) (bool, error) {
	sel, err := p.resolveSelector("draft_saved_notice")
	if err != nil {
		return false, nil
	}
	_, err = p.page.Timeout(3 * time.Second).Element(sel)
	return err == nil, nil
}

func (p *Provider) VerifyContentSaved(ctx context.Context) (bool, error) {
	postID, err := p.GetCurrentPostID(ctx)
	return err == nil && postID != "", nil
}

func (p *Provider) GetCurrentPostID(ctx context.Context) (string, error) {
	result, err := p.page.Eval(`() => new URLSearchParams(window.location.search).get('post')`)
	if err != nil || result == nil {
		return "", nil
	}
	id := result.Value.String()
	if id == "" {
		return "", nil
	}
	if _, convErr := strconv.Atoi(id); convErr != nil {
		return "", nil
	}
	return id, nil
}
