package dom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kingofalbert/publish-orchestrator/internal/model"
)

// insertAtParagraph inserts fragmentHTML at position within bodyHTML:
// position 0 means before the first paragraph, k>=1 means immediately
// after the k-th </p> (§3 Image.position, §4.2 "Images" algorithm).
// Grounded on 99souls-ariadne's use of PuerkitoBio/goquery for structural
// HTML manipulation rather than string surgery.
func insertAtParagraph(bodyHTML, fragmentHTML string, position int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(wrapFragment(bodyHTML)))
	if err != nil {
		return "", fmt.Errorf("parse body: %w", err)
	}
	container := doc.Find("body").First()
	paragraphs := container.Find("p")

	frag, err := goquery.NewDocumentFromReader(strings.NewReader(wrapFragment(fragmentHTML)))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}
	fragNodes := frag.Find("body").Children()

	if position <= 0 || paragraphs.Length() == 0 {
		if paragraphs.Length() > 0 {
			paragraphs.First().BeforeNodes(fragNodes.Nodes...)
		} else {
			container.AppendNodes(fragNodes.Nodes...)
		}
	} else {
		idx := position - 1
		if idx >= paragraphs.Length() {
			container.AppendNodes(fragNodes.Nodes...)
		} else {
			paragraphs.Eq(idx).AfterNodes(fragNodes.Nodes...)
		}
	}

	out, err := container.Html()
	if err != nil {
		return "", fmt.Errorf("render body: %w", err)
	}
	return out, nil
}

func wrapFragment(html string) string {
	return "<html><body>" + html + "</body></html>"
}

// imageTagHTML renders the <img> tag a composite insertImageAtPosition
// hands to insertAtParagraph.
func imageTagHTML(img model.Image, mediaURL string) string {
	return fmt.Sprintf(`<figure><img src="%s" alt="%s"><figcaption>%s</figcaption></figure>`,
		escape(mediaURL), escape(img.AltText), escape(img.Caption))
}

// relatedArticlesHTML builds the "<h3>...<ul>...</ul>" block §4.2 appends.
func relatedArticlesHTML(items []model.RelatedArticle) string {
	var b strings.Builder
	b.WriteString("<h3>Related Articles</h3><ul>")
	for _, item := range items {
		b.WriteString(fmt.Sprintf(`<li><a href="%s" target="_blank">%s</a></li>`, escape(item.URL), escape(item.Title)))
	}
	b.WriteString("</ul>")
	return b.String()
}

// faqSchemaHTML builds the Custom-HTML FAQPage JSON-LD block §4.2 appends,
// matching the provided FAQs verbatim in mainEntity order.
func faqSchemaHTML(faqs []model.FAQ) (string, error) {
	type answer struct {
		Type string `json:"@type"`
		Text string `json:"text"`
	}
	type question struct {
		Type           string `json:"@type"`
		Name           string `json:"name"`
		AcceptedAnswer answer `json:"acceptedAnswer"`
	}
	type faqPage struct {
		Context    string     `json:"@context"`
		Type       string     `json:"@type"`
		MainEntity []question `json:"mainEntity"`
	}

	page := faqPage{Context: "https://schema.org", Type: "FAQPage"}
	for _, f := range faqs {
		page.MainEntity = append(page.MainEntity, question{
			Type: "Question",
			Name: f.Question,
			AcceptedAnswer: answer{Type: "Answer", Text: f.Answer},
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(page); err != nil {
		return "", fmt.Errorf("marshal FAQPage: %w", err)
	}
	return fmt.Sprintf(`<script type="application/ld+json">%s</script>`, buf.String()), nil
}

func escape(s string) string {
	replacer := strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")
	return replacer.Replace(s)
}
