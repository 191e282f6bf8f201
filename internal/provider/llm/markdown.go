package llm

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// bodyToMarkdown renders article body HTML as markdown before it is
// interpolated into the set_body instruction (spec.md §4.3 "templated
// instruction interpolating the arguments"): markdown carries the same
// structure as the source HTML at a fraction of the tag overhead, so the
// vision loop spends its token budget on content instead of markup.
func bodyToMarkdown(bodyHTML string) (string, error) {
	conv := converter.NewConverter(converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	))
	return conv.ConvertString(bodyHTML)
}

// estimateBodyTokens is the §4.8 cost proxy: rune length of the markdown
// rendering approximates the token count the model will burn reading the
// body as text context alongside each screenshot. ~4 runes/token is the
// same rough ratio genai's own docs quote for English prose.
func estimateBodyTokens(markdown string) int {
	return len([]rune(markdown)) / 4
}
