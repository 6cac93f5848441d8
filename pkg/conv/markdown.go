package conv

import (
	"html"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = mdhtml.CommonFlags | mdhtml.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// Allowed tags https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

// MarkdownToTelegramHTML renders an answer and strips everything Telegram rejects.
func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})
	return string(tgPolicy.SanitizeBytes(markdown.Render(p.Parse(md), renderer)))
}

// Source is a labelled excerpt shown under an answer.
type Source struct {
	Label   string
	Excerpt string
}

// SourcesToTelegramHTML renders excerpts as expandable quotes, each truncated to maxExcerpt runes.
func SourcesToTelegramHTML(sources []Source, maxExcerpt int) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<b>Sources</b>\n")
	for i, s := range sources {
		excerpt := strings.Join(strings.Fields(s.Excerpt), " ")
		if r := []rune(excerpt); maxExcerpt > 0 && len(r) > maxExcerpt {
			excerpt = string(r[:maxExcerpt]) + "…"
		}
		b.WriteString("<b>")
		b.WriteString(html.EscapeString(strconv.Itoa(i+1) + ". " + s.Label))
		b.WriteString("</b>\n<blockquote>")
		b.WriteString(html.EscapeString(excerpt))
		b.WriteString("</blockquote>\n")
	}
	return strings.TrimSpace(b.String())
}
