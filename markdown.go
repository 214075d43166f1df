package main

import (
	"bytes"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type renderer interface {
	render(in []byte) string
}

const htmlFlags = blackfriday.UseXHTML |
	blackfriday.Smartypants |
	blackfriday.SmartypantsFractions |
	blackfriday.SmartypantsLatexDashes

const extensions = blackfriday.NoIntraEmphasis |
	blackfriday.Tables |
	blackfriday.FencedCode |
	blackfriday.Autolink |
	blackfriday.Strikethrough

func newMarkdownRenderer() renderer {
	r := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{Flags: htmlFlags})
	return &blackfridayHtmlRenderer{r, extensions}
}

type blackfridayHtmlRenderer struct {
	r          blackfriday.Renderer
	extensions blackfriday.Extensions
}

func (b *blackfridayHtmlRenderer) render(in []byte) string {
	out := blackfriday.Run(in, blackfriday.WithRenderer(b.r), blackfriday.WithExtensions(b.extensions))
	return string(out)
}

// markdownInfo is what the metadata extractor needs from a post body.
type markdownInfo struct {
	Heading        string    // text of the first level-1 heading
	LegacyDate     time.Time // from the first italic long-US date
	LegacyDateText string
	FirstParagraph string // first paragraph that is not an italic marker line
}

// analyzeMarkdown parses the body once with goldmark and collects the
// fallbacks for title, date and description.
func analyzeMarkdown(body []byte) markdownInfo {
	var info markdownInfo
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.Heading:
			if node.Level == 1 && info.Heading == "" {
				info.Heading = plainText(node, body)
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.Emphasis:
			if node.Level == 1 && info.LegacyDate.IsZero() {
				raw := plainText(node, body)
				candidate := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Published:"))
				if d, err := parseLongUSDate(candidate); err == nil {
					info.LegacyDate = d
					info.LegacyDateText = candidate
				}
			}
		case *gmast.Paragraph:
			if info.FirstParagraph == "" && !startsWithEmphasis(node) {
				info.FirstParagraph = plainText(node, body)
			}
		}
		return gmast.WalkContinue, nil
	})

	return info
}

func startsWithEmphasis(p *gmast.Paragraph) bool {
	first := p.FirstChild()
	if first == nil {
		return true
	}
	_, ok := first.(*gmast.Emphasis)
	return ok
}

// plainText concatenates the literal text below n, turning soft line breaks
// into spaces.
func plainText(n gmast.Node, source []byte) string {
	var b bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *gmast.String:
			b.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// firstSentence shortens a paragraph to its first sentence. Anything longer
// than maxLen runes is cut there and followed by an ellipsis.
func firstSentence(paragraph string, maxLen int) string {
	if i := strings.Index(paragraph, "."); i >= 0 {
		paragraph = paragraph[:i+1]
	}
	runes := []rune(paragraph)
	if len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return paragraph
}
