package main

import (
	"bytes"
	"strings"
	"text/template"
)

const unknownDateLabel = "Unknown date"

// One entry of the generated homepage listing. Entries are joined with a
// horizontal rule.
const recentPostTemplate = `### [{{.Title}}]({{.Link}})
*{{.Date}}*
{{- if .Description}}

{{.Description}}
{{- end}}
`

var recentPostTmpl = template.Must(template.New("recent-post").Parse(recentPostTemplate))

type recentPostParam struct {
	Title       string
	Link        string
	Date        string
	Description string
}

// renderRecentPosts renders the listing that goes between the homepage
// markers. ps must already be sorted.
func renderRecentPosts(ps posts, conf *BlogConf) (string, error) {
	if max := conf.Posts.MaxPostsOnHomepage; max > 0 && len(ps) > max {
		ps = ps[:max]
	}

	entries := make([]string, 0, len(ps))
	for _, p := range ps {
		var b bytes.Buffer
		param := recentPostParam{
			Title:       linkTextEscaper.Replace(p.Title),
			Link:        linkDestination(p.SourcePath),
			Date:        renderPostDate(p, conf.Posts.DateFormat),
			Description: commentEscaper.Replace(strings.TrimSpace(p.Description)),
		}
		if err := recentPostTmpl.Execute(&b, param); err != nil {
			return "", err
		}
		entries = append(entries, b.String())
	}

	return strings.Join(entries, "\n---\n\n"), nil
}

func renderPostDate(p *post, pattern string) string {
	if !p.HasDate() {
		return unknownDateLabel
	}
	return formatDate(p.Date, pattern)
}

// commentEscaper keeps post text from forming a homepage marker line.
var commentEscaper = strings.NewReplacer("<!--", "&lt;!--")

var linkTextEscaper = strings.NewReplacer(
	"<!--", "&lt;!--",
	`\`, `\\`,
	"[", `\[`,
	"]", `\]`,
)

// linkDestination wraps paths that would end a bare Markdown link destination
// early in angle brackets.
func linkDestination(p string) string {
	if !strings.ContainsAny(p, " \t()<>") {
		return p
	}
	return "<" + strings.NewReplacer("<", `\<`, ">", `\>`).Replace(p) + ">"
}
