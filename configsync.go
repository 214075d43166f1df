package main

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

const (
	defaultBlogTitle     = "My Blog"
	defaultBlogAuthor    = "Blog Author"
	defaultRepositoryURL = "https://github.com/yourusername/repo"
	defaultWebsiteURL    = "https://yourusername.github.io/repo"
	defaultLogo          = "images/general/logo.png"
	defaultCopyright     = "© 2024 Blog Author. All rights reserved."
	defaultWelcomeText   = "Welcome to my technical blog!"
	defaultCitationStyle = "author_year"
)

var defaultExcludePatterns = []string{"_build", "Thumbs.db", ".DS_Store", "**.ipynb_checkpoints"}

// syncConfig pushes blog_config.json settings into _config.yml and index.md.
// Both steps run even if the first fails.
func syncConfig(conf *BlogConf) error {
	var errs []error
	if err := syncBookConfig(conf); err != nil {
		errs = append(errs, err)
	}
	if err := syncIndexPage(conf); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func syncBookConfig(conf *BlogConf) error {
	path := conf.path(defaultJBConfigFile)
	content, err := os.ReadFile(path)
	if err != nil {
		return blogerr.FileSystemError(err, "cannot read %s", path)
	}

	updated, err := updateBookConfig(content, conf, dirListing{root: conf.Root})
	if err != nil {
		return blogerr.Wrap(err, blogerr.CategoryConfig, blogerr.SeverityFatal, "cannot update book configuration").
			WithContext("path", path)
	}
	return writeFileIfChanged(path, updated)
}

// updateBookConfig edits the parsed YAML tree in place so comments and key
// order of the hand-maintained file survive.
func updateBookConfig(content []byte, conf *BlogConf, fl fileListing) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level of the book configuration is not a mapping")
	}

	buttons := conf.Features.GithubButtons
	repoURL := cmp.Or(conf.URLs.Repository, defaultRepositoryURL)

	setPath(root, strNode(cmp.Or(conf.Blog.Title, defaultBlogTitle)), "title")
	setPath(root, strNode(cmp.Or(conf.Blog.Author, defaultBlogAuthor)), "author")
	setPath(root, strNode(logoValue(conf.Blog.Logo)), "logo")

	setPath(root, strNode(repoURL), "repository", "url")
	setPath(root, strNode(cmp.Or(conf.URLs.Branch, "main")), "repository", "branch")

	setPath(root, strNode(cmp.Or(conf.Blog.Favicon, defaultLogo)), "html", "favicon")
	setPath(root, strNode(cmp.Or(conf.URLs.Website, defaultWebsiteURL)), "html", "baseurl")
	setPath(root, boolNode(enabled(buttons.Repository)), "html", "use_repository_button")
	setPath(root, boolNode(enabled(buttons.Issues)), "html", "use_issues_button")
	setPath(root, boolNode(enabled(buttons.Edit)), "html", "use_edit_page_button")
	setPath(root, boolNode(enabled(buttons.Download)), "html", "use_download_button")

	theme := []string{"sphinx", "config", "html_theme_options"}
	setPath(root, strNode(repoURL), append(theme, "repository_url")...)
	setPath(root, boolNode(enabled(buttons.Repository)), append(theme, "use_repository_button")...)
	setPath(root, boolNode(enabled(buttons.Issues)), append(theme, "use_issues_button")...)
	setPath(root, boolNode(enabled(buttons.Edit)), append(theme, "use_edit_page_button")...)
	setPath(root, boolNode(enabled(buttons.Download)), append(theme, "use_download_button")...)
	setPath(root, strNode("<p>\n"+cmp.Or(conf.Blog.Copyright, defaultCopyright)+"\n</p>"), append(theme, "extra_footer")...)

	exclude := conf.Build.ExcludePatterns
	if len(exclude) == 0 {
		exclude = defaultExcludePatterns
	}
	setPath(root, seqNode(exclude), "exclude_patterns")
	setPath(root, strNode(cmp.Or(conf.Build.ExecuteNotebooks, "auto")), "execute", "execute_notebooks")

	bibFiles := discoverBibFiles(conf.Bibliography, conf.Posts.Directory, fl)
	setPath(root, seqNode(bibFiles), "bibtex_bibfiles")
	style := cmp.Or(conf.Bibliography.CitationStyle, defaultCitationStyle)
	style = strings.TrimPrefix(style, "custom:")
	setPath(root, strNode(style), "sphinx", "config", "bibtex_reference_style")

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// logoValue accepts both the plain string form and {"type", "value"}.
func logoValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return defaultLogo
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return defaultLogo
	}
	if obj.Type == "text" {
		return strings.TrimSpace(obj.Value)
	}
	return cmp.Or(obj.Value, defaultLogo)
}

func syncIndexPage(conf *BlogConf) error {
	path := conf.HomepagePath()
	content, err := os.ReadFile(path)
	if err != nil {
		return blogerr.FileSystemError(err, "cannot read %s", path)
	}
	return writeFileIfChanged(path, []byte(updateIndexPage(string(content), conf)))
}

// updateIndexPage sets the title line, the banner and the welcome line.
func updateIndexPage(content string, conf *BlogConf) string {
	lines := strings.Split(content, "\n")

	if len(lines) > 0 && strings.HasPrefix(lines[0], "# ") {
		lines[0] = "# " + cmp.Or(conf.Blog.Title, defaultBlogTitle)
	}

	banner := bannerLine(conf.Homepage.Banner)
	found := false
	for i, l := range lines {
		if strings.HasPrefix(l, "![") || (i > 0 && i < 5 && len(l) > 4 && strings.HasPrefix(l, "**") && strings.HasSuffix(l, "**")) {
			lines[i] = banner
			found = true
			break
		}
	}
	if !found && banner != "" && len(lines) > 1 {
		lines = append(lines[:1], append([]string{"", banner}, lines[1:]...)...)
	}

	welcome := cmp.Or(conf.Homepage.WelcomeText, defaultWelcomeText)
	for i, l := range lines {
		if strings.HasPrefix(l, "Welcome to") {
			lines[i] = welcome
			break
		}
	}

	return strings.Join(lines, "\n")
}

func bannerLine(b *BannerConf) string {
	if b == nil {
		return ""
	}
	switch b.Type {
	case "image", "url":
		return "![" + cmp.Or(b.AltText, "Banner") + "](" + b.Value + ")"
	case "text":
		return "**" + b.Value + "**"
	default:
		return ""
	}
}

// setPath sets value at the nested mapping path, creating mappings on the
// way. A non-mapping found on the way is replaced.
func setPath(m *yaml.Node, value *yaml.Node, keys ...string) {
	for i, key := range keys {
		last := i == len(keys)-1
		idx := -1
		for j := 0; j+1 < len(m.Content); j += 2 {
			if m.Content[j].Value == key {
				idx = j + 1
				break
			}
		}
		if idx < 0 {
			m.Content = append(m.Content, strNode(key), &yaml.Node{Kind: yaml.MappingNode})
			idx = len(m.Content) - 1
		}
		if last {
			old := m.Content[idx]
			value.LineComment = old.LineComment
			m.Content[idx] = value
			return
		}
		if m.Content[idx].Kind != yaml.MappingNode {
			m.Content[idx] = &yaml.Node{Kind: yaml.MappingNode}
		}
		m = m.Content[idx]
	}
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func boolNode(b bool) *yaml.Node {
	v := "false"
	if b {
		v = "true"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v}
}

func seqNode(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, it := range items {
		n.Content = append(n.Content, strNode(it))
	}
	return n
}

func enabled(b *bool) bool {
	return b == nil || *b
}

func logSyncResult(err error) {
	if err != nil {
		slog.Error("Configuration sync completed with errors", "error", err)
		return
	}
	slog.Info("Configuration sync completed")
}
