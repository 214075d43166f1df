package main

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const tocHeader = `# Table of contents
# Learn more at https://jupyterbook.org/customize/toc.html

`

const (
	defaultTOCFormat = "jb-book"
	defaultTOCRoot   = "index"
)

// generatedPartMark is the line comment after the caption of every part this
// tool writes. Parts carrying it are replaced on the next run even when the
// caption was renamed in the configuration.
const generatedPartMark = "# generated by bookblog"

type tocEntry struct {
	File  string `yaml:"file"`
	Title string `yaml:"title,omitempty"`
}

type tocPart struct {
	Caption  string     `yaml:"caption"`
	Chapters []tocEntry `yaml:"chapters"`
}

// existingTOC holds what survives from a previous _toc.yml: root and format,
// hand-authored parts and any other top-level keys.
type existingTOC struct {
	Format string
	Root   string
	Parts  []*yaml.Node
	Extra  []*yaml.Node // alternating key and value nodes
}

// parseExistingTOC reads a _toc.yml written by hand or by an earlier run.
// Parts carrying generatedPartMark, or whose caption is one of the generated
// captions, are dropped.
func parseExistingTOC(content []byte, generated map[string]bool) (*existingTOC, error) {
	ex := &existingTOC{}
	if len(bytes.TrimSpace(content)) == 0 {
		return ex, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return ex, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level is not a mapping")
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "format":
			ex.Format = val.Value
		case "root":
			ex.Root = val.Value
		case "parts":
			if val.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("parts is not a list")
			}
			for _, part := range val.Content {
				if isGeneratedPart(part, generated) {
					continue
				}
				stripComments(part)
				ex.Parts = append(ex.Parts, part)
			}
		default:
			stripComments(key)
			stripComments(val)
			ex.Extra = append(ex.Extra, key, val)
		}
	}
	return ex, nil
}

// buildTOC renders _toc.yml: the quick links part, one blog part listing ps in
// order, then whatever hand-authored content the existing file carried.
func buildTOC(ps posts, nav NavigationConfig, ex *existingTOC) ([]byte, error) {
	if ex == nil {
		ex = &existingTOC{}
	}

	var parts []*yaml.Node
	if len(nav.QuickLinks) > 0 {
		quick := tocPart{Caption: nav.QuickLinksCaption}
		for _, l := range nav.QuickLinks {
			quick.Chapters = append(quick.Chapters, tocEntry{File: l.File, Title: l.Title})
		}
		n, err := encodeGeneratedPart(quick)
		if err != nil {
			return nil, err
		}
		parts = append(parts, n)
	}

	if len(ps) > 0 {
		blog := tocPart{Caption: nav.BlogSectionTitle}
		for _, p := range ps {
			blog.Chapters = append(blog.Chapters, tocEntry{File: p.TOCFile()})
		}
		n, err := encodeGeneratedPart(blog)
		if err != nil {
			return nil, err
		}
		parts = append(parts, n)
	}
	parts = append(parts, ex.Parts...)

	format, root := ex.Format, ex.Root
	if format == "" {
		format = defaultTOCFormat
	}
	if root == "" {
		root = defaultTOCRoot
	}

	out := &yaml.Node{Kind: yaml.MappingNode}
	out.Content = append(out.Content, strNode("format"), strNode(format), strNode("root"), strNode(root))
	if len(parts) > 0 {
		out.Content = append(out.Content, strNode("parts"), &yaml.Node{Kind: yaml.SequenceNode, Content: parts})
	}
	out.Content = append(out.Content, ex.Extra...)

	var buf bytes.Buffer
	buf.WriteString(tocHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isGeneratedPart(part *yaml.Node, generated map[string]bool) bool {
	if hasComment(part, generatedPartMark) {
		return true
	}
	for _, c := range part.Content {
		if hasComment(c, generatedPartMark) {
			return true
		}
	}
	var p struct {
		Caption string `yaml:"caption"`
	}
	return part.Decode(&p) == nil && generated[p.Caption]
}

func hasComment(n *yaml.Node, comment string) bool {
	for _, c := range []string{n.HeadComment, n.LineComment, n.FootComment} {
		if strings.Contains(c, comment) {
			return true
		}
	}
	return false
}

// encodeGeneratedPart encodes p and marks its caption with generatedPartMark.
func encodeGeneratedPart(p tocPart) (*yaml.Node, error) {
	n, err := encodeNode(p)
	if err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == "caption" {
			n.Content[i+1].LineComment = generatedPartMark
		}
	}
	return n, nil
}

func generatedTOCCaptions(nav NavigationConfig) map[string]bool {
	return map[string]bool{
		nav.QuickLinksCaption: true,
		nav.BlogSectionTitle:  true,
	}
}

func encodeNode(v any) (*yaml.Node, error) {
	n := &yaml.Node{}
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return n, nil
}

func stripComments(n *yaml.Node) {
	n.HeadComment, n.LineComment, n.FootComment = "", "", ""
	for _, c := range n.Content {
		stripComments(c)
	}
}
