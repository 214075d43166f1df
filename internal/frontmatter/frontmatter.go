// Package frontmatter splits the YAML block off the top of a post and decodes
// the handful of keys the blog tooling cares about.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a frontmatter
// delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

// ErrNotYAML indicates the block was not valid YAML and its fields were read
// line by line instead.
var ErrNotYAML = errors.New("frontmatter is not valid YAML")

// Fields holds the post keys read from frontmatter. Empty strings mean the key
// was absent, null or not a scalar.
type Fields struct {
	Title         string
	Date          string
	Description   string
	Bibliography  string
	CitationStyle string
}

// rawFields decodes into yaml.Node so unquoted dates and numbers keep their
// source text instead of being resolved to other types.
type rawFields struct {
	Title         yaml.Node `yaml:"title"`
	Date          yaml.Node `yaml:"date"`
	Description   yaml.Node `yaml:"description"`
	Bibliography  yaml.Node `yaml:"bibliography"`
	CitationStyle yaml.Node `yaml:"citation_style"`
}

// Split separates `---` delimited frontmatter from the Markdown body.
//
// If the document does not open with a delimiter line, had is false and body
// is the full input. LF and CRLF documents are both accepted.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the very last line has no trailing newline.
		tail := []byte(nl + "---")
		if bytes.HasSuffix(content, tail) {
			end := len(content) - len(tail)
			return content[start : end+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return content[start:end], content[bodyStart:], true, nil
}

// Decode parses raw frontmatter (without delimiters) into Fields.
func Decode(frontmatter []byte) (Fields, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return Fields{}, nil
	}

	var raw rawFields
	if err := yaml.Unmarshal(frontmatter, &raw); err != nil {
		return Fields{}, err
	}

	return Fields{
		Title:         scalar(raw.Title),
		Date:          scalar(raw.Date),
		Description:   scalar(raw.Description),
		Bibliography:  scalar(raw.Bibliography),
		CitationStyle: scalar(raw.CitationStyle),
	}, nil
}

// DecodeLines reads top-level "key: value" lines, splitting at the first
// colon. It accepts blocks that are not valid YAML, such as an unquoted title
// containing a colon. Indented, comment and unknown lines are skipped.
func DecodeLines(frontmatter []byte) Fields {
	var f Fields
	for _, l := range strings.Split(string(frontmatter), "\n") {
		l = strings.TrimRight(l, "\r")
		if l == "" || l[0] == ' ' || l[0] == '\t' || l[0] == '#' {
			continue
		}
		key, val, ok := strings.Cut(l, ":")
		if !ok {
			continue
		}
		val = unquote(strings.TrimSpace(val))
		switch strings.TrimSpace(key) {
		case "title":
			f.Title = val
		case "date":
			f.Date = val
		case "description":
			f.Description = val
		case "bibliography":
			f.Bibliography = val
		case "citation_style":
			f.CitationStyle = val
		}
	}
	return f
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if s == "~" || s == "null" {
		return ""
	}
	return s
}

// Parse is Split followed by Decode. When the block is not valid YAML the
// fields come from DecodeLines and the error wraps ErrNotYAML.
func Parse(content []byte) (Fields, []byte, bool, error) {
	fm, body, had, err := Split(content)
	if err != nil || !had {
		return Fields{}, body, had, err
	}
	fields, err := Decode(fm)
	if err != nil {
		return DecodeLines(fm), body, true, fmt.Errorf("%w: %v", ErrNotYAML, err)
	}
	return fields, body, true, nil
}

func scalar(n yaml.Node) string {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
