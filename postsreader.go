package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	blogerr "github.com/thomas11/bookblog/internal/errors"
	"github.com/thomas11/bookblog/internal/frontmatter"
)

const postFileExtension = ".md"

// Files living next to posts that are not posts themselves.
var skippedPostFiles = map[string]bool{
	"README.md":     true,
	"references.md": true,
}

func findPostFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, blogerr.FileSystemError(err, "posts directory %s is not accessible", dir)
	}
	if !info.IsDir() {
		return nil, blogerr.FileSystemError(nil, "posts path %s is not a directory", dir)
	}

	files := make([]string, 0, 100)

	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("Skipping unreadable path", "path", path, "error", err)
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasSuffix(name, postFileExtension) && !strings.HasPrefix(name, "_") &&
			!skippedPostFiles[name] && !strings.HasSuffix(name, ".backup"+postFileExtension) {
			files = append(files, path)
		}
		return nil
	}

	err = filepath.WalkDir(dir, walkFunc)
	return files, err
}

type readOptions struct {
	DateOrder           NumericDateOrder
	DescriptionFallback bool
	DescriptionLength   int
}

func readOptionsFromConf(conf *BlogConf) readOptions {
	return readOptions{
		DateOrder:           conf.Posts.NumericDateOrder,
		DescriptionFallback: conf.Posts.DescriptionFallback,
		DescriptionLength:   conf.Posts.DescriptionLength,
	}
}

// readPostFromFile reads one post. Only I/O failures are returned as errors;
// metadata problems end up in post.Warnings with best-effort defaults.
func readPostFromFile(root, path string, opts readOptions) (*post, error) {
	fileContent, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return parsePost(filepath.ToSlash(rel), fileContent, opts), nil
}

func parsePost(sourcePath string, content []byte, opts readOptions) *post {
	p := &post{SourcePath: sourcePath}

	fields, body, _, err := frontmatter.Parse(content)
	switch {
	case errors.Is(err, frontmatter.ErrNotYAML):
		p.warn("%v, read it line by line", err)
	case err != nil:
		p.warn("invalid frontmatter, treating the whole file as body: %v", err)
		fields = frontmatter.Fields{}
		body = content
	}
	p.Body = body
	p.Description = fields.Description
	p.Bibliography = fields.Bibliography
	p.CitationStyle = fields.CitationStyle

	info := analyzeMarkdown(body)

	p.Title = fields.Title
	if p.Title == "" {
		p.Title = info.Heading
	}
	if p.Title == "" {
		p.Title = titleFromStem(p.Stem())
	}

	switch {
	case fields.Date != "":
		p.DateText = fields.Date
		d, err := parseDate(fields.Date, opts.DateOrder)
		if err != nil {
			p.warn("unparseable date %q, treating as unknown", fields.Date)
		} else {
			p.Date = d
		}
	case !info.LegacyDate.IsZero():
		p.DateText = info.LegacyDateText
		p.Date = info.LegacyDate
	default:
		p.warn("no date found, sorting last")
	}

	if p.Description == "" && opts.DescriptionFallback && info.FirstParagraph != "" {
		p.Description = firstSentence(info.FirstParagraph, opts.DescriptionLength)
	}

	return p
}

func (p *post) warn(format string, args ...any) {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
}

var stemTitler = cases.Title(language.English)

// titleFromStem turns "my-first_post" into "My First Post".
func titleFromStem(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	return stemTitler.String(strings.Join(words, " "))
}

// readPosts reads every post below dir. One unreadable post never aborts
// the run; it is logged and left out.
func readPosts(root, dir string, opts readOptions) (posts, error) {
	files, err := findPostFiles(dir)
	if err != nil {
		return nil, err
	}

	ps := make(posts, 0, len(files))
	for _, f := range files {
		p, err := readPostFromFile(root, f, opts)
		if err != nil {
			werr := blogerr.ContentWarning(err, f, "cannot read post")
			slog.Warn(werr.Message, "path", f, "error", err)
			continue
		}
		slog.Debug("Read post", "post", p)
		for _, w := range p.Warnings {
			slog.Warn("Post metadata problem", "path", p.SourcePath, "warning", w)
		}
		ps = append(ps, p)
	}
	return ps, nil
}
