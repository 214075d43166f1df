// Command bookblog maintains the generated parts of a Markdown blog that is
// built with a book-style documentation framework: the recent posts listing
// on the homepage, the table of contents, the Atom feed and the book
// configuration. It reads blog_config.json and the posts directory and never
// runs the site build itself.
//
// This code is under BSD license. See license-bsd.txt.
package main

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

type Site struct {
	posts posts
	conf  *BlogConf
}

// ReadSite reads and sorts all posts. A missing posts directory is fatal;
// problems with single posts are logged and do not stop the run.
func ReadSite(conf *BlogConf) (*Site, error) {
	slog.Debug("Reading site", "conf", conf)
	ps, err := readPosts(conf.Root, conf.PostsDir(), readOptionsFromConf(conf))
	if err != nil {
		return nil, err
	}
	ps.sort()

	slog.Info("Read posts", "count", len(ps), "dir", conf.PostsDir())
	return &Site{posts: ps, conf: conf}, nil
}

// RenderHomepage rewrites the generated region of the homepage.
func (s *Site) RenderHomepage() error {
	homepage := s.conf.HomepagePath()

	content, err := os.ReadFile(homepage)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("Homepage does not exist, creating it", "path", homepage)
		content = []byte(newHomepage(s.conf.Blog.Title))
	} else if err != nil {
		return blogerr.FileSystemError(err, "cannot read homepage %s", homepage)
	}

	listing, err := renderRecentPosts(s.posts, s.conf)
	if err != nil {
		return blogerr.Wrap(err, blogerr.CategoryInternal, blogerr.SeverityFatal, "render recent posts")
	}

	updated, err := updateHomepage(string(content), listing)
	if err != nil {
		return blogerr.Wrap(err, blogerr.CategoryContent, blogerr.SeverityFatal, "malformed recent posts markers").
			WithContext("path", homepage)
	}

	return writeFileIfChanged(homepage, []byte(updated))
}

// RenderTOC rewrites the table of contents, keeping hand-authored parts.
func (s *Site) RenderTOC() error {
	tocPath := s.conf.TOCPath()
	nav := s.conf.Navigation

	existing, err := os.ReadFile(tocPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return blogerr.FileSystemError(err, "cannot read %s", tocPath)
	}

	ex, err := parseExistingTOC(existing, generatedTOCCaptions(nav))
	if err != nil {
		return blogerr.Wrap(err, blogerr.CategoryContent, blogerr.SeverityFatal, "cannot parse existing table of contents").
			WithContext("path", tocPath)
	}

	toc, err := buildTOC(s.posts, nav, ex)
	if err != nil {
		return blogerr.Wrap(err, blogerr.CategoryInternal, blogerr.SeverityFatal, "render table of contents")
	}

	return writeFileIfChanged(tocPath, toc)
}

// RenderAll regenerates every artifact: homepage, TOC and, when enabled, the
// feed.
func (s *Site) RenderAll() error {
	if err := s.RenderHomepage(); err != nil {
		return err
	}
	if err := s.RenderTOC(); err != nil {
		return err
	}
	if s.conf.Features.AtomFeed {
		return s.RenderAtom()
	}
	return nil
}

// writeFileIfChanged skips the write when the file already has the content,
// so regeneration leaves modification times alone when nothing changed.
func writeFileIfChanged(path string, content []byte) error {
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, content) {
		slog.Debug("Unchanged", "path", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o775); err != nil {
		return blogerr.FileSystemError(err, "cannot create directory for %s", path)
	}
	if err := os.WriteFile(path, content, os.FileMode(0o664)); err != nil {
		return blogerr.FileSystemError(err, "cannot write %s", path)
	}
	slog.Info("Wrote", "path", path)
	return nil
}
