package main

import (
	"log/slog"
	"strings"
	"time"

	atom "github.com/thomas11/atomgenerator"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

// RenderAtom writes an Atom feed of the dated posts.
func (s *Site) RenderAtom() error {
	xml, err := s.renderFeed(newMarkdownRenderer())
	if err != nil {
		return err
	}
	return writeFileIfChanged(s.conf.FeedPath(), xml)
}

func (s *Site) renderFeed(r renderer) ([]byte, error) {
	baseURL := s.conf.URLs.Website
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	dated := s.posts.dated()
	feed := atom.Feed{
		Title:   s.conf.Blog.Title,
		Link:    baseURL,
		PubDate: feedDate(dated),
	}
	feed.AddAuthor(atom.Author{
		Name: s.conf.Blog.Author,
		Uri:  s.conf.URLs.Website,
	})

	for _, p := range dated {
		feed.AddEntry(s.entryForPost(p, baseURL, r))
	}

	errs := feed.Validate()
	if len(errs) > 0 {
		for _, e := range errs {
			slog.Error("Atom feed is not valid", "error", e)
		}
		return nil, blogerr.Wrap(errs[0], blogerr.CategoryConfig, blogerr.SeverityFatal,
			"atom feed is not valid, check blog.title, blog.author and urls.website")
	}

	return feed.GenXml()
}

func (s *Site) entryForPost(p *post, baseURL string, r renderer) *atom.Entry {
	return &atom.Entry{
		Title:       p.Title,
		Description: p.Description,
		Link:        baseURL + p.TOCFile() + ".html",
		PubDate:     p.Date,
		Content:     r.render(p.Body),
	}
}

// feedDate is the newest post date, so an unchanged blog produces an
// unchanged feed.
func feedDate(ps posts) time.Time {
	if d := ps.latestDate(); !d.IsZero() {
		return d
	}
	return time.Unix(0, 0).UTC()
}
