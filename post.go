package main

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"
)

// post is one Markdown file from the posts directory.
type post struct {
	Title       string
	Date        time.Time // zero when unknown
	DateText    string
	Description string
	// SourcePath is slash separated and relative to the project root. Unique.
	SourcePath string

	Bibliography  string
	CitationStyle string
	Body          []byte

	Warnings []string
}

func (p *post) HasDate() bool {
	return !p.Date.IsZero()
}

// TOCFile is the source path without extension, as the book TOC expects it.
func (p *post) TOCFile() string {
	return strings.TrimSuffix(p.SourcePath, path.Ext(p.SourcePath))
}

// Stem is the file name without directory and extension.
func (p *post) Stem() string {
	base := path.Base(p.SourcePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

func (p *post) String() string {
	date := "unknown date"
	if p.HasDate() {
		date = p.Date.Format("2006-01-02")
	}
	return fmt.Sprintf("%q (%s) %s", p.Title, date, p.SourcePath)
}

type posts []*post

// comparePosts orders dated posts newest first, then undated posts; equal
// dates fall back to the source path so the order never depends on discovery.
func comparePosts(a, b *post) int {
	switch {
	case a.HasDate() && !b.HasDate():
		return -1
	case !a.HasDate() && b.HasDate():
		return 1
	}
	if c := b.Date.Compare(a.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.SourcePath, b.SourcePath)
}

func (ps posts) sort() {
	slices.SortFunc(ps, comparePosts)
}

func (ps posts) dated() posts {
	out := make(posts, 0, len(ps))
	for _, p := range ps {
		if p.HasDate() {
			out = append(out, p)
		}
	}
	return out
}

func (ps posts) latestDate() time.Time {
	var t time.Time
	for _, p := range ps {
		if p.Date.After(t) {
			t = p.Date
		}
	}
	return t
}

// earliestDate ignores undated posts.
func (ps posts) earliestDate() time.Time {
	var t time.Time
	for _, p := range ps {
		if p.HasDate() && (t.IsZero() || p.Date.Before(t)) {
			t = p.Date
		}
	}
	return t
}
