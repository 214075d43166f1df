package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type wrapRenderer struct{}

func (wrapRenderer) render(in []byte) string { return "<p>" + string(in) + "</p>" }

func TestEntryForPost(t *testing.T) {
	s := &Site{conf: &BlogConf{}}
	p := &post{
		Title:       "Hello",
		Description: "Short.",
		SourcePath:  "posts/2024/hello.md",
		Date:        day(2024, time.March, 25),
		Body:        []byte("body"),
	}

	e := s.entryForPost(p, "https://joe.github.io/notebook/", wrapRenderer{})
	require.Equal(t, "Hello", e.Title)
	require.Equal(t, "Short.", e.Description)
	require.Equal(t, "https://joe.github.io/notebook/posts/2024/hello.html", e.Link)
	require.Equal(t, day(2024, time.March, 25), e.PubDate)
	require.Equal(t, "<p>body</p>", e.Content)
}

func TestFeedDate(t *testing.T) {
	ps := posts{
		{SourcePath: "a", Date: day(2024, time.March, 1)},
		{SourcePath: "b", Date: day(2024, time.March, 25)},
	}
	require.Equal(t, day(2024, time.March, 25), feedDate(ps))
	require.Equal(t, time.Unix(0, 0).UTC(), feedDate(nil))
}

func TestMarkdownRenderer(t *testing.T) {
	out := newMarkdownRenderer().render([]byte("# Title\n\nSome *text*.\n"))
	require.Contains(t, out, "<h1>Title</h1>")
	require.Contains(t, out, "<em>text</em>")
}
