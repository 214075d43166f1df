package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

func TestReadConf_Example(t *testing.T) {
	conf, err := readConf("example", "blog_config.json")
	require.NoError(t, err)

	require.Equal(t, "Joe User's Notebook", conf.Blog.Title)
	require.Equal(t, "example", conf.Root)
	require.Len(t, conf.Navigation.QuickLinks, 2)
	require.Equal(t, "Quick Links", conf.Navigation.QuickLinksCaption)
	require.Equal(t, 10, conf.Posts.MaxPostsOnHomepage)
	require.True(t, conf.Features.AtomFeed)
	require.False(t, enabled(conf.Features.GithubButtons.Edit))
	require.True(t, enabled(conf.Features.GithubButtons.Issues))
	require.Equal(t, "images/general/banner.jpg", conf.Homepage.Banner.Value)

	require.Equal(t, filepath.Join("example", "posts"), conf.PostsDir())
	require.Equal(t, filepath.Join("example", "index.md"), conf.HomepagePath())
	require.Equal(t, filepath.Join("example", "_toc.yml"), conf.TOCPath())
	require.Equal(t, filepath.Join("example", "_static", "feed.xml"), conf.FeedPath())
}

func TestReadConf_Defaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog_config.json"), `{"blog": {"title": "T"}}`)

	conf, err := readConf(root, "blog_config.json")
	require.NoError(t, err)
	require.Equal(t, defaultPostsDir, conf.Posts.Directory)
	require.Equal(t, OrderMDY, conf.Posts.NumericDateOrder)
	require.Equal(t, defaultDateFormat, conf.Posts.DateFormat)
	require.Equal(t, 150, conf.Posts.DescriptionLength)
	require.Equal(t, defaultBlogSection, conf.Navigation.BlogSectionTitle)
	require.Equal(t, bibModeAuto, conf.Bibliography.Mode)
	require.Equal(t, defaultGlobalBibFile, conf.Bibliography.GlobalFile)
	require.False(t, conf.Features.AtomFeed)
}

func TestReadConf_Errors(t *testing.T) {
	root := t.TempDir()

	_, err := readConf(root, "missing.json")
	require.True(t, blogerr.IsCategory(err, blogerr.CategoryConfig))

	writeFile(t, filepath.Join(root, "bad.json"), `{"blog": `)
	_, err = readConf(root, "bad.json")
	require.True(t, blogerr.IsCategory(err, blogerr.CategoryConfig))

	writeFile(t, filepath.Join(root, "order.json"), `{"posts": {"numeric_date_order": "ymd"}}`)
	_, err = readConf(root, "order.json")
	require.True(t, blogerr.IsCategory(err, blogerr.CategoryConfig))

	writeFile(t, filepath.Join(root, "links.json"), `{"navigation": {"quick_links": [{"title": "About"}]}}`)
	_, err = readConf(root, "links.json")
	require.True(t, blogerr.IsCategory(err, blogerr.CategoryConfig))
}

func TestNormalizePath(t *testing.T) {
	require.Equal(t, filepath.Join("base", "x"), normalizePath("x", "base"))
	abs := filepath.Join(t.TempDir(), "x")
	require.Equal(t, abs, normalizePath(abs, "base"))
}
