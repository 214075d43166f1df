package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

const engineConf = `{
  "blog": {"title": "Test Blog", "author": "Joe"},
  "navigation": {
    "quick_links": [{"title": "About", "file": "about"}],
    "blog_section_title": "Blog Posts"
  },
  "posts": {"date_format": "%B %d, %Y"}
}`

func newTestSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog_config.json"), engineConf)
	writeFile(t, filepath.Join(root, "index.md"),
		"# Test Blog\n\nHand-written intro.\n\n"+recentPostsBegin+"\n"+recentPostsEnd+"\n\nFooter.\n")
	writeFile(t, filepath.Join(root, "posts", "getting-started.md"),
		"---\ntitle: Getting Started\ndate: 2024-03-25\ndescription: First steps.\n---\n# Getting Started\n")
	writeFile(t, filepath.Join(root, "posts", "middle.md"),
		"---\ndate: \"03/22/2024\"\n---\n# Middle Post\n")
	writeFile(t, filepath.Join(root, "posts", "legacy.md"),
		"# Legacy Post\n\n*March 15, 2024*\n\nOld body.\n")
	writeFile(t, filepath.Join(root, "posts", "undated.md"),
		"# Someday\n\nNo date here.\n")
	return root
}

func regenerate(t *testing.T, root string) {
	t.Helper()
	conf, err := readConf(root, "blog_config.json")
	require.NoError(t, err)
	site, err := ReadSite(conf)
	require.NoError(t, err)
	require.NoError(t, site.RenderAll())
}

func readString(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestRenderAll_EndToEnd(t *testing.T) {
	root := newTestSite(t)
	regenerate(t, root)

	index := readString(t, filepath.Join(root, "index.md"))
	require.True(t, strings.HasPrefix(index, "# Test Blog\n\nHand-written intro.\n\n"+recentPostsBegin+"\n"))
	require.True(t, strings.HasSuffix(index, recentPostsEnd+"\n\nFooter.\n"))

	order := []string{
		"### [Getting Started](posts/getting-started.md)\n*March 25, 2024*\n\nFirst steps.\n",
		"### [Middle Post](posts/middle.md)\n*March 22, 2024*\n",
		"### [Legacy Post](posts/legacy.md)\n*March 15, 2024*\n",
		"### [Someday](posts/undated.md)\n*Unknown date*\n",
	}
	last := -1
	for _, entry := range order {
		i := strings.Index(index, entry)
		require.Greater(t, i, last, entry)
		last = i
	}

	toc := parseTOC(t, []byte(readString(t, filepath.Join(root, "_toc.yml"))))
	require.Len(t, toc.Parts, 2)
	require.Equal(t, []map[string]string{
		{"file": "posts/getting-started"},
		{"file": "posts/middle"},
		{"file": "posts/legacy"},
		{"file": "posts/undated"},
	}, toc.Parts[1].Chapters)

	_, err := os.Stat(filepath.Join(root, "_static", "feed.xml"))
	require.True(t, os.IsNotExist(err))
}

func TestRenderAll_SecondRunIsByteIdentical(t *testing.T) {
	root := newTestSite(t)
	regenerate(t, root)
	index := readString(t, filepath.Join(root, "index.md"))
	toc := readString(t, filepath.Join(root, "_toc.yml"))

	info, err := os.Stat(filepath.Join(root, "index.md"))
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "index.md"), past, past))

	regenerate(t, root)
	require.Equal(t, index, readString(t, filepath.Join(root, "index.md")))
	require.Equal(t, toc, readString(t, filepath.Join(root, "_toc.yml")))

	after, err := os.Stat(filepath.Join(root, "index.md"))
	require.NoError(t, err)
	require.True(t, after.ModTime().Before(info.ModTime()), "unchanged homepage was rewritten")
}

func TestRenderHomepage_CreatesMissingHomepage(t *testing.T) {
	root := newTestSite(t)
	require.NoError(t, os.Remove(filepath.Join(root, "index.md")))
	regenerate(t, root)

	index := readString(t, filepath.Join(root, "index.md"))
	require.True(t, strings.HasPrefix(index, "# Test Blog\n\n## Recent Posts\n\n"+recentPostsBegin))
}

func TestRenderHomepage_MalformedMarkersAreFatal(t *testing.T) {
	root := newTestSite(t)
	writeFile(t, filepath.Join(root, "index.md"), "# Blog\n\n"+recentPostsBegin+"\n")

	conf, err := readConf(root, "blog_config.json")
	require.NoError(t, err)
	site, err := ReadSite(conf)
	require.NoError(t, err)

	err = site.RenderHomepage()
	require.Error(t, err)
	require.True(t, blogerr.IsCategory(err, blogerr.CategoryContent))
	require.Equal(t, "# Blog\n\n"+recentPostsBegin+"\n", readString(t, filepath.Join(root, "index.md")))
}

func TestReadSite_MissingPostsDirIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog_config.json"), engineConf)

	conf, err := readConf(root, "blog_config.json")
	require.NoError(t, err)
	_, err = ReadSite(conf)
	require.Error(t, err)
	require.True(t, blogerr.IsFatal(err))
	require.True(t, blogerr.IsCategory(err, blogerr.CategoryFileSystem))
}

func TestReadSite_EmptyPostsDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "blog_config.json"), engineConf)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "posts"), 0o755))

	regenerate(t, root)
	index := readString(t, filepath.Join(root, "index.md"))
	require.Contains(t, index, recentPostsBegin+"\n"+recentPostsEnd+"\n")

	toc := parseTOC(t, []byte(readString(t, filepath.Join(root, "_toc.yml"))))
	require.Len(t, toc.Parts, 1)
	require.Equal(t, "Quick Links", toc.Parts[0].Caption)
}

func TestRenderAll_RenamedBlogSectionDoesNotDuplicatePosts(t *testing.T) {
	root := newTestSite(t)
	regenerate(t, root)

	writeFile(t, filepath.Join(root, "blog_config.json"),
		strings.Replace(engineConf, `"Blog Posts"`, `"Articles"`, 1))
	regenerate(t, root)

	out := readString(t, filepath.Join(root, "_toc.yml"))
	require.NotContains(t, out, "Blog Posts")
	require.Equal(t, 1, strings.Count(out, "posts/getting-started"))

	toc := parseTOC(t, []byte(out))
	require.Len(t, toc.Parts, 2)
	require.Equal(t, "Articles", toc.Parts[1].Caption)
}

func TestRenderAll_MarkerInDescriptionSurvivesRerun(t *testing.T) {
	root := newTestSite(t)
	writeFile(t, filepath.Join(root, "posts", "weird.md"),
		"---\ndate: 2024-01-01\ndescription: |\n  Odd.\n  "+recentPostsEnd+"\n---\n# Weird\n")

	regenerate(t, root)
	first := readString(t, filepath.Join(root, "index.md"))
	require.Equal(t, 1, strings.Count(first, recentPostsEnd))
	require.Contains(t, first, "Odd.\n&lt;!-- END RECENT POSTS -->\n")

	regenerate(t, root)
	require.Equal(t, first, readString(t, filepath.Join(root, "index.md")))
}
