package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

// BlogConf mirrors blog_config.json. Only the sections the tooling reads are
// modeled; unknown keys are ignored.
type BlogConf struct {
	Blog         BlogInfo         `json:"blog"`
	URLs         URLConf          `json:"urls"`
	Social       map[string]any   `json:"social,omitempty"`
	Navigation   NavigationConfig `json:"navigation"`
	Homepage     HomepageConf     `json:"homepage"`
	Posts        PostsConf        `json:"posts"`
	Bibliography BibliographyConf `json:"bibliography"`
	Features     FeaturesConf     `json:"features"`
	Feed         FeedConf         `json:"feed"`
	Build        BuildConf        `json:"build"`

	// Root is the project directory every relative path is resolved against.
	// It is not part of the JSON file.
	Root string `json:"-"`
}

type BlogInfo struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Author      string          `json:"author"`
	Copyright   string          `json:"copyright,omitempty"`
	Logo        json.RawMessage `json:"logo,omitempty"`
	Favicon     string          `json:"favicon,omitempty"`
}

type URLConf struct {
	Repository string `json:"repository"`
	Website    string `json:"website"`
	Branch     string `json:"branch"`
}

// QuickLink is one hand-picked navigation entry.
type QuickLink struct {
	Title string `json:"title"`
	File  string `json:"file"`
}

// NavigationConfig drives the TOC. Read-only once loaded.
type NavigationConfig struct {
	QuickLinks        []QuickLink `json:"quick_links"`
	QuickLinksCaption string      `json:"quick_links_caption,omitempty"`
	BlogSectionTitle  string      `json:"blog_section_title"`
}

type BannerConf struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	AltText string `json:"alt_text,omitempty"`
}

type HomepageConf struct {
	File        string      `json:"file,omitempty"`
	WelcomeText string      `json:"welcome_text,omitempty"`
	Banner      *BannerConf `json:"banner,omitempty"`
}

type PostsConf struct {
	Directory           string           `json:"directory,omitempty"`
	MaxPostsOnHomepage  int              `json:"max_posts_on_homepage"`
	DescriptionLength   int              `json:"description_length,omitempty"`
	DescriptionFallback bool             `json:"description_fallback,omitempty"`
	DateFormat          string           `json:"date_format,omitempty"`
	NumericDateOrder    NumericDateOrder `json:"numeric_date_order,omitempty"`
}

type BibDiscoveryConf struct {
	ScanPatterns    []string `json:"scan_patterns,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
}

type BibValidationConf struct {
	StrictMode bool `json:"strict_mode"`
}

type BibliographyConf struct {
	Mode          string            `json:"mode,omitempty"`
	GlobalFile    string            `json:"global_file,omitempty"`
	CitationStyle string            `json:"citation_style,omitempty"`
	Discovery     BibDiscoveryConf  `json:"discovery"`
	Validation    BibValidationConf `json:"validation"`
}

type GithubButtons struct {
	Repository *bool `json:"repository,omitempty"`
	Issues     *bool `json:"issues,omitempty"`
	Edit       *bool `json:"edit,omitempty"`
	Download   *bool `json:"download,omitempty"`
}

type FeaturesConf struct {
	GithubButtons GithubButtons `json:"github_buttons"`
	AtomFeed      bool          `json:"atom_feed,omitempty"`
}

type FeedConf struct {
	Path string `json:"path,omitempty"`
}

type BuildConf struct {
	ExcludePatterns  []string `json:"exclude_patterns,omitempty"`
	ExecuteNotebooks string   `json:"execute_notebooks,omitempty"`
}

const (
	defaultConfFile        = "blog_config.json"
	defaultPostsDir        = "posts"
	defaultHomepageFile    = "index.md"
	defaultTOCFile         = "_toc.yml"
	defaultJBConfigFile    = "_config.yml"
	defaultGlobalBibFile   = "references/global.bib"
	defaultDateFormat      = "%B %d, %Y"
	defaultFeedPath        = "_static/feed.xml"
	defaultQuickLinksTitle = "Quick Links"
	defaultBlogSection     = "Blog Posts"
)

// readConf loads the configuration file. A missing or malformed file is
// fatal: nothing sensible can be generated without navigation settings.
func readConf(root, fileName string) (*BlogConf, error) {
	path := normalizePath(fileName, root)
	rawConf, err := os.ReadFile(path)
	if err != nil {
		return nil, blogerr.ConfigError(err, "cannot read configuration %s", path)
	}

	conf := BlogConf{}
	if err = json.Unmarshal(rawConf, &conf); err != nil {
		return nil, blogerr.ConfigError(err, "invalid JSON in %s", path)
	}
	conf.Root = root

	conf.applyDefaults()
	if err := conf.validate(); err != nil {
		return nil, err
	}

	slog.Debug("Loaded configuration", "path", path, "mode", conf.Bibliography.Mode)
	return &conf, nil
}

func (c *BlogConf) applyDefaults() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.Posts.Directory == "" {
		c.Posts.Directory = defaultPostsDir
	}
	if c.Posts.DateFormat == "" {
		c.Posts.DateFormat = defaultDateFormat
	}
	if c.Posts.NumericDateOrder == "" {
		c.Posts.NumericDateOrder = OrderMDY
	}
	if c.Posts.DescriptionLength <= 0 {
		c.Posts.DescriptionLength = 150
	}
	if c.Homepage.File == "" {
		c.Homepage.File = defaultHomepageFile
	}
	if c.Navigation.QuickLinksCaption == "" {
		c.Navigation.QuickLinksCaption = defaultQuickLinksTitle
	}
	if c.Navigation.BlogSectionTitle == "" {
		c.Navigation.BlogSectionTitle = defaultBlogSection
	}
	if c.Bibliography.Mode == "" {
		c.Bibliography.Mode = bibModeAuto
	}
	if c.Bibliography.GlobalFile == "" {
		c.Bibliography.GlobalFile = defaultGlobalBibFile
	}
	if len(c.Bibliography.Discovery.ScanPatterns) == 0 {
		c.Bibliography.Discovery.ScanPatterns = []string{"references/*.bib", "posts/*.bib"}
	}
	if c.Feed.Path == "" {
		c.Feed.Path = defaultFeedPath
	}
}

func (c *BlogConf) validate() error {
	switch c.Posts.NumericDateOrder {
	case OrderMDY, OrderDMY:
	default:
		return blogerr.ConfigError(nil, "posts.numeric_date_order must be %q or %q, got %q",
			OrderMDY, OrderDMY, c.Posts.NumericDateOrder)
	}
	for i, l := range c.Navigation.QuickLinks {
		if l.File == "" {
			return blogerr.ConfigError(nil, "navigation.quick_links[%d] has no file", i)
		}
	}
	return nil
}

// path resolves a project-relative path against the root.
func (c *BlogConf) path(rel string) string {
	return normalizePath(filepath.FromSlash(rel), c.Root)
}

func (c *BlogConf) PostsDir() string     { return c.path(c.Posts.Directory) }
func (c *BlogConf) HomepagePath() string { return c.path(c.Homepage.File) }
func (c *BlogConf) TOCPath() string      { return c.path(defaultTOCFile) }
func (c *BlogConf) FeedPath() string     { return c.path(c.Feed.Path) }

func (c *BlogConf) String() string {
	return fmt.Sprintf("%s by %s (posts in %s)", c.Blog.Title, c.Blog.Author, c.Posts.Directory)
}

// Normalize relative paths because the executable can be called from anywhere.
func normalizePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
