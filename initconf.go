package main

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

type initOptions struct {
	Title       string
	Description string
	Author      string
	GitHubUser  string
	Repository  string
	Force       bool
}

// defaultConf is the configuration a fresh project starts with.
func defaultConf(opts initOptions) *BlogConf {
	title := cmp.Or(opts.Title, "My Technical Blog")
	author := cmp.Or(opts.Author, "Your Name")
	user := cmp.Or(opts.GitHubUser, "yourusername")
	repo := cmp.Or(opts.Repository, "jupyter-book-blog")
	on := true
	logo, _ := json.Marshal(defaultLogo)

	return &BlogConf{
		Blog: BlogInfo{
			Title:       title,
			Description: cmp.Or(opts.Description, "A technical blog powered by Jupyter Book"),
			Author:      author,
			Copyright:   fmt.Sprintf("© %d %s. All rights reserved.", time.Now().Year(), author),
			Logo:        logo,
			Favicon:     defaultLogo,
		},
		URLs: URLConf{
			Repository: fmt.Sprintf("https://github.com/%s/%s", user, repo),
			Website:    fmt.Sprintf("https://%s.github.io/%s", user, repo),
			Branch:     "main",
		},
		Social: map[string]any{
			"github":   user,
			"twitter":  "",
			"linkedin": "",
			"email":    "",
		},
		Navigation: NavigationConfig{
			QuickLinks: []QuickLink{
				{Title: "About", File: "about"},
				{Title: "Projects", File: "projects"},
				{Title: "Contact", File: "contact"},
			},
			BlogSectionTitle: defaultBlogSection,
		},
		Homepage: HomepageConf{
			WelcomeText: fmt.Sprintf("Welcome to %s! This is where I share my thoughts, experiences, and insights on various topics.", title),
		},
		Posts: PostsConf{
			Directory:         defaultPostsDir,
			DescriptionLength: 150,
			DateFormat:        defaultDateFormat,
			NumericDateOrder:  OrderMDY,
		},
		Bibliography: BibliographyConf{
			Mode:          bibModeAuto,
			GlobalFile:    defaultGlobalBibFile,
			CitationStyle: defaultCitationStyle,
		},
		Features: FeaturesConf{
			GithubButtons: GithubButtons{Repository: &on, Issues: &on, Edit: &on, Download: &on},
			AtomFeed:      true,
		},
		Build: BuildConf{
			ExcludePatterns:  defaultExcludePatterns,
			ExecuteNotebooks: "auto",
		},
	}
}

// initProject writes a default configuration and creates the posts directory.
// An existing configuration is only replaced with opts.Force.
func initProject(root, confFile string, opts initOptions) error {
	path := normalizePath(confFile, root)
	if _, err := os.Stat(path); err == nil && !opts.Force {
		return blogerr.ConfigError(nil, "%s already exists, use --force to overwrite it", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return blogerr.FileSystemError(err, "cannot access %s", path)
	}

	conf := defaultConf(opts)
	out, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return blogerr.Wrap(err, blogerr.CategoryInternal, blogerr.SeverityFatal, "encode configuration")
	}
	if err := writeFileIfChanged(path, append(out, '\n')); err != nil {
		return err
	}

	posts := filepath.Join(root, conf.Posts.Directory)
	if err := os.MkdirAll(posts, 0o775); err != nil {
		return blogerr.FileSystemError(err, "cannot create %s", posts)
	}

	slog.Info("Initialized blog", "config", path, "title", conf.Blog.Title)
	return nil
}
