package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

// CLI holds the global flags and the commands.
type CLI struct {
	Root    string `short:"r" help:"Project root directory" default:"." env:"BOOKBLOG_ROOT"`
	Config  string `short:"c" help:"Configuration file, relative to the root" default:"blog_config.json" env:"BOOKBLOG_CONFIG"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Regen       RegenCmd       `cmd:"" default:"1" help:"Regenerate the homepage listing, the table of contents and the feed"`
	Posts       PostsCmd       `cmd:"" help:"Regenerate only the recent posts listing on the homepage"`
	TOC         TOCCmd         `cmd:"" name:"toc" help:"Regenerate only the table of contents"`
	List        ListCmd        `cmd:"" help:"Print the posts grouped by year"`
	Sync        SyncCmd        `cmd:"" help:"Apply blog_config.json to _config.yml and the homepage"`
	Bib         BibCmd         `cmd:"" help:"Show which bibliography files a post uses"`
	ValidateBib ValidateBibCmd `cmd:"" name:"validate-bib" help:"Check bibliography files and citations"`
	Init        InitCmd        `cmd:"" help:"Write a default configuration file"`
	Migrate     MigrateCmd     `cmd:"" help:"Move the legacy book/ layout to posts/ and references/"`
	Watch       WatchCmd       `cmd:"" help:"Regenerate whenever posts or the configuration change"`
}

// AfterApply runs after flag parsing; set up logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (c *CLI) loadConf() (*BlogConf, error) {
	return readConf(c.Root, c.Config)
}

func (c *CLI) loadSite() (*Site, error) {
	conf, err := c.loadConf()
	if err != nil {
		return nil, err
	}
	return ReadSite(conf)
}

type RegenCmd struct{}

func (r *RegenCmd) Run(cli *CLI) error {
	site, err := cli.loadSite()
	if err != nil {
		return err
	}
	return site.RenderAll()
}

type PostsCmd struct{}

func (p *PostsCmd) Run(cli *CLI) error {
	site, err := cli.loadSite()
	if err != nil {
		return err
	}
	return site.RenderHomepage()
}

type TOCCmd struct{}

func (t *TOCCmd) Run(cli *CLI) error {
	site, err := cli.loadSite()
	if err != nil {
		return err
	}
	return site.RenderTOC()
}

type ListCmd struct{}

func (l *ListCmd) Run(cli *CLI) error {
	site, err := cli.loadSite()
	if err != nil {
		return err
	}
	fmt.Print(groupByYear(site.posts).String())
	return nil
}

type SyncCmd struct{}

func (s *SyncCmd) Run(cli *CLI) error {
	conf, err := cli.loadConf()
	if err != nil {
		return err
	}
	err = syncConfig(conf)
	logSyncResult(err)
	return err
}

type BibCmd struct {
	Post string `arg:"" help:"Post file, relative to the root or the posts directory"`
}

func (b *BibCmd) Run(cli *CLI) error {
	conf, err := cli.loadConf()
	if err != nil {
		return err
	}

	rel := filepath.ToSlash(b.Post)
	fl := dirListing{root: conf.Root}
	if !fl.Exists(rel) {
		rel = path.Join(conf.Posts.Directory, rel)
	}
	if !fl.Exists(rel) {
		return blogerr.FileSystemError(nil, "post %s not found", b.Post)
	}

	p, err := readPostFromFile(conf.Root, conf.path(rel), readOptionsFromConf(conf))
	if err != nil {
		return blogerr.FileSystemError(err, "cannot read post %s", rel)
	}
	res := resolveBibliography(p, conf.Bibliography, conf.Posts.Directory, fl)
	fmt.Printf("%s (%s)\n", strings.Join(res.Files, ", "), res.Source)
	if p.CitationStyle != "" {
		fmt.Printf("citation style: %s\n", p.CitationStyle)
	}
	return nil
}

type ValidateBibCmd struct {
	Strict bool `help:"Treat warnings as errors; also enabled by bibliography.validation.strict_mode"`
}

func (v *ValidateBibCmd) Run(cli *CLI) error {
	site, err := cli.loadSite()
	if err != nil {
		return err
	}
	report := newBibValidator(site.conf, site.posts).Validate()
	return logBibReport(report, v.Strict || site.conf.Bibliography.Validation.StrictMode)
}

type InitCmd struct {
	Force       bool   `help:"Overwrite an existing configuration file"`
	Title       string `help:"Blog title"`
	Description string `help:"Blog description"`
	Author      string `help:"Author name"`
	GitHub      string `name:"github" help:"GitHub user name"`
	Repo        string `help:"Repository name"`
}

func (i *InitCmd) Run(cli *CLI) error {
	return initProject(cli.Root, cli.Config, initOptions{
		Title:       i.Title,
		Description: i.Description,
		Author:      i.Author,
		GitHubUser:  i.GitHub,
		Repository:  i.Repo,
		Force:       i.Force,
	})
}

type MigrateCmd struct{}

func (m *MigrateCmd) Run(cli *CLI) error {
	conf, err := cli.loadConf()
	if err != nil {
		return err
	}
	_, err = migrateLegacyLayout(conf)
	return err
}

type WatchCmd struct{}

func (w *WatchCmd) Run(cli *CLI) error {
	conf, err := cli.loadConf()
	if err != nil {
		return err
	}

	regen := func() error {
		conf, err := cli.loadConf()
		if err != nil {
			return err
		}
		site, err := ReadSite(conf)
		if err != nil {
			return err
		}
		return site.RenderAll()
	}
	// A broken homepage can be fixed while watching; anything else cannot.
	if err := regen(); err != nil {
		if !blogerr.IsCategory(err, blogerr.CategoryContent) {
			return err
		}
		slog.Error("Initial regeneration failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return regenerateOnChange(ctx, conf.PostsDir(), normalizePath(cli.Config, cli.Root), regen)
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bookblog"),
		kong.Description("Regenerates the post listing, table of contents and feed of a book-style blog."),
		kong.UsageOnError(),
	)

	if err := kctx.Run(&cli); err != nil {
		os.Exit(blogerr.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err))
	}
}
