package main

import (
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

const (
	bibModeGlobal   = "global"
	bibModePerPost  = "per-post"
	bibModeAllFiles = "all-files"
	bibModeAuto     = "auto"
)

// bibSource names the rule that produced a bibliography resolution.
type bibSource string

const (
	bibFromFrontmatter bibSource = "frontmatter"
	bibFromSibling     bibSource = "sibling"
	bibFromMode        bibSource = "mode"
	bibFromGlobal      bibSource = "global"
)

type bibResolution struct {
	Files  []string
	Source bibSource
}

// fileListing is the read-only view of the project tree the bibliography
// rules need. Paths are slash separated and relative to the project root.
type fileListing interface {
	Exists(rel string) bool
	Glob(pattern string) []string
}

// dirListing answers fileListing queries from the filesystem below root.
type dirListing struct {
	root string
}

func (d dirListing) Exists(rel string) bool {
	info, err := os.Stat(filepath.Join(d.root, filepath.FromSlash(rel)))
	return err == nil && !info.IsDir()
}

// Glob supports the filepath.Match syntax plus a single "dir/**/pattern"
// form that matches pattern at any depth below dir.
func (d dirListing) Glob(pattern string) []string {
	var matches []string
	if dir, rest, ok := strings.Cut(pattern, "/**/"); ok {
		base := filepath.Join(d.root, filepath.FromSlash(dir))
		_ = filepath.WalkDir(base, func(p string, e fs.DirEntry, err error) error {
			if err != nil || e.IsDir() {
				return nil
			}
			if ok, _ := path.Match(rest, e.Name()); ok {
				matches = append(matches, d.rel(p))
			}
			return nil
		})
	} else {
		found, _ := filepath.Glob(filepath.Join(d.root, filepath.FromSlash(pattern)))
		for _, f := range found {
			if info, err := os.Stat(f); err == nil && !info.IsDir() {
				matches = append(matches, d.rel(f))
			}
		}
	}
	slices.Sort(matches)
	return matches
}

func (d dirListing) rel(p string) string {
	r, err := filepath.Rel(d.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

// resolveBibliography picks the .bib files for one post: explicit frontmatter,
// then a same-named sibling file, then the configured mode's set, then the
// global default file.
func resolveBibliography(p *post, bib BibliographyConf, postsDir string, fl fileListing) bibResolution {
	if p.Bibliography != "" {
		return bibResolution{Files: []string{p.Bibliography}, Source: bibFromFrontmatter}
	}

	sibling := path.Join(path.Dir(p.SourcePath), p.Stem()+".bib")
	if fl.Exists(sibling) {
		return bibResolution{Files: []string{sibling}, Source: bibFromSibling}
	}

	if files := modeBibFiles(bib, postsDir, fl); len(files) > 0 {
		return bibResolution{Files: files, Source: bibFromMode}
	}

	return bibResolution{Files: []string{bib.GlobalFile}, Source: bibFromGlobal}
}

// modeBibFiles is the file set of the configured mode, without the global
// fallbacks.
func modeBibFiles(bib BibliographyConf, postsDir string, fl fileListing) []string {
	var files []string
	switch bib.Mode {
	case bibModeGlobal:
		if fl.Exists(bib.GlobalFile) {
			files = append(files, bib.GlobalFile)
		}
	case bibModePerPost:
		files = append(files, visibleBibFiles(fl.Glob(path.Join(postsDir, "*.bib")))...)
		if len(files) == 0 && fl.Exists(bib.GlobalFile) {
			files = append(files, bib.GlobalFile)
		}
	case bibModeAllFiles:
		for _, pattern := range bib.Discovery.ScanPatterns {
			for _, f := range visibleBibFiles(fl.Glob(pattern)) {
				if !excluded(f, bib.Discovery.ExcludePatterns) {
					files = append(files, f)
				}
			}
		}
	default:
		files = append(files, visibleBibFiles(fl.Glob(path.Join(postsDir, "*.bib")))...)
		files = append(files, visibleBibFiles(fl.Glob("references/*.bib"))...)
	}
	return dedupe(files)
}

// discoverBibFiles returns the project-wide bibliography list written to the
// book configuration. It never returns an empty list.
func discoverBibFiles(bib BibliographyConf, postsDir string, fl fileListing) []string {
	files := modeBibFiles(bib, postsDir, fl)
	if len(files) == 0 && fl.Exists(bib.GlobalFile) {
		files = []string{bib.GlobalFile}
	}
	if len(files) == 0 {
		slog.Warn("No bibliography files found, keeping the default path", "path", bib.GlobalFile)
		return []string{bib.GlobalFile}
	}
	slog.Info("Discovered bibliography files", "count", len(files), "mode", bib.Mode)
	return files
}

func visibleBibFiles(files []string) []string {
	out := files[:0:0]
	for _, f := range files {
		base := path.Base(f)
		if !strings.HasPrefix(base, "_") && !strings.Contains(strings.ToLower(base), "backup") {
			out = append(out, f)
		}
	}
	return out
}

func excluded(f string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, f); ok {
			return true
		}
		if ok, _ := path.Match(p, path.Base(f)); ok {
			return true
		}
	}
	return false
}

func dedupe(files []string) []string {
	seen := make(map[string]bool, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
