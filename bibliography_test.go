package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeListing answers Exists from files and Glob from canned results.
type fakeListing struct {
	files map[string]bool
	globs map[string][]string
}

func (f fakeListing) Exists(rel string) bool        { return f.files[rel] }
func (f fakeListing) Glob(pattern string) []string { return f.globs[pattern] }

func testBibConf(mode string) BibliographyConf {
	conf := BlogConf{Bibliography: BibliographyConf{Mode: mode}}
	conf.applyDefaults()
	return conf.Bibliography
}

func TestResolveBibliography_FrontmatterWins(t *testing.T) {
	p := &post{SourcePath: "posts/a.md", Bibliography: "references/special.bib"}
	fl := fakeListing{files: map[string]bool{"posts/a.bib": true}}

	res := resolveBibliography(p, testBibConf(bibModeAuto), "posts", fl)
	require.Equal(t, []string{"references/special.bib"}, res.Files)
	require.Equal(t, bibFromFrontmatter, res.Source)
}

func TestResolveBibliography_Sibling(t *testing.T) {
	p := &post{SourcePath: "posts/a.md"}
	fl := fakeListing{files: map[string]bool{"posts/a.bib": true, "references/global.bib": true}}

	res := resolveBibliography(p, testBibConf(bibModeGlobal), "posts", fl)
	require.Equal(t, []string{"posts/a.bib"}, res.Files)
	require.Equal(t, bibFromSibling, res.Source)
}

func TestResolveBibliography_Modes(t *testing.T) {
	p := &post{SourcePath: "posts/a.md"}

	tests := []struct {
		name string
		mode string
		fl   fakeListing
		want []string
	}{
		{
			name: "global",
			mode: bibModeGlobal,
			fl:   fakeListing{files: map[string]bool{"references/global.bib": true}},
			want: []string{"references/global.bib"},
		},
		{
			name: "per-post skips hidden and backups",
			mode: bibModePerPost,
			fl: fakeListing{globs: map[string][]string{
				"posts/*.bib": {"posts/_draft.bib", "posts/b.bib", "posts/b.backup.bib"},
			}},
			want: []string{"posts/b.bib"},
		},
		{
			name: "per-post falls back to global",
			mode: bibModePerPost,
			fl:   fakeListing{files: map[string]bool{"references/global.bib": true}},
			want: []string{"references/global.bib"},
		},
		{
			name: "all-files scans patterns",
			mode: bibModeAllFiles,
			fl: fakeListing{globs: map[string][]string{
				"references/*.bib": {"references/global.bib", "references/old.bib"},
				"posts/*.bib":      {"posts/b.bib", "references/global.bib"},
			}},
			want: []string{"references/global.bib", "references/old.bib", "posts/b.bib"},
		},
		{
			name: "auto combines posts and references",
			mode: bibModeAuto,
			fl: fakeListing{globs: map[string][]string{
				"posts/*.bib":      {"posts/b.bib"},
				"references/*.bib": {"references/global.bib"},
			}},
			want: []string{"posts/b.bib", "references/global.bib"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolveBibliography(p, testBibConf(tt.mode), "posts", tt.fl)
			require.Equal(t, tt.want, res.Files)
			require.Equal(t, bibFromMode, res.Source)
		})
	}
}

func TestResolveBibliography_GlobalDefault(t *testing.T) {
	p := &post{SourcePath: "posts/a.md"}
	res := resolveBibliography(p, testBibConf(bibModeGlobal), "posts", fakeListing{})
	require.Equal(t, []string{"references/global.bib"}, res.Files)
	require.Equal(t, bibFromGlobal, res.Source)
}

func TestDiscoverBibFiles_ExcludePatterns(t *testing.T) {
	bib := testBibConf(bibModeAllFiles)
	bib.Discovery.ExcludePatterns = []string{"old.bib"}
	fl := fakeListing{globs: map[string][]string{
		"references/*.bib": {"references/global.bib", "references/old.bib"},
	}}

	require.Equal(t, []string{"references/global.bib"}, discoverBibFiles(bib, "posts", fl))
}

func TestDiscoverBibFiles_NeverEmpty(t *testing.T) {
	require.Equal(t, []string{"references/global.bib"},
		discoverBibFiles(testBibConf(bibModeAuto), "posts", fakeListing{}))
}

func TestDirListing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "references", "global.bib"), "")
	writeFile(t, filepath.Join(root, "references", "topics", "ml.bib"), "")
	writeFile(t, filepath.Join(root, "references", "notes.txt"), "")
	writeFile(t, filepath.Join(root, "posts", "a.bib"), "")

	fl := dirListing{root: root}
	require.True(t, fl.Exists("references/global.bib"))
	require.False(t, fl.Exists("references"))
	require.False(t, fl.Exists("references/missing.bib"))

	require.Equal(t, []string{"references/global.bib", "references/topics/ml.bib"}, fl.Glob("references/**/*.bib"))
	require.Equal(t, []string{"posts/a.bib"}, fl.Glob("posts/*.bib"))
	require.Empty(t, fl.Glob("nowhere/*.bib"))
}
