package main

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

var (
	bibEntryRe = regexp.MustCompile(`^\s*@(\w+)\s*\{\s*([^,\s]+)`)
	citeRe     = regexp.MustCompile("\\{cite(?::[a-z]+)?\\}`([^`]+)`")
)

// BibTeX entry types that do not define citation keys.
var nonCitationEntries = map[string]bool{"comment": true, "string": true, "preamble": true}

type bibKeyLocation struct {
	File string
	Line int
}

// bibReport collects findings. Errors fail the run; warnings fail it in
// strict mode; info is never fatal.
type bibReport struct {
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *bibReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *bibReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *bibReport) infof(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// Failed reports whether the validation should exit non-zero.
func (r *bibReport) Failed(strict bool) bool {
	return len(r.Errors) > 0 || (strict && len(r.Warnings) > 0)
}

type bibValidator struct {
	root     string
	postsDir string
	fl       fileListing
	ps       posts
}

func newBibValidator(conf *BlogConf, ps posts) *bibValidator {
	return &bibValidator{
		root:     conf.Root,
		postsDir: conf.Posts.Directory,
		fl:       dirListing{root: conf.Root},
		ps:       ps,
	}
}

// bibFiles lists every .bib file the validator looks at.
func (v *bibValidator) bibFiles() []string {
	files := v.fl.Glob("references/**/*.bib")
	files = append(files, v.fl.Glob(path.Join(v.postsDir, "*.bib"))...)
	return dedupe(visibleBibFiles(files))
}

func (v *bibValidator) read(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(v.root, filepath.FromSlash(rel)))
}

// Validate runs all checks.
func (v *bibValidator) Validate() *bibReport {
	r := &bibReport{}
	files := v.bibFiles()
	if len(files) == 0 {
		r.warnf("no bibliography files found")
	}

	keys := make(map[string][]bibKeyLocation)
	for _, f := range files {
		content, err := v.read(f)
		if err != nil {
			r.errorf("cannot read %s: %v", f, err)
			continue
		}
		checkBibSyntax(f, content, r)
		for key, line := range parseBibKeys(content) {
			keys[key] = append(keys[key], bibKeyLocation{File: f, Line: line})
		}
	}

	checkDuplicateKeys(keys, r)
	v.checkMissingBibFiles(r)
	cited := v.checkOrphanedCitations(keys, r)
	checkUnusedReferences(keys, cited, r)
	return r
}

// parseBibKeys maps citation keys to the line they are defined on.
func parseBibKeys(content []byte) map[string]int {
	keys := make(map[string]int)
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		m := bibEntryRe.FindStringSubmatch(sc.Text())
		if m == nil || nonCitationEntries[strings.ToLower(m[1])] {
			continue
		}
		keys[m[2]] = n
	}
	return keys
}

func checkBibSyntax(file string, content []byte, r *bibReport) {
	open, closing := bytes.Count(content, []byte("{")), bytes.Count(content, []byte("}"))
	if open != closing {
		r.errorf("%s: mismatched braces ({: %d, }: %d)", file, open, closing)
	}
	if bytes.Contains(content, []byte("@@")) {
		r.errorf("%s: double @@ found (possible typo)", file)
	}
}

func checkDuplicateKeys(keys map[string][]bibKeyLocation, r *bibReport) {
	for _, key := range sortedKeys(keys) {
		locs := keys[key]
		if len(locs) < 2 {
			continue
		}
		where := make([]string, len(locs))
		for i, l := range locs {
			where[i] = fmt.Sprintf("%s:%d", l.File, l.Line)
		}
		r.errorf("duplicate key %q in %s (use unique keys like %q, %q)",
			key, strings.Join(where, ", "), key+"_topic1", key+"_topic2")
	}
}

func (v *bibValidator) checkMissingBibFiles(r *bibReport) {
	for _, p := range v.ps {
		if p.Bibliography != "" && !v.fl.Exists(p.Bibliography) {
			r.errorf("%s references missing file %s", p.SourcePath, p.Bibliography)
		}
	}
}

// citedKeys returns the keys cited in a post body with {cite}`a,b` roles.
func citedKeys(body []byte) []string {
	var keys []string
	for _, m := range citeRe.FindAllSubmatch(body, -1) {
		for _, k := range strings.Split(string(m[1]), ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func (v *bibValidator) checkOrphanedCitations(keys map[string][]bibKeyLocation, r *bibReport) map[string]bool {
	cited := make(map[string]bool)
	for _, p := range v.ps {
		var orphaned []string
		for _, k := range citedKeys(p.Body) {
			cited[k] = true
			if _, ok := keys[k]; !ok && !slices.Contains(orphaned, k) {
				orphaned = append(orphaned, k)
			}
		}
		if len(orphaned) > 0 {
			slices.Sort(orphaned)
			r.warnf("%s cites undefined keys: %s", p.SourcePath, strings.Join(orphaned, ", "))
		}
	}
	return cited
}

func checkUnusedReferences(keys map[string][]bibKeyLocation, cited map[string]bool, r *bibReport) {
	var unused []string
	for _, k := range sortedKeys(keys) {
		if !cited[k] {
			unused = append(unused, k)
		}
	}
	if len(unused) == 0 {
		return
	}
	r.infof("%d unused reference(s), which is not an error", len(unused))
	for i, k := range unused {
		if i == 10 {
			r.infof("... and %d more", len(unused)-10)
			break
		}
		r.infof("%s in %s", k, path.Base(keys[k][0].File))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// logBibReport writes the findings and turns a failed report into an error.
func logBibReport(r *bibReport, strict bool) error {
	for _, e := range r.Errors {
		slog.Error("Bibliography problem", "problem", e)
	}
	for _, w := range r.Warnings {
		slog.Warn("Bibliography warning", "warning", w)
	}
	for _, i := range r.Info {
		slog.Info("Bibliography note", "note", i)
	}

	if r.Failed(strict) {
		return blogerr.New(blogerr.CategoryValidation, blogerr.SeverityFatal,
			fmt.Sprintf("bibliography validation failed: %d error(s), %d warning(s), strict=%t",
				len(r.Errors), len(r.Warnings), strict))
	}
	slog.Info("Bibliography validation passed", "warnings", len(r.Warnings))
	return nil
}
