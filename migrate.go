package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/otiai10/copy"

	blogerr "github.com/thomas11/bookblog/internal/errors"
)

const (
	legacyPostsDir = "book"
	legacyBibFile  = "references.bib"
)

type migration struct {
	Copied   []string
	BackedUp []string
}

// migrateLegacyLayout copies book/*.md and book/*.bib into the posts
// directory and book/references.bib to the global bibliography file. Files
// that would be overwritten are backed up first. The legacy directory is left
// in place.
func migrateLegacyLayout(conf *BlogConf) (*migration, error) {
	legacyDir := conf.path(legacyPostsDir)
	if _, err := os.Stat(legacyDir); errors.Is(err, fs.ErrNotExist) {
		slog.Info("No legacy layout found, nothing to migrate", "dir", legacyDir)
		return &migration{}, nil
	} else if err != nil {
		return nil, blogerr.FileSystemError(err, "cannot access %s", legacyDir)
	}

	m := &migration{}
	postsDir := conf.PostsDir()

	oldBib := filepath.Join(legacyDir, legacyBibFile)
	if exists(oldBib) {
		newBib := conf.path(conf.Bibliography.GlobalFile)
		if exists(newBib) {
			if err := m.backup(newBib, newBib+".backup"); err != nil {
				return m, err
			}
		}
		if err := m.copy(oldBib, newBib); err != nil {
			return m, err
		}
	}

	entries, err := os.ReadDir(legacyDir)
	if err != nil {
		return m, blogerr.FileSystemError(err, "cannot list %s", legacyDir)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			continue
		}
		src := filepath.Join(legacyDir, name)
		dst := filepath.Join(postsDir, name)

		switch filepath.Ext(name) {
		case postFileExtension:
			if skippedPostFiles[name] {
				continue
			}
			if exists(dst) {
				stem := strings.TrimSuffix(name, postFileExtension)
				if err := m.backup(dst, filepath.Join(postsDir, stem+".backup"+postFileExtension)); err != nil {
					return m, err
				}
			}
		case ".bib":
			if name == legacyBibFile {
				continue
			}
		default:
			continue
		}

		if err := m.copy(src, dst); err != nil {
			return m, err
		}
	}

	slog.Info("Migration finished, the legacy directory was kept", "dir", legacyDir,
		"copied", len(m.Copied), "backed_up", len(m.BackedUp))
	return m, nil
}

func (m *migration) copy(src, dst string) error {
	if err := copy.Copy(src, dst); err != nil {
		return blogerr.FileSystemError(err, "cannot copy %s to %s", src, dst)
	}
	slog.Info("Migrated", "from", src, "to", dst)
	m.Copied = append(m.Copied, dst)
	return nil
}

func (m *migration) backup(src, dst string) error {
	if err := copy.Copy(src, dst); err != nil {
		return blogerr.FileSystemError(err, "cannot back up %s", src)
	}
	slog.Info("Backed up", "from", src, "to", dst)
	m.BackedUp = append(m.BackedUp, dst)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
