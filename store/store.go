// Package store writes dated, versioned markdown files to a local directory.
package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mempirate/pagemark/log"
)

// MarkdownStore is the file-writing surface the pipeline hands its output to.
type MarkdownStore interface {
	// List returns the names of all files in the store.
	List() ([]string, error)

	Contains(name string) (bool, error)

	// Store writes content under a dated, versioned filename derived from
	// name, skipping the write when the newest existing version is
	// byte-identical.
	Store(name string, content []byte) (path string, created bool, err error)
}

// VersionedStore names files `YYYYMMDD_<name>.md`. When a file for that
// date+name pair already exists with different content, the next write gets
// a `_v2`, `_v3`, ... suffix; the unversioned file counts as v1.
type VersionedStore struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

func NewVersionedStore(dir string) *VersionedStore {
	return &VersionedStore{
		dir: dir,
		log: log.NewLogger("store"),
		now: time.Now,
	}
}

// Init ensures the output directory exists.
func (s *VersionedStore) Init() error {
	return os.MkdirAll(s.dir, os.ModePerm)
}

func (s *VersionedStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func (s *VersionedStore) Contains(name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Store writes content and returns the path written. created is false when
// the newest existing version for today already holds identical content; no
// new file is produced in that case.
func (s *VersionedStore) Store(name string, content []byte) (string, bool, error) {
	stem := fmt.Sprintf("%s_%s", s.now().Format("20060102"), name)

	latestPath, latestVersion, err := s.latest(stem)
	if err != nil {
		return "", false, err
	}

	if latestPath != "" {
		existing, err := os.ReadFile(latestPath)
		if err != nil {
			return "", false, errors.Wrap(err, "failed to read latest version")
		}
		if bytes.Equal(existing, content) {
			s.log.Info().Str("path", latestPath).Msg("Content unchanged, skipping write")
			return latestPath, false, nil
		}
	}

	fileName := stem + ".md"
	if latestVersion > 0 {
		fileName = fmt.Sprintf("%s_v%d.md", stem, latestVersion+1)
	}

	path := filepath.Join(s.dir, fileName)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", false, errors.Wrap(err, "failed to write markdown file")
	}

	s.log.Info().Str("path", path).Msg("Markdown saved")

	return path, true, nil
}

// latest returns the newest existing version for stem and its number. The
// plain `<stem>.md` file counts as version 1; version 0 means nothing exists
// yet.
func (s *VersionedStore) latest(stem string) (string, int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, nil
		}
		return "", 0, errors.Wrap(err, "failed to read output directory")
	}

	versionRe := regexp.MustCompile("^" + regexp.QuoteMeta(stem) + `_v(\d+)\.md$`)
	base := stem + ".md"

	path, version := "", 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if e.Name() == base && version < 1 {
			path, version = filepath.Join(s.dir, base), 1
			continue
		}
		if m := versionRe.FindStringSubmatch(e.Name()); m != nil {
			v, _ := strconv.Atoi(m[1])
			if v > version {
				path, version = filepath.Join(s.dir, e.Name()), v
			}
		}
	}

	return path, version, nil
}
