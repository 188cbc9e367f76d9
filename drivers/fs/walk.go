package fs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
)

const (
	dontGoDeeper = true
	goDeeper     = false
)

// DefaultPatterns match the usual names of catalog files
var DefaultPatterns = []string{"catalog.xml", "*.cat", "CATALOG"}

// FindCatalogs walks the given directory, returning the paths of every file
// whose name matches one of the patterns (see filepath.Match), in lexical
// order.  Hidden directories are not descended into.
func FindCatalogs(dir string, patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	for _, p := range patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, errors.Wrapf(err, "bad catalog file pattern %s", p)
		}
	}

	var found []string
	err := fsWalk(dir, func(ospath string, e *godirwalk.Dirent) (bool, error) {
		name := e.Name()

		if e.IsDir() {
			if ospath != dir && strings.HasPrefix(name, ".") {
				return dontGoDeeper, nil
			}
			return goDeeper, nil
		}

		for _, p := range patterns {
			if ok, _ := filepath.Match(p, name); ok {
				found = append(found, ospath)
				break
			}
		}

		return dontGoDeeper, nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error looking for catalogs in %s", dir)
	}

	sort.Strings(found)
	return found, nil
}

type skip struct {
	action godirwalk.ErrorAction
}

func (skip) Error() string {
	return "node is skipped"
}

// Callback to be invoked each time a fs entry is encountered.
// Returns a Boolean indicating whether the current fs entry should be a
// considered a terminal (leaf) node.  If true, any children will not be
// walked.  Any error will terminate a walk entirely.
type fsCallback func(ospath string, e *godirwalk.Dirent) (terminal bool, err error)

func fsWalk(dir string, f fsCallback) error {

	if _, err := os.Stat(dir); err != nil {
		return errors.Wrapf(err, "error walking directory %s", dir)
	}

	return godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(ospath string, dirent *godirwalk.Dirent) error {
			terminal, err := f(ospath, dirent)
			if err != nil {
				return errors.Wrap(err, "terminating walk due to error")
			}
			if terminal && dirent.IsDir() {
				return skip{godirwalk.SkipNode}
			}
			return nil
		},
		ErrorCallback: func(ospath string, err error) godirwalk.ErrorAction {
			s, skip := errors.Cause(err).(skip)
			if skip {
				return s.action
			}

			return godirwalk.Halt
		},
		Unsorted:            true,
		FollowSymbolicLinks: true,
	},
	)
}
