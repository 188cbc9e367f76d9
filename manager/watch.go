package manager

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/drivers/fs"
	"github.com/birkland/catalog/fspath"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Debounce is how long a catalog file must be left alone before a change to
// it is acted upon.
const Debounce = 100 * time.Millisecond

// Watcher monitors the local seed catalog files, and the catalog
// directories, resetting the static resolver of a Manager whenever one
// changes.
type Watcher struct {
	Changes <-chan string // changed catalog files, after the reset

	m       *Manager
	files   map[string]bool
	dirs    map[string]bool // catalog directories
	changes chan string
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// Watch starts watching the catalogs of a manager.  Catalogs that are not
// local files are not watched.
func (m *Manager) Watch() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrapf(err, "could not create file watcher")
	}

	ch := make(chan string, 16)
	w := &Watcher{
		Changes: ch,
		m:       m,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}

	watched := make(map[string]bool)
	add := func(dir string) error {
		if watched[dir] {
			return nil
		}
		watched[dir] = true
		return fw.Add(dir)
	}

	for _, dir := range m.cfg.CatalogDirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		w.dirs[abs] = true
		if err := add(abs); err != nil {
			m.debug.Message(catalog.LevelMissing, "Cannot watch catalog directory", abs, err.Error())
		}
	}

	for _, loc := range m.SeedLocations() {
		path, ok := localPath(loc)
		if !ok {
			continue
		}
		w.files[path] = true

		// Editors often replace files rather than write them, so the
		// directory is what gets watched.
		if err := add(filepath.Dir(path)); err != nil {
			m.debug.Message(catalog.LevelMissing, "Cannot watch catalog", path, err.Error())
		}
	}

	go w.loop()
	return w, nil
}

// Stop stops watching, and closes the Changes channel
func (w *Watcher) Stop() {
	_ = w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(Debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !w.isCatalog(event.Name) {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) < Debounce {
					continue
				}
				delete(pending, file)

				w.m.debug.Message(catalog.LevelLoad, "Catalog changed", file)
				w.m.Reset()

				select {
				case w.changes <- file:
				default:
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.m.debug.Message(catalog.LevelError, "Catalog watch error", err.Error())
		}
	}
}

func (w *Watcher) isCatalog(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}

	if w.files[abs] {
		return true
	}

	if !w.dirs[filepath.Dir(abs)] {
		return false
	}
	for _, p := range fs.DefaultPatterns {
		if ok, _ := filepath.Match(p, filepath.Base(abs)); ok {
			return true
		}
	}
	return false
}

// Absolute path of a file path or file: URL
func localPath(location string) (string, bool) {
	u, err := url.Parse(location)
	if err == nil && len(u.Scheme) > 1 {
		if u.Scheme != "file" {
			return "", false
		}
		path, err := fspath.FromURL(u)
		if err != nil {
			return "", false
		}
		return path, true
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return "", false
	}
	return abs, true
}
