package catalog

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Diagnostic verbosity levels used throughout the module
const (
	LevelError   = 1 // failures that were skipped past
	LevelLoad    = 2 // catalogs being loaded
	LevelMissing = 3 // catalogs that do not exist
	LevelEntry   = 4 // individual entries
	LevelBase    = 5 // base URI bookkeeping
)

// Debug is a diagnostic sink.  Messages at or below its verbosity are
// written to the underlying logger, everything else is dropped.
type Debug struct {
	mu        sync.RWMutex
	verbosity int
	logger    *log.Logger
}

// NewDebug creates a diagnostic sink writing to w
func NewDebug(w io.Writer, verbosity int) *Debug {
	if w == nil {
		w = os.Stderr
	}
	return &Debug{
		verbosity: verbosity,
		logger:    log.New(w, "catalog: ", log.LstdFlags),
	}
}

// Discard is a diagnostic sink that drops everything
func Discard() *Debug {
	return NewDebug(io.Discard, 0)
}

// SetVerbosity changes the verbosity
func (d *Debug) SetVerbosity(v int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.verbosity = v
}

// Verbosity returns the current verbosity
func (d *Debug) Verbosity() int {
	if d == nil {
		return 0
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.verbosity
}

// Message writes a message and its (optional) arguments, if the level is
// within the current verbosity.  A nil Debug discards everything.
func (d *Debug) Message(level int, msg string, args ...string) {
	if d == nil || level > d.Verbosity() {
		return
	}

	if len(args) == 0 {
		d.logger.Print(msg)
		return
	}
	d.logger.Printf("%s: %s", msg, strings.Join(args, " "))
}
