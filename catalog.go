package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Kind names a kind of catalog entry, e.g. PUBLIC or SYSTEM
type Kind int

// Built-in catalog entry kinds.  Kinds registered after these (e.g. by the
// resolver extension) are numbered from Extension upward.
const (
	Unknown Kind = iota
	Base
	Catalog
	Public
	System
	URI
	RewriteSystem
	RewriteURI
	SystemSuffix
	URISuffix
	DelegatePublic
	DelegateSystem
	DelegateURI
	Doctype
	Document
	Entity
	Notation
	Override
	SGMLDecl
	DTDDecl
	LinkType
	Extension
)

var builtins = []struct {
	kind  Kind
	name  string
	arity int
}{
	{Base, "BASE", 1},
	{Catalog, "CATALOG", 1},
	{Public, "PUBLIC", 2},
	{System, "SYSTEM", 2},
	{URI, "URI", 2},
	{RewriteSystem, "REWRITE_SYSTEM", 2},
	{RewriteURI, "REWRITE_URI", 2},
	{SystemSuffix, "SYSTEM_SUFFIX", 2},
	{URISuffix, "URI_SUFFIX", 2},
	{DelegatePublic, "DELEGATE_PUBLIC", 2},
	{DelegateSystem, "DELEGATE_SYSTEM", 2},
	{DelegateURI, "DELEGATE_URI", 2},
	{Doctype, "DOCTYPE", 2},
	{Document, "DOCUMENT", 1},
	{Entity, "ENTITY", 2},
	{Notation, "NOTATION", 2},
	{Override, "OVERRIDE", 1},
	{SGMLDecl, "SGMLDECL", 1},
	{DTDDecl, "DTDDECL", 2},
	{LinkType, "LINKTYPE", 2},
}

// Registry is a table of recognized entry kinds and their argument counts.
//
// A Registry starts out with the built-in kinds.  Extensions add their own
// kinds with Register.  Registering a name that already exists keeps its Kind,
// but replaces its arity.
type Registry struct {
	mu     sync.RWMutex
	names  map[Kind]string
	arity  map[Kind]int
	byName map[string]Kind
	next   Kind
}

// NewRegistry creates a registry containing the built-in kinds
func NewRegistry() *Registry {
	r := &Registry{
		names:  make(map[Kind]string, len(builtins)),
		arity:  make(map[Kind]int, len(builtins)),
		byName: make(map[string]Kind, len(builtins)),
		next:   Extension,
	}

	for _, b := range builtins {
		r.names[b.kind] = b.name
		r.arity[b.kind] = b.arity
		r.byName[b.name] = b.kind
	}

	return r
}

// Register adds a kind with the given name and arity, returning its Kind.
func (r *Registry) Register(name string, arity int) Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	if k, ok := r.byName[name]; ok {
		r.arity[k] = arity
		return k
	}

	k := r.next
	r.next++
	r.names[k] = name
	r.arity[k] = arity
	r.byName[name] = k
	return k
}

// Lookup finds the kind registered under the given (case sensitive) name
func (r *Registry) Lookup(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.byName[name]
	return k, ok
}

// Arity returns the number of arguments entries of the given kind take
func (r *Registry) Arity(k Kind) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.arity[k]
	return n, ok
}

// Name returns the registered name of a kind, or an empty string
func (r *Registry) Name(k Kind) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[k]
}

// String renders built-in kinds by name.  Extension kinds only have names
// within a Registry.
func (k Kind) String() string {
	for _, b := range builtins {
		if b.kind == k {
			return b.name
		}
	}
	if k >= Extension {
		return fmt.Sprintf("EXTENSION(%d)", int(k))
	}
	return "UNKNOWN"
}

// Entry is a single catalog entry: a kind, and its ordered arguments.
//
// Entries are values.  Changing an argument with WithArg produces a new Entry,
// so an entry that has been added to a catalog is never modified.
type Entry struct {
	kind Kind
	args []string
}

// NewEntry creates an entry, verifying that the kind is known and that the
// number of arguments matches its arity.
func NewEntry(reg *Registry, kind Kind, args ...string) (Entry, error) {
	arity, ok := reg.Arity(kind)
	if !ok {
		return Entry{}, &Error{
			Class: ConfigurationError,
			Err:   errors.Wrapf(ErrConfiguration, "unknown entry kind %d", int(kind)),
		}
	}

	if len(args) != arity {
		return Entry{}, &Error{
			Class: ConfigurationError,
			Err: errors.Wrapf(ErrConfiguration, "%s takes %d arguments, got %d",
				reg.Name(kind), arity, len(args)),
		}
	}

	return Entry{kind: kind, args: append([]string(nil), args...)}, nil
}

// ParseEntry creates an entry from a keyword as found in a catalog file.
// The keyword is matched case-insensitively.
func ParseEntry(reg *Registry, keyword string, args ...string) (Entry, error) {
	kind, ok := reg.Lookup(strings.ToUpper(keyword))
	if !ok {
		return Entry{}, &Error{
			Class: ConfigurationError,
			Err:   errors.Wrapf(ErrConfiguration, "unknown entry keyword %q", keyword),
		}
	}
	return NewEntry(reg, kind, args...)
}

// Kind returns the kind of the entry
func (e Entry) Kind() Kind {
	return e.kind
}

// Arg returns the i-th argument, or an empty string if there is none
func (e Entry) Arg(i int) string {
	if i < 0 || i >= len(e.args) {
		return ""
	}
	return e.args[i]
}

// Args returns a copy of the entry arguments
func (e Entry) Args() []string {
	return append([]string(nil), e.args...)
}

// WithArg returns a copy of the entry with its i-th argument replaced.
// Out of range indexes leave the copy unchanged.
func (e Entry) WithArg(i int, v string) Entry {
	args := e.Args()
	if i >= 0 && i < len(args) {
		args[i] = v
	}
	return Entry{kind: e.kind, args: args}
}
