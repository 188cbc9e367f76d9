package main

import (
	"fmt"
	"strings"

	"github.com/birkland/catalog/resolv"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

var resolveOpts = struct {
	system   bool
	uri      bool
	public   bool
	document bool
	entity   string
	doctype  string
	notation string
	sysid    string
	all      bool
}{}

func resolve() cli.Command {
	return cli.Command{
		Name:  "resolve",
		Usage: "Resolve identifiers using the configured catalogs",
		Description: `Each argument is an identifier to resolve.  By default they are system
		identifiers, -uri, -public and friends choose otherwise.  For example

		  xcat resolve -public "-//OASIS//DTD DocBook XML V4.5//EN"

		PUBLIC, DOCTYPE, ENTITY and NOTATION lookups may be accompanied by a system
		identifier (-sysid), which matters when public identifiers are not preferred.

		  xcat resolve -entity chap1 -sysid chap1.xml

		Results are printed one per line, in the order given, with the identifier
		and its location separated by a tab.  Identifiers that no catalog maps are
		printed with an empty location`,
		ArgsUsage: "[ id ] ...",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:        "system, s",
				Usage:       "Resolve system identifiers (default)",
				Destination: &resolveOpts.system,
			},
			cli.BoolFlag{
				Name:        "uri, u",
				Usage:       "Resolve URIs",
				Destination: &resolveOpts.uri,
			},
			cli.BoolFlag{
				Name:        "public",
				Usage:       "Resolve public identifiers",
				Destination: &resolveOpts.public,
			},
			cli.BoolFlag{
				Name:        "document",
				Usage:       "Show the default document",
				Destination: &resolveOpts.document,
			},
			cli.StringFlag{
				Name:        "entity",
				Usage:       "Resolve the named entity, arguments are public identifiers",
				Destination: &resolveOpts.entity,
			},
			cli.StringFlag{
				Name:        "doctype",
				Usage:       "Resolve the named document type, arguments are public identifiers",
				Destination: &resolveOpts.doctype,
			},
			cli.StringFlag{
				Name:        "notation",
				Usage:       "Resolve the named notation, arguments are public identifiers",
				Destination: &resolveOpts.notation,
			},
			cli.StringFlag{
				Name:        "sysid",
				Usage:       "System identifier accompanying public identifiers",
				Destination: &resolveOpts.sysid,
			},
			cli.BoolFlag{
				Name:        "all, a",
				Usage:       "Show every matching location, not just the first",
				Destination: &resolveOpts.all,
			},
		},

		Action: func(c *cli.Context) error {
			return resolveAction(c.Args())
		},
	}
}

func resolveAction(args []string) error {
	_, r, err := newResolver()
	if err != nil {
		return err
	}

	lookup, err := lookupFunc(r)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if !resolveOpts.document && resolveOpts.sysid == "" {
			return fmt.Errorf("nothing to resolve")
		}
		args = []string{""}
	}

	results := make([][]string, len(args))

	var g errgroup.Group
	for i, id := range args {
		i, id := i, id
		g.Go(func() error {
			results[i] = lookup(id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, id := range args {
		if len(results[i]) == 0 {
			fmt.Printf("%s\t\n", id)
			continue
		}
		for _, loc := range results[i] {
			fmt.Printf("%s\t%s\n", id, loc)
		}
	}

	return nil
}

func lookupFunc(r *resolv.Resolver) (func(id string) []string, error) {
	var kinds []string
	for kind, on := range map[string]bool{
		"system":   resolveOpts.system,
		"uri":      resolveOpts.uri,
		"public":   resolveOpts.public,
		"document": resolveOpts.document,
		"entity":   resolveOpts.entity != "",
		"doctype":  resolveOpts.doctype != "",
		"notation": resolveOpts.notation != "",
	} {
		if on {
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) > 1 {
		return nil, fmt.Errorf("choose one of %s", strings.Join(kinds, ", "))
	}

	sys := resolveOpts.sysid
	all := resolveOpts.all

	one := func(s string) []string {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	switch {
	case resolveOpts.uri:
		if all {
			return nil, fmt.Errorf("-all is not supported for URIs")
		}
		return func(id string) []string { return one(r.ResolveURI(id)) }, nil

	case resolveOpts.public:
		if all {
			return func(id string) []string { return r.ResolveAllPublic(id, sys) }, nil
		}
		return func(id string) []string { return one(r.ResolvePublic(id, sys)) }, nil

	case resolveOpts.document:
		if all {
			return func(string) []string { return r.ResolveAllDocument() }, nil
		}
		return func(string) []string { return one(r.ResolveDocument()) }, nil

	case resolveOpts.entity != "":
		name := resolveOpts.entity
		if all {
			return func(id string) []string { return r.ResolveAllEntity(name, id, sys) }, nil
		}
		return func(id string) []string { return one(r.ResolveEntity(name, id, sys)) }, nil

	case resolveOpts.doctype != "":
		name := resolveOpts.doctype
		if all {
			return func(id string) []string { return r.ResolveAllDoctype(name, id, sys) }, nil
		}
		return func(id string) []string { return one(r.ResolveDoctype(name, id, sys)) }, nil

	case resolveOpts.notation != "":
		name := resolveOpts.notation
		if all {
			return func(id string) []string { return r.ResolveAllNotation(name, id, sys) }, nil
		}
		return func(id string) []string { return one(r.ResolveNotation(name, id, sys)) }, nil
	}

	if all {
		return func(id string) []string { return r.ResolveAllSystem(id) }, nil
	}
	return func(id string) []string { return one(r.ResolveSystem(id)) }, nil
}
