package main

import (
	"fmt"
	"os"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/drivers/fs"
	"github.com/birkland/catalog/metadata"
	"github.com/birkland/catalog/resolv"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var dumpOpts = struct {
	format string
	output string
	load   bool
}{}

func dump() cli.Command {
	return cli.Command{
		Name:  "dump",
		Usage: "Print the entries of the configured catalogs",
		Description: `Serializes the catalogs as a structured (yaml, json or toml) catalog
		document, with subordinate catalogs nested inside their parent.  Subordinate
		catalogs that have not been needed yet are listed by location only, unless
		-load is given.

		The output is itself a catalog, so

		  xcat dump -load -format yaml -o all.yaml

		flattens a tree of catalogs into a single file.  Files are replaced atomically`,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:        "format, t",
				Usage:       "Output format {yaml, json, toml}",
				Value:       metadata.YAML,
				Destination: &dumpOpts.format,
			},
			cli.StringFlag{
				Name:        "output, o",
				Usage:       "Output file (default stdout)",
				Destination: &dumpOpts.output,
			},
			cli.BoolFlag{
				Name:        "load, l",
				Usage:       "Load every subordinate catalog first",
				Destination: &dumpOpts.load,
			},
		},

		Action: func(c *cli.Context) error {
			return dumpAction(c.Args())
		},
	}
}

func dumpAction(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("dump takes no arguments")
	}

	switch dumpOpts.format {
	case metadata.YAML, metadata.JSON, metadata.TOML:
	default:
		return fmt.Errorf("unknown format %s", dumpOpts.format)
	}

	m, r, err := newResolver()
	if err != nil {
		return err
	}

	if dumpOpts.load {
		if err := r.ParseAllCatalogs(); err != nil {
			m.Debug().Message(catalog.LevelError, "Problem loading subordinate catalogs", err.Error())
		}
	}

	doc := document(r.Catalog, "")

	if dumpOpts.output == "" {
		return doc.Serialize(os.Stdout, dumpOpts.format)
	}

	return errors.Wrapf(fs.WriteDocument(dumpOpts.output, &doc, dumpOpts.format),
		"could not write %s", dumpOpts.output)
}

func document(c *resolv.Catalog, location string) metadata.Document {
	doc := metadata.FromEntries(c.Registry(), location, c.Entries())

	for _, sub := range c.Subordinates() {
		if sub.Catalog == nil {
			doc.Subordinates = append(doc.Subordinates, metadata.Document{
				Location: sub.Location,
				Entries:  []metadata.Entry{},
			})
			continue
		}
		doc.Subordinates = append(doc.Subordinates, document(sub.Catalog, sub.Location))
	}

	return doc
}
