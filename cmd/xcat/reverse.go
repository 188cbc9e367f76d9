package main

import (
	"fmt"

	"github.com/urfave/cli"
)

var reverseOpts = struct {
	all bool
}{}

func reverse() cli.Command {
	return cli.Command{
		Name:  "reverse",
		Usage: "Find the system identifiers mapped to locations",
		Description: `Given locations, show the system identifiers that SYSTEM entries
		of the configured catalogs map to them.  The locations must be given
		exactly as the catalogs resolve them, i.e. as absolute URIs`,
		ArgsUsage: "location ...",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:        "all, a",
				Usage:       "Show every system identifier, not just the first",
				Destination: &reverseOpts.all,
			},
		},

		Action: func(c *cli.Context) error {
			return reverseAction(c.Args())
		},
	}
}

func reverseAction(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no locations given")
	}

	_, r, err := newResolver()
	if err != nil {
		return err
	}

	for _, loc := range args {
		if reverseOpts.all {
			for _, id := range r.ResolveAllSystemReverse(loc) {
				fmt.Printf("%s\t%s\n", loc, id)
			}
			continue
		}

		fmt.Printf("%s\t%s\n", loc, r.ResolveSystemReverse(loc))
	}

	return nil
}
