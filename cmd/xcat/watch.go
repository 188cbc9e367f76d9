package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli"
)

func watch() cli.Command {
	return cli.Command{
		Name:  "watch",
		Usage: "Keep resolving system identifiers as catalogs change",
		Description: `Resolves the given system identifiers, then watches the configured
		local catalog files (and catalog directories), resolving them again whenever
		a catalog changes.  Runs until interrupted`,
		ArgsUsage: "id ...",
		Action: func(c *cli.Context) error {
			return watchAction(c.Args())
		},
	}
}

func watchAction(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no identifiers given")
	}

	m, err := newManager()
	if err != nil {
		return err
	}

	w, err := m.Watch()
	if err != nil {
		return err
	}
	defer w.Stop()

	show := func() {
		r := m.StaticResolver()
		fmt.Println(time.Now().Format(time.RFC3339))
		for _, id := range args {
			fmt.Printf("%s\t%s\n", id, r.ResolveSystem(id))
		}
	}
	show()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	for {
		select {
		case _, ok := <-w.Changes:
			if !ok {
				return nil
			}
			show()
		case <-interrupt:
			return nil
		}
	}
}
