package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/manager"
	"github.com/birkland/catalog/resolv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"github.com/urfave/cli"
)

var mainOpts = struct {
	config    string
	catalogs  string
	prefer    string
	verbosity int
	stdin     string
}{}

func main() {
	app := cli.NewApp()
	app.Name = "xcat"
	app.Usage = "XML catalog resolution utilities"
	app.EnableBashCompletion = true
	app.Commands = []cli.Command{
		resolve(),
		reverse(),
		dump(),
		watch(),
	}
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "Catalog configuration file (properties, yaml, toml or json)",
			EnvVar:      "XML_CATALOG_CONFIG",
			Destination: &mainOpts.config,
		},
		cli.StringFlag{
			Name:        "catalogs, f",
			Usage:       "Catalog files or URLs, separated by semicolons",
			EnvVar:      "XML_CATALOG_FILES",
			Destination: &mainOpts.catalogs,
		},
		cli.StringFlag{
			Name:        "prefer, p",
			Usage:       "Prefer {public, system} identifiers",
			EnvVar:      "XML_CATALOG_PREFER",
			Destination: &mainOpts.prefer,
		},
		cli.IntFlag{
			Name:        "verbosity, v",
			Usage:       "Diagnostic verbosity, 0 (silent) to 5",
			EnvVar:      "XML_CATALOG_VERBOSITY",
			Value:       -1,
			Destination: &mainOpts.verbosity,
		},
		cli.StringFlag{
			Name:        "stdin",
			Usage:       "Also read a catalog of the given MIME type (e.g. text/plain) from stdin",
			Destination: &mainOpts.stdin,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// Configuration comes from the config file (CatalogManager.* in the current
// or home directory by default), then XML_CATALOG_* env vars, then flags.
func newManager() (*manager.Manager, error) {
	v := viper.New()

	if mainOpts.config != "" {
		v.SetConfigFile(mainOpts.config)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "could not read configuration %s", mainOpts.config)
		}
	} else {
		v.SetConfigName("CatalogManager")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "xcat"))
		}
		_ = v.ReadInConfig()
	}

	if mainOpts.catalogs != "" {
		v.Set("catalogs", mainOpts.catalogs)
	}
	if mainOpts.prefer != "" {
		v.Set("prefer", mainOpts.prefer)
	}
	if mainOpts.verbosity >= 0 {
		v.Set("verbosity", mainOpts.verbosity)
	}

	cfg, err := manager.Load(v)
	if err != nil {
		return nil, err
	}

	return manager.New(cfg), nil
}

func newResolver() (*manager.Manager, *resolv.Resolver, error) {
	m, err := newManager()
	if err != nil {
		return nil, nil, err
	}

	if mainOpts.stdin == "" {
		return m, m.Resolver(), nil
	}

	// stdin can only be read once, so it goes into a resolver of its own,
	// with the configured catalogs as its subordinates.
	r := m.NewResolver()
	if err := r.ParseStream(mainOpts.stdin, os.Stdin); err != nil {
		return nil, nil, errors.Wrapf(err, "could not parse catalog from stdin")
	}
	if err := r.LoadSystemCatalogs(); err != nil {
		m.Debug().Message(catalog.LevelError, "Problem loading catalogs", err.Error())
	}

	return m, r, nil
}
