package manager

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables that configure catalogs
const EnvPrefix = "XML_CATALOG"

// Config holds catalog manager configuration.  Values are populated from a
// configuration file, XML_CATALOG_* env vars, and whatever else has been
// bound into the viper instance.
type Config struct {
	Catalogs         []string         `mapstructure:"-"`
	CatalogDirs      []string         `mapstructure:"-"`
	Prefer           string           `mapstructure:"prefer"`
	Verbosity        int              `mapstructure:"verbosity"`
	StaticCatalog    bool             `mapstructure:"static_catalog"`
	RelativeCatalogs bool             `mapstructure:"relative_catalogs"`
	FoldSystemCase   bool             `mapstructure:"fold_system_case"`
	ResolverTimeout  time.Duration    `mapstructure:"resolver_timeout"`
	MaxResolverDepth int              `mapstructure:"max_resolver_depth"`
	Bootstrap        []BootstrapEntry `mapstructure:"bootstrap"`
}

// BootstrapEntry maps a public identifier, system identifier or URI to a
// location, without the help of any catalog.
type BootstrapEntry struct {
	ID       string `mapstructure:"id"`
	Location string `mapstructure:"location"`
}

// Defaults applies built-in defaults to any values not otherwise set
func Defaults(v *viper.Viper) {
	v.SetDefault("catalogs", "./catalog.xml")
	v.SetDefault("catalog_dirs", []string{})
	v.SetDefault("prefer", "public")
	v.SetDefault("verbosity", 1)
	v.SetDefault("static_catalog", true)
	v.SetDefault("relative_catalogs", true)
	v.SetDefault("fold_system_case", false)
	v.SetDefault("resolver_timeout", 10*time.Second)
	v.SetDefault("max_resolver_depth", 3)
}

// Load reads configuration from viper, applying defaults and environment
// bindings first.  Catalog lists may be given as arrays, or as strings with
// entries separated by semicolons.
//
// Unless relative_catalogs is set, relative catalog file names read from a
// configuration file are taken relative to the directory of that file.
func Load(v *viper.Viper) (Config, error) {
	Defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("catalogs", EnvPrefix+"_CATALOGS", EnvPrefix+"_FILES"); err != nil {
		return Config{}, errors.Wrapf(err, "could not bind catalog environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "malformed catalog configuration")
	}

	cfg.Catalogs = list(v, "catalogs")
	cfg.CatalogDirs = list(v, "catalog_dirs")

	switch strings.ToLower(cfg.Prefer) {
	case "public", "system":
		cfg.Prefer = strings.ToLower(cfg.Prefer)
	default:
		return cfg, errors.Errorf("prefer must be public or system, not %q", cfg.Prefer)
	}

	if file := v.ConfigFileUsed(); file != "" && !cfg.RelativeCatalogs {
		dir := filepath.Dir(file)
		for i, c := range cfg.Catalogs {
			cfg.Catalogs[i] = relativeTo(dir, c)
		}
	}

	return cfg, nil
}

func list(v *viper.Viper, key string) []string {
	var values []string
	if s, ok := v.Get(key).(string); ok {
		values = strings.Split(s, ";")
	} else {
		values = v.GetStringSlice(key)
	}

	var cleaned []string
	for _, val := range values {
		if val = strings.TrimSpace(val); val != "" {
			cleaned = append(cleaned, val)
		}
	}
	return cleaned
}

// URLs and absolute paths are left alone
func relativeTo(dir, location string) string {
	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		return location
	}
	if filepath.IsAbs(location) {
		return location
	}
	return filepath.Join(dir, location)
}
