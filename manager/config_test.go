package manager_test

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/birkland/catalog/manager"
	"github.com/go-test/deep"
	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := manager.Load(viper.New())
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %+v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"prefer", cfg.Prefer, "public"},
		{"verbosity", cfg.Verbosity, 1},
		{"static_catalog", cfg.StaticCatalog, true},
		{"relative_catalogs", cfg.RelativeCatalogs, true},
		{"fold_system_case", cfg.FoldSystemCase, false},
		{"resolver_timeout", cfg.ResolverTimeout, 10 * time.Second},
		{"max_resolver_depth", cfg.MaxResolverDepth, 3},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if diff := deep.Equal(cfg.Catalogs, []string{"./catalog.xml"}); diff != nil {
		t.Errorf("wrong default catalogs: %s", diff)
	}
}

func TestLoadEnv(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		envVal string
		field  func(manager.Config) interface{}
		want   interface{}
	}{
		{
			name:   "catalogs",
			envKey: "XML_CATALOG_CATALOGS",
			envVal: "a.xml; b.cat;;",
			field:  func(c manager.Config) interface{} { return c.Catalogs },
			want:   []string{"a.xml", "b.cat"},
		},
		{
			name:   "files",
			envKey: "XML_CATALOG_FILES",
			envVal: "/etc/xml/catalog",
			field:  func(c manager.Config) interface{} { return c.Catalogs },
			want:   []string{"/etc/xml/catalog"},
		},
		{
			name:   "prefer",
			envKey: "XML_CATALOG_PREFER",
			envVal: "SYSTEM",
			field:  func(c manager.Config) interface{} { return c.Prefer },
			want:   "system",
		},
		{
			name:   "verbosity",
			envKey: "XML_CATALOG_VERBOSITY",
			envVal: "4",
			field:  func(c manager.Config) interface{} { return c.Verbosity },
			want:   4,
		},
		{
			name:   "resolver_timeout",
			envKey: "XML_CATALOG_RESOLVER_TIMEOUT",
			envVal: "250ms",
			field:  func(c manager.Config) interface{} { return c.ResolverTimeout },
			want:   250 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envVal)

			cfg, err := manager.Load(viper.New())
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %+v", err)
			}

			if diff := deep.Equal(tt.field(cfg), tt.want); diff != nil {
				t.Errorf("%s: %s", tt.envKey, diff)
			}
		})
	}
}

func TestLoadBadPrefer(t *testing.T) {
	v := viper.New()
	v.Set("prefer", "neither")

	if _, err := manager.Load(v); err == nil {
		t.Errorf("expected an error for a bad prefer value")
	}
}

const configFile = `
catalogs:
  - catalog.xml
  - /abs/other.cat
  - http://example.org/catalog.xml
relative_catalogs: %s
fold_system_case: true
bootstrap:
  - id: "-//OASIS//DTD XML Catalogs V1.1//EN"
    location: /usr/share/xml/catalog.dtd
`

func TestLoadFile(t *testing.T) {
	for _, relative := range []bool{true, false} {
		relative := relative
		t.Run(map[bool]string{true: "relative", false: "anchored"}[relative], func(t *testing.T) {
			dir := t.TempDir()
			file := filepath.Join(dir, "catalogs.yaml")

			content := []byte(fmt.Sprintf(configFile, strconv.FormatBool(relative)))
			if err := ioutil.WriteFile(file, content, 0644); err != nil {
				t.Fatal(err)
			}

			v := viper.New()
			v.SetConfigFile(file)
			if err := v.ReadInConfig(); err != nil {
				t.Fatalf("could not read config: %+v", err)
			}

			cfg, err := manager.Load(v)
			if err != nil {
				t.Fatalf("Load() returned unexpected error: %+v", err)
			}

			first := "catalog.xml"
			if !relative {
				first = filepath.Join(dir, "catalog.xml")
			}

			expected := []string{first, "/abs/other.cat", "http://example.org/catalog.xml"}
			if diff := deep.Equal(cfg.Catalogs, expected); diff != nil {
				t.Errorf("wrong catalogs: %s", diff)
			}

			if !cfg.FoldSystemCase {
				t.Errorf("fold_system_case was not read")
			}

			boot := []manager.BootstrapEntry{{
				ID:       "-//OASIS//DTD XML Catalogs V1.1//EN",
				Location: "/usr/share/xml/catalog.dtd",
			}}
			if diff := deep.Equal(cfg.Bootstrap, boot); diff != nil {
				t.Errorf("wrong bootstrap entries: %s", diff)
			}
		})
	}
}

