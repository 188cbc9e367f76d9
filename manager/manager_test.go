package manager_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/birkland/catalog"
	"github.com/birkland/catalog/manager"
	"github.com/go-test/deep"
)

func writeFile(t *testing.T, path, content string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(catalogs ...string) manager.Config {
	return manager.Config{
		Catalogs:         catalogs,
		Prefer:           "public",
		StaticCatalog:    true,
		ResolverTimeout:  time.Second,
		MaxResolverDepth: 3,
	}
}

func TestSeedLocations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "catalog.xml"), "<catalog/>")
	writeFile(t, filepath.Join(dir, "a", "x.cat"), "")
	writeFile(t, filepath.Join(dir, "a", "notes.txt"), "")
	writeFile(t, filepath.Join(dir, ".hidden", "catalog.xml"), "")

	cfg := testConfig("first.xml")
	cfg.CatalogDirs = []string{dir, filepath.Join(dir, "missing")}

	m := manager.New(cfg, manager.WithDebug(catalog.Discard()))

	expected := []string{
		"first.xml",
		filepath.Join(dir, "a", "x.cat"),
		filepath.Join(dir, "b", "catalog.xml"),
	}
	if diff := deep.Equal(m.SeedLocations(), expected); diff != nil {
		t.Errorf("wrong seed locations: %s", diff)
	}
}

func TestPrefer(t *testing.T) {
	cfg := testConfig()
	if !manager.New(cfg).DefaultOverride() {
		t.Errorf("prefer=public should turn override on")
	}

	cfg.Prefer = "system"
	if manager.New(cfg).DefaultOverride() {
		t.Errorf("prefer=system should turn override off")
	}
}

func TestResolvers(t *testing.T) {
	dir := t.TempDir()
	cat := filepath.Join(dir, "catalog.cat")
	writeFile(t, cat, `SYSTEM "http://example.org/a.dtd" "a.dtd"`)

	m := manager.New(testConfig(cat), manager.WithDebug(catalog.Discard()))

	static := m.StaticResolver()
	if static != m.StaticResolver() {
		t.Errorf("static resolver should be shared")
	}
	if static != m.Resolver() {
		t.Errorf("Resolver() should return the static resolver")
	}

	private := m.PrivateResolver()
	if private == static {
		t.Errorf("private resolvers should not be shared")
	}

	expected := "file://" + filepath.ToSlash(filepath.Join(dir, "a.dtd"))
	for _, r := range []interface{ ResolveSystem(string) string }{static, private} {
		if got := r.ResolveSystem("http://example.org/a.dtd"); got != expected {
			t.Errorf("expected %s, got %s", expected, got)
		}
	}

	m.Reset()
	if m.StaticResolver() == static {
		t.Errorf("reset should discard the static resolver")
	}
}

func TestNonStatic(t *testing.T) {
	cfg := testConfig()
	cfg.StaticCatalog = false
	m := manager.New(cfg, manager.WithDebug(catalog.Discard()))

	if m.Resolver() == m.Resolver() {
		t.Errorf("each caller should get a private resolver")
	}
}

func TestBootstrap(t *testing.T) {
	b := manager.NewBootstrap([]manager.BootstrapEntry{
		{ID: "-//OASIS//DTD XML Catalogs V1.1//EN", Location: "file:///dtd/catalog.dtd"},
		{ID: "http://www.oasis-open.org/committees/entity/release/1.1/catalog.dtd", Location: "file:///dtd/catalog.dtd"},
		{ID: "http://example.org/catalog.xml", Location: "file:///local/catalog.xml"},
	})

	cases := []struct {
		name     string
		got      string
		expected string
	}{
		{"public", b.ResolvePublic("  -//OASIS//DTD   XML Catalogs V1.1//EN ", ""), "file:///dtd/catalog.dtd"},
		{"public via system", b.ResolvePublic("-//X//EN", "http://www.oasis-open.org/committees/entity/release/1.1/catalog.dtd"), "file:///dtd/catalog.dtd"},
		{"system", b.ResolveSystem("http://example.org/catalog.xml"), "file:///local/catalog.xml"},
		{"uri", b.ResolveURI("http://example.org/catalog.xml"), "file:///local/catalog.xml"},
		{"unknown", b.ResolveSystem("http://example.org/other.xml"), ""},
		{"empty", b.ResolvePublic("", ""), ""},
	}

	for _, c := range cases {
		if c.got != c.expected {
			t.Errorf("%s: expected %q, got %q", c.name, c.expected, c.got)
		}
	}
}
