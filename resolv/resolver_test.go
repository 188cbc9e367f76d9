package resolv_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/birkland/catalog/drivers/web"
	"github.com/birkland/catalog/resolv"
	"github.com/go-test/deep"
)

func TestResolverSuffixes(t *testing.T) {
	mem := newMemory(map[string]string{
		"mem:///root.cat": `
			SYSTEMSUFFIX "a.dtd" "first-a.dtd"
			SYSTEMSUFFIX "/a.dtd" "second-a.dtd"
			URISUFFIX ".xsd" "any.xsd"`,
	})

	r := resolv.NewResolver(resolv.Config{Opener: mem})
	parse(t, r.Catalog, "mem:///root.cat")

	if got := r.ResolveSystem("http://x/a.dtd"); got != "mem:///first-a.dtd" {
		t.Errorf("first matching suffix should win, got %q", got)
	}
	if got := r.ResolveURI("http://x/schema.xsd"); got != "mem:///any.xsd" {
		t.Errorf("URISUFFIX did not apply, got %q", got)
	}
	if got := r.ResolveSystem("http://x/schema.xsd"); got != "" {
		t.Errorf("URISUFFIX must not apply to system identifiers, got %q", got)
	}
}

func TestExternalResolver(t *testing.T) {
	var queries int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&queries, 1)

		q := r.URL.Query()
		if q.Get("format") != "tr9401" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		switch q.Get("command") {
		case "i2l":
			fmt.Fprintf(w, "SYSTEM %q \"http://mirror/a.dtd\"\n", q.Get("uri"))
		case "fpi2l":
			fmt.Fprintf(w, "PUBLIC %q \"http://mirror/p.dtd\"\n", q.Get("uri"))
		}
	}))
	defer srv.Close()

	mem := newMemory(map[string]string{
		"mem:///root.cat": fmt.Sprintf(`
			SYSTEM "http://local/a.dtd" "local.dtd"
			RESOLVER %q
			SYSTEMSUFFIX ".dtd" "never.dtd"`, srv.URL+"/resolve"),
	})

	r := resolv.NewResolver(resolv.Config{Opener: mem})
	parse(t, r.Catalog, "mem:///root.cat")

	if got := r.ResolveSystem("http://local/a.dtd"); got != "mem:///local.dtd" {
		t.Errorf("local entries come first, got %q", got)
	}
	if n := atomic.LoadInt32(&queries); n != 0 {
		t.Errorf("resolver queried %d times for a local match", n)
	}

	if got := r.ResolveSystem("http://remote/a.dtd"); got != "http://mirror/a.dtd" {
		t.Errorf("expected the external resolver's answer, got %q", got)
	}
	if got := r.ResolvePublic("-//A//DTD A//EN", ""); got != "http://mirror/p.dtd" {
		t.Errorf("expected the external resolver's public answer, got %q", got)
	}
}

func TestExternalResolverFailures(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer slow.Close()
	defer close(release)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	odd := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer odd.Close()

	mem := newMemory(map[string]string{
		"mem:///root.cat": fmt.Sprintf(`
			RESOLVER %q
			RESOLVER %q
			RESOLVER %q
			SYSTEMSUFFIX ".dtd" "fallback.dtd"`, slow.URL, broken.URL, odd.URL),
	})

	r := resolv.NewResolver(resolv.Config{
		Opener: mem,
		Client: web.New(web.Options{Timeout: 50 * time.Millisecond}),
	})
	parse(t, r.Catalog, "mem:///root.cat")

	if got := r.ResolveSystem("http://x/a.dtd"); got != "mem:///fallback.dtd" {
		t.Errorf("failed resolvers should count as no match, got %q", got)
	}
	if got := r.ResolveURI("http://x/a.xsd"); got != "" {
		t.Errorf("expected no result, got %q", got)
	}
}

func TestExternalResolverDepth(t *testing.T) {
	var queries int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&queries, 1)
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "RESOLVER %q\n", srv.URL)
	}))
	defer srv.Close()

	mem := newMemory(map[string]string{
		"mem:///root.cat": fmt.Sprintf("RESOLVER %q", srv.URL),
	})

	r := resolv.NewResolver(resolv.Config{Opener: mem, MaxExternalDepth: 2})
	parse(t, r.Catalog, "mem:///root.cat")

	if got := r.ResolveSystem("http://x/a.dtd"); got != "" {
		t.Errorf("expected no result, got %q", got)
	}
	if n := atomic.LoadInt32(&queries); n != 2 {
		t.Errorf("expected 2 nested queries, got %d", n)
	}
}

func treeCatalogs() *memory {
	return newMemory(map[string]string{
		"mem:///root.cat": `
			SYSTEM "http://x/s" "root.dtd"
			PUBLIC "-//P//EN" "root-p.dtd"
			DOCUMENT "root.xml"
			CATALOG "s1.cat"
			CATALOG "s2.cat"`,
		"mem:///s1.cat": `
			SYSTEM "http://x/s" "s1.dtd"
			SYSTEM "http://x/t" "t.dtd"
			SYSTEM "http://x/u" "t.dtd"
			PUBLIC "-//P//EN" "s1-p.dtd"
			DOCUMENT "s1.xml"`,
		"mem:///s2.cat": `
			SYSTEM "http://x/s" "s2.dtd"
			PUBLIC "-//P//EN" "s2-p.dtd"
			DOCUMENT "s2.xml"`,
	})
}

func TestResolveAllAsymmetry(t *testing.T) {
	mem := treeCatalogs()

	r := resolv.NewResolver(resolv.Config{Opener: mem})
	parse(t, r.Catalog, "mem:///root.cat")

	public := r.ResolveAllPublic("-//P//EN", "")
	if diff := deep.Equal(public, []string{"mem:///root-p.dtd", "mem:///s1-p.dtd"}); diff != nil {
		t.Errorf("PUBLIC collection should stop at the first subordinate: %s", diff)
	}
	if mem.count("mem:///s2.cat") != 0 {
		t.Errorf("second subordinate should not have been loaded")
	}

	docs := r.ResolveAllDocument()
	if diff := deep.Equal(docs, []string{"mem:///root.xml", "mem:///s1.xml"}); diff != nil {
		t.Errorf("DOCUMENT collection should stop at the first subordinate: %s", diff)
	}

	system := r.ResolveAllSystem("http://x/s")
	expected := []string{"mem:///root.dtd", "mem:///s1.dtd", "mem:///s2.dtd"}
	if diff := deep.Equal(system, expected); diff != nil {
		t.Errorf("SYSTEM collection should cover the whole tree: %s", diff)
	}
}

func TestReverse(t *testing.T) {
	r := resolv.NewResolver(resolv.Config{Opener: treeCatalogs()})
	parse(t, r.Catalog, "mem:///root.cat")

	for _, target := range []string{"mem:///root.dtd", "mem:///t.dtd"} {
		id := r.ResolveSystemReverse(target)
		if id == "" {
			t.Errorf("no reverse mapping for %s", target)
			continue
		}
		if got := r.ResolveSystem(id); got != target {
			t.Errorf("%s reverses to %s, which resolves to %s", target, id, got)
		}
	}

	all := r.ResolveAllSystemReverse("mem:///t.dtd")
	if diff := deep.Equal(all, []string{"http://x/t", "http://x/u"}); diff != nil {
		t.Errorf("wrong reverse mappings: %s", diff)
	}

	if got := r.ResolveSystemReverse("mem:///nowhere.dtd"); got != "" {
		t.Errorf("expected no reverse mapping, got %q", got)
	}
}

func TestResolverDelegatesAreResolvers(t *testing.T) {
	mem := newMemory(map[string]string{
		"mem:///root.cat":     `DELEGATE_SYSTEM "http://d/" "delegate.cat"`,
		"mem:///delegate.cat": `SYSTEMSUFFIX ".dtd" "delegated.dtd"`,
	})

	r := resolv.NewResolver(resolv.Config{Opener: mem})
	parse(t, r.Catalog, "mem:///root.cat")

	if got := r.ResolveSystem("http://d/a.dtd"); got != "mem:///delegated.dtd" {
		t.Errorf("delegated catalogs should understand resolver entries, got %q", got)
	}
}
