package fs_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/birkland/catalog/drivers/fs"
	"github.com/go-test/deep"
)

func TestFindCatalogs(t *testing.T) {
	runInTempDir(t, func(tempDir string) {
		files := []string{
			"catalog.xml",
			"a/catalog.xml",
			"a/b/docbook.cat",
			"a/b/notes.txt",
			"c/CATALOG",
			".hidden/catalog.xml",
		}

		for _, f := range files {
			path := filepath.Join(tempDir, filepath.FromSlash(f))
			_ = os.MkdirAll(filepath.Dir(path), 0775)
			_ = ioutil.WriteFile(path, []byte("x"), 0664)
		}

		cases := []struct {
			name     string
			patterns []string
			expected []string
		}{
			{"defaults", nil, []string{
				"a/b/docbook.cat",
				"a/catalog.xml",
				"c/CATALOG",
				"catalog.xml",
			}},
			{"explicit", []string{"*.txt"}, []string{"a/b/notes.txt"}},
			{"none", []string{"*.yaml"}, nil},
		}

		for _, c := range cases {
			c := c
			t.Run(c.name, func(t *testing.T) {
				found, err := fs.FindCatalogs(tempDir, c.patterns...)
				if err != nil {
					t.Fatalf("walk failed: %+v", err)
				}

				var rel []string
				for _, f := range found {
					r, _ := filepath.Rel(tempDir, f)
					rel = append(rel, filepath.ToSlash(r))
				}

				if diff := deep.Equal(rel, c.expected); diff != nil {
					t.Errorf("unexpected catalogs: %s", diff)
				}
			})
		}
	})
}

func TestFindCatalogsErrors(t *testing.T) {
	if _, err := fs.FindCatalogs("DOES_NOT_EXIST"); err == nil {
		t.Errorf("walking a missing directory should fail")
	}

	if _, err := fs.FindCatalogs(".", "[bad"); err == nil {
		t.Errorf("a malformed pattern should fail")
	}
}
