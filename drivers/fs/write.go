package fs

import (
	"os"
	"path/filepath"

	"github.com/birkland/catalog/metadata"
	"github.com/pkg/errors"
)

// TempPrefix prefixes the temporary files WriteDocument writes catalogs to
// before moving them into place
const TempPrefix = ".catalog.tmp."

// WriteDocument serializes a structured catalog document to a file.  The
// document is written and synced to a temporary file in the same directory,
// then renamed over the destination, so anything loading the catalog sees
// either the old content or the new.  On failure the temporary file is
// removed and the destination is untouched.
func WriteDocument(path string, doc *metadata.Document, format string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), TempPrefix+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "could not create a temporary file for %s", path)
	}
	name := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(name)
		}
	}()

	if err = tmp.Chmod(0644); err != nil {
		return errors.Wrapf(err, "could not set permissions of %s", name)
	}

	if err = doc.Serialize(tmp, format); err != nil {
		return err
	}

	if err = tmp.Sync(); err != nil {
		return errors.Wrapf(err, "could not flush %s", name)
	}

	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "could not close %s", name)
	}

	return errors.Wrapf(os.Rename(name, path), "could not move catalog into place at %s", path)
}
