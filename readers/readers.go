// Package readers assembles the standard set of catalog readers.
package readers

import (
	"github.com/birkland/catalog"
	"github.com/birkland/catalog/metadata"
	"github.com/birkland/catalog/readers/tr9401"
	"github.com/birkland/catalog/readers/xmlcat"
)

// Default returns the standard reader bindings, in the order they are tried
// on catalog resources of unknown type: XML catalogs, structured documents,
// and finally TR9401 text catalogs, which accept nearly anything.
func Default() []catalog.ReaderBinding {
	xml := xmlcat.Reader{}
	yaml := metadata.YAMLReader{}

	return []catalog.ReaderBinding{
		{MIME: xmlcat.MIMETypes[0], Reader: xml},
		{MIME: xmlcat.MIMETypes[1], Reader: xml},
		{MIME: metadata.YAMLMIMEType, Reader: yaml},
		{MIME: metadata.JSONMIMEType, Reader: yaml},
		{MIME: metadata.TOMLMIMEType, Reader: metadata.TOMLReader{}},
		{MIME: tr9401.MIMEType, Reader: tr9401.Reader{}},
	}
}
