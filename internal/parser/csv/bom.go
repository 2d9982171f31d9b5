package csv

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// withoutBOM decodes r as UTF-8 and drops a leading byte order mark. Inputs
// with a UTF-16 BOM are transcoded to UTF-8.
func withoutBOM(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}
