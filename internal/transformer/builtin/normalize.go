package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"stageload/internal/records"
)

const nbspace = "\u00a0"

// Normalize cleans string values in place: NBSP becomes a space, the value
// is trimmed and put into Unicode NFC. A value left empty becomes null.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(strings.ReplaceAll(s, nbspace, " "))
			if s == "" {
				r[k] = nil
				continue
			}
			r[k] = norm.NFC.String(s)
		}
	}
	return in
}
