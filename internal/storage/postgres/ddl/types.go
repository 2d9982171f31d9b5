// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import "stageload/internal/records"

// MapType maps a logical kind onto a Postgres column type.
//
//	integer   -> BIGINT
//	float     -> DOUBLE PRECISION
//	timestamp -> TIMESTAMP
//	text      -> TEXT
func MapType(kind records.Kind) string {
	switch kind {
	case records.KindInteger:
		return "BIGINT"
	case records.KindFloat:
		return "DOUBLE PRECISION"
	case records.KindTimestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}
