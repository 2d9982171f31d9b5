package builtin

import (
	"math"
	"strconv"
	"strings"
	"time"

	"stageload/internal/records"
)

// InferKinds picks a kind per column from the values present: integer when
// every non-null value is an integer, float when every value is numeric,
// timestamp when every value already is a time.Time, otherwise text. Columns
// with no values are text.
func InferKinds(ds records.Dataset) map[string]records.Kind {
	out := make(map[string]records.Kind, len(ds.Columns))
	for _, col := range ds.Columns {
		out[col] = inferColumn(ds.Rows, col)
	}
	return out
}

func inferColumn(rows []records.Record, col string) records.Kind {
	seen := false
	allInt, allNum, allTime := true, true, true
	for _, r := range rows {
		v := r[col]
		if v == nil {
			continue
		}
		seen = true
		switch x := v.(type) {
		case int64, int:
			allTime = false
		case float64:
			allInt = false
			allTime = false
		case time.Time:
			allInt, allNum = false, false
		case string:
			allTime = false
			s := strings.TrimSpace(x)
			if !isInt(s) {
				allInt = false
				if !isFloat(s) {
					allNum = false
				}
			}
		default:
			return records.KindText
		}
		if !allInt && !allNum && !allTime {
			return records.KindText
		}
	}
	switch {
	case !seen:
		return records.KindText
	case allTime:
		return records.KindTimestamp
	case allInt:
		return records.KindInteger
	case allNum:
		return records.KindFloat
	}
	return records.KindText
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// isFloat accepts decimal or scientific notation.
func isFloat(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}
