package builtin

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"stageload/internal/records"
)

// TimestampLayouts are the formats accepted for timestamp columns, tried in
// order. Values without a zone are read as UTC.
var TimestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"2006/01/02",
	"02.01.2006",
}

// Coerce converts the fields named in Kinds to their logical kind in place.
// A value that cannot be converted becomes null; null stays null; values
// already of the target Go type pass through.
type Coerce struct {
	Kinds   map[string]records.Kind
	Layouts []string // defaults to TimestampLayouts
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Kinds) == 0 {
		return in
	}
	layouts := c.Layouts
	if len(layouts) == 0 {
		layouts = TimestampLayouts
	}
	for _, r := range in {
		for field, kind := range c.Kinds {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			switch kind {
			case records.KindTimestamp:
				r[field] = toTimestamp(v, layouts)
			case records.KindInteger:
				r[field] = toInteger(v)
			case records.KindFloat:
				r[field] = toFloat(v)
			case records.KindText:
				if _, isStr := v.(string); !isStr {
					r[field] = fmt.Sprint(v)
				}
			}
		}
	}
	return in
}

// ParseTimestamp parses s with the first matching layout.
func ParseTimestamp(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func toTimestamp(v any, layouts []string) any {
	switch x := v.(type) {
	case time.Time:
		return x
	case string:
		if t, ok := ParseTimestamp(x, layouts); ok {
			return t
		}
	}
	return nil
}

func toInteger(v any) any {
	switch x := v.(type) {
	case int64:
		return x
	case int:
		return int64(x)
	case float64:
		return integralFloat(x)
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return integralFloat(f)
		}
	}
	return nil
}

// integralFloat returns f as int64 when it has no fractional part and fits.
func integralFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return nil
	}
	return int64(f)
}

func toFloat(v any) any {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	}
	return nil
}
