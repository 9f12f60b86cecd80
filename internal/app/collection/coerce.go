package collection

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// maxDateMillis bounds numeric dates to the range a JavaScript Date accepts.
const maxDateMillis = 8.64e15

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

var errEmptyDate = errors.New("empty date string")

// CoerceDate converts a raw frontmatter value into a calendar date.
// Strings without a zone are read as UTC and numbers as Unix milliseconds.
func CoerceDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("expected date, got null")
		}
		return *v, nil
	case string:
		return parseDateString(v)
	case float64:
		return fromMillis(v)
	case float32:
		return fromMillis(float64(v))
	case int:
		return fromMillis(float64(v))
	case int8:
		return fromMillis(float64(v))
	case int16:
		return fromMillis(float64(v))
	case int32:
		return fromMillis(float64(v))
	case int64:
		return fromMillis(float64(v))
	case uint:
		return fromMillis(float64(v))
	case uint8:
		return fromMillis(float64(v))
	case uint16:
		return fromMillis(float64(v))
	case uint32:
		return fromMillis(float64(v))
	case uint64:
		return fromMillis(float64(v))
	default:
		return time.Time{}, fmt.Errorf("cannot coerce %T to date", value)
	}
}

func parseDateString(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errEmptyDate
	}
	for _, layout := range dateLayouts {
		parsed, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func fromMillis(ms float64) (time.Time, error) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxDateMillis {
		return time.Time{}, fmt.Errorf("date %v out of range", ms)
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
