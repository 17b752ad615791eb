package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const (
	// DefaultDateFormat storage format of datetime attributes
	DefaultDateFormat = "2006-01-02 15:04:05"
	// DateOnlyFormat serialization format of date casts
	DateOnlyFormat = "2006-01-02"
)

// ErrInvalidDate value can't be parsed as a date
var ErrInvalidDate = errors.New("invalid date")

var (
	digitsRegexp   = regexp.MustCompile(`^-?\d+$`)
	dateOnlyRegexp = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

// ParseTime parse a flexible date value. time.Time is returned as is, integers and
// all-digit strings are treated as a Unix epoch, bare Y-m-d strings resolve to midnight,
// other strings are tried against layout and then the jinzhu/now formats.
func ParseTime(value interface{}, layout string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = DefaultDateFormat
	}

	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v != nil {
			return *v, nil
		}
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		epoch, _ := ToInt(v)
		return time.Unix(epoch, 0).In(loc), nil
	case float32, float64:
		f, _ := ToFloat(v)
		return time.Unix(int64(f), 0).In(loc), nil
	case []byte:
		return ParseTime(string(v), layout, loc)
	case string:
		s := strings.TrimSpace(v)
		if digitsRegexp.MatchString(s) {
			epoch, err := strconv.ParseInt(s, 10, 64)
			if err == nil {
				return time.Unix(epoch, 0).In(loc), nil
			}
		}

		if matches := dateOnlyRegexp.FindStringSubmatch(s); matches != nil {
			year, _ := strconv.Atoi(matches[1])
			month, _ := strconv.Atoi(matches[2])
			day, _ := strconv.Atoi(matches[3])
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
		}

		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.In(loc), nil
		}

		cfg := &now.Config{TimeLocation: loc, TimeFormats: append([]string{layout}, now.TimeFormats...)}
		if t, err := cfg.Parse(s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %#v", ErrInvalidDate, value)
}

// StartOfDay truncate t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return now.With(t).BeginningOfDay()
}

// FormatTime format t with layout, DefaultDateFormat when layout is empty
func FormatTime(t time.Time, layout string) string {
	if layout == "" {
		layout = DefaultDateFormat
	}
	return t.Format(layout)
}
