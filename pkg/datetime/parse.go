// Package datetime provides date and time utility functions.
package datetime

import (
	"strconv"
	"time"

	"github.com/iwvelando/sixsigma-portal/pkg/constants"
)

const (
	// TimestampLayout is the layout of stored submission and registration dates.
	TimestampLayout = constants.TimestampLayout
)

// FormatTimestamp renders t in UTC with millisecond precision,
// e.g. 2024-03-01T10:15:30.123Z.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a stored timestamp. RFC 3339 values are accepted too so
// hand-edited records still load.
func ParseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, value)
	if err == nil {
		return t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339Nano, value); rfcErr == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

// MillisID returns the decimal millisecond Unix timestamp of t, used as a
// record identifier.
func MillisID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// DisplayDate renders a stored timestamp as a short date for listings. Values
// that cannot be parsed are returned unchanged.
func DisplayDate(value string) string {
	t, err := ParseTimestamp(value)
	if err != nil {
		return value
	}
	return t.Format("02 Jan 2006")
}
