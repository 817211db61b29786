// Package logdate converts the proxy access-log local time notation
// "dd/Mon/yyyy:hh:mm:ss [zone]" to Unix timestamps and back.
//
// The zone suffix is ignored on input; the calendar of the given location
// (time.Local for Parse) is used instead. Wall times that fall into a DST gap
// or overlap are resolved the way time.Date resolves them.
package logdate

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// Layout is the rendering used by Format.
const Layout = "02/Jan/2006:15:04:05 -0700"

var dateRe = regexp.MustCompile(`^(\d{2})/([A-Za-z]{3})/(\d{4}):(\d{2}):(\d{2}):(\d{2})(?: .*)?$`)

var months = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Parse returns the Unix timestamp of s in the process local timezone, or 0
// when s is empty, malformed or out of range.
func Parse(s string) uint32 {
	return ParseInLocation(s, time.Local)
}

// ParseInLocation is Parse with an explicit calendar location.
func ParseInLocation(s string, loc *time.Location) uint32 {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	day, _ := strconv.Atoi(m[1])
	month := MonthNumber(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	sec, _ := strconv.Atoi(m[6])

	if day < 1 || day > 31 || month < 1 || month > 12 || year < 1970 ||
		hour > 23 || minute > 59 || sec > 59 {
		return 0
	}

	ts := time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc).Unix()
	if ts <= 0 || ts > math.MaxUint32 {
		return 0
	}
	return uint32(ts)
}

// Format renders ts in the process local timezone using Layout.
func Format(ts uint32) string {
	return FormatInLocation(ts, time.Local)
}

// FormatInLocation is Format with an explicit location.
func FormatInLocation(ts uint32, loc *time.Location) string {
	return time.Unix(int64(ts), 0).In(loc).Format(Layout)
}

// MonthNumber maps a case-sensitive three-letter month abbreviation to
// 1-12, or 0 when unknown.
func MonthNumber(abbr string) int {
	for i, m := range months {
		if m == abbr {
			return i + 1
		}
	}
	return 0
}
