package utils

import "time"

// UTCLayout is the timestamp layout used for news lines.
const UTCLayout = "2006-01-02 15:04 UTC"

// FormatUTC renders t in UTC as "2024-05-01 14:30 UTC".
func FormatUTC(t time.Time) string {
	return t.UTC().Format(UTCLayout)
}

// DateWindow returns the [from, to] calendar dates (YYYY-MM-DD) covering
// the trailing number of days ending at now.
func DateWindow(now time.Time, days int) (from, to string) {
	to = now.Format("2006-01-02")
	from = now.AddDate(0, 0, -days).Format("2006-01-02")
	return from, to
}

// FromUnix converts epoch seconds to a UTC time; non-positive input is
// treated as unknown.
func FromUnix(sec int64) (time.Time, bool) {
	if sec <= 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, 0).UTC(), true
}
