package sqlstore

import (
	"fmt"
	"strings"
	"time"
)

// storedTimeLayout is fixed width and always UTC, so text columns sort
// chronologically.
const storedTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// legacyTimeLayouts are accepted when reading text timestamps written by
// other tools or older builds.
var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999 -0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// FormatTimeForDB formats a time.Time value for text timestamp columns
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// ParseTimeFromDB parses a text timestamp from the database. Go's
// monotonic clock suffix (" m=+0.0001") is ignored. Values without an
// offset are read as UTC.
func ParseTimeFromDB(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, " m="); idx != -1 {
		s = s[:idx]
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// dbTime scans a nullable timestamp stored either natively or as text.
type dbTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (t *dbTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time, t.Valid = time.Time{}, false
		return nil
	case time.Time:
		t.Time, t.Valid = v.UTC(), true
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a timestamp", src)
	}
}

func (t *dbTime) parse(s string) error {
	parsed, err := ParseTimeFromDB(s)
	if err != nil {
		return err
	}
	t.Time, t.Valid = parsed, true
	return nil
}

// Ptr returns nil for NULL.
func (t dbTime) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
