package repository

import (
	"fmt"
	"strings"
	"time"
)

// Timestamps are written as fixed-width UTC strings so they compare and
// sort the same way in MySQL DATETIME(6) columns and sqlite TEXT columns.
const (
	timestampLayout = "2006-01-02 15:04:05.000000"
	dateLayout      = "2006-01-02"
)

func formatTimestamp(t time.Time) string { return t.UTC().Format(timestampLayout) }

func formatDate(t time.Time) string { return t.UTC().Format(dateLayout) }

// dbTime scans DATE/DATETIME values whether the driver returns them as
// time.Time (MySQL with parseTime) or as text (sqlite).
type dbTime struct{ t *time.Time }

var scanLayouts = []string{
	timestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	dateLayout,
}

func (d dbTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d.t = v.UTC()
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	case nil:
		*d.t = time.Time{}
		return nil
	}
	return fmt.Errorf("unsupported time value %T", src)
}

func (d dbTime) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range scanLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*d.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse time %q", s)
}
