// Package datefmt renders backend timestamps for display.
package datefmt

import (
	"fmt"
	"time"
)

// Format renders t in its own location as "yyyy/mm/dd hh:mi".
func Format(t time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02d %02d:%02d",
		t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute())
}

// FormatIn renders t in loc. A nil loc means time.Local.
func FormatIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return Format(t.In(loc))
}
