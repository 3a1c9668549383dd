package dto

import (
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

var inputLayouts = []string{
	models.DateTimeLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
}

// DateTime is a timestamp carried on the wire as a zone-less local date-time.
// Values without a zone are read as UTC; RFC 3339 input is converted to UTC.
type DateTime struct {
	time.Time
}

func NewDateTime(t time.Time) DateTime {
	return DateTime{Time: t.UTC()}
}

func ParseDateTime(value string) (time.Time, error) {
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q, expected %s", value, models.DateTimeLayout)
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.UTC().Format(models.DateTimeLayout) + `"`), nil
}

func (d *DateTime) UnmarshalJSON(raw []byte) error {
	s := string(raw)
	if s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return fmt.Errorf("invalid date-time %s", s)
	}
	t, err := ParseDateTime(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
