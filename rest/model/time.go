package model

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

const apiTimeFormat = "2006-01-02T15:04:05.000Z"

// APITime is a time.Time that marshals to a fixed-format UTC timestamp, with
// the zero time rendered as null.
type APITime time.Time

// NewTime creates a new APITime from a standard time.Time.
func NewTime(t time.Time) APITime {
	return APITime(time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		t.Hour(),
		t.Minute(),
		t.Second(),
		t.Nanosecond(),
		t.Location()).In(time.UTC))
}

// Time returns the underlying time.Time.
func (at APITime) Time() time.Time { return time.Time(at) }

func (at APITime) MarshalJSON() ([]byte, error) {
	t := time.Time(at)
	if t.IsZero() {
		return []byte("null"), nil
	}

	return json.Marshal(t.In(time.UTC).Format(apiTimeFormat))
}

func (at *APITime) UnmarshalJSON(b []byte) error {
	str := string(b)
	if str == "null" {
		*at = APITime(time.Time{})
		return nil
	}

	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.WithStack(err)
	}

	t, err := time.ParseInLocation(apiTimeFormat, raw, time.UTC)
	if err != nil {
		return errors.WithStack(err)
	}

	*at = APITime(t)
	return nil
}
