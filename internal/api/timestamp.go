package api

import (
	"encoding/json"
	"fmt"
	"time"
)

// naiveLayouts are accepted for timestamps sent without a zone, which the
// service writes in UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a server time. It decodes RFC 3339 values as well as
// zone-less ISO 8601 values, which are taken to be UTC.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalText encodes the time as RFC 3339 with sub-second precision.
func (t Timestamp) MarshalText() ([]byte, error) {
	if t.IsZero() {
		return []byte{}, nil
	}

	return []byte(t.Format(time.RFC3339Nano)), nil
}

// UnmarshalText decodes an RFC 3339 or zone-less timestamp.
func (t *Timestamp) UnmarshalText(data []byte) error {
	s := string(data)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}

	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return fmt.Errorf("invalid timestamp %q", s)
}

// MarshalJSON overrides the embedded time.Time encoder.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	text, err := t.MarshalText()
	if err != nil {
		return nil, err
	}

	return json.Marshal(string(text))
}

// UnmarshalJSON overrides the embedded time.Time decoder so zone-less
// values are accepted.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}

	return t.UnmarshalText([]byte(s))
}
