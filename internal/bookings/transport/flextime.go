package transport

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// flexFormats are the accepted scheduled-date layouts, tried in order.
// Booking forms and imported records disagree on date formatting, so the
// API accepts the common variants instead of forcing one.
var flexFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// FlexTime is a time.Time that unmarshals from any of the accepted layouts
// or from epoch milliseconds. An empty string or null decodes to the zero
// time.
type FlexTime struct {
	time.Time
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	raw := strings.Trim(string(data), `"`)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}

	// Timestamps exported from the old system arrive as epoch millis,
	// either as a JSON number or a numeric string.
	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}

	for _, layout := range flexFormats {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized date format %q", raw)
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}
