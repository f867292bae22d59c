package transport

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexTimeAcceptsCommonLayouts(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{`"2026-03-15T10:30:00Z"`, time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		{`"2026-03-15T10:30:00"`, time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		{`"2026-03-15 10:30:00"`, time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)},
		{`"2026-03-15"`, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		{`"15/03/2026"`, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		var ft FlexTime
		if err := json.Unmarshal([]byte(tc.input), &ft); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.input, err)
		}
		if !ft.Time.Equal(tc.want) {
			t.Fatalf("input %s: got %v, want %v", tc.input, ft.Time, tc.want)
		}
	}
}

func TestFlexTimeAcceptsEpochMillis(t *testing.T) {
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{`1704067200000`, `"1704067200000"`} {
		var ft FlexTime
		if err := json.Unmarshal([]byte(input), &ft); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if !ft.Time.Equal(want) {
			t.Fatalf("input %s: got %v, want %v", input, ft.Time, want)
		}
	}
}

func TestFlexTimeEmptyAndNullDecodeToZero(t *testing.T) {
	for _, input := range []string{`null`, `""`, `"   "`} {
		var ft FlexTime
		if err := json.Unmarshal([]byte(input), &ft); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if !ft.IsZero() {
			t.Fatalf("input %s: expected zero time, got %v", input, ft.Time)
		}
	}
}

func TestFlexTimeRejectsGarbage(t *testing.T) {
	var ft FlexTime
	if err := json.Unmarshal([]byte(`"next tuesday"`), &ft); err == nil {
		t.Fatal("expected error for unrecognized format")
	}
}

func TestFlexTimeMarshalsZeroAsNull(t *testing.T) {
	out, err := json.Marshal(FlexTime{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "null" {
		t.Fatalf("expected null, got %s", out)
	}
}
