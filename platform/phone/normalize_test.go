package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"98765 43210", "+919876543210"},
		{"09876543210", "+919876543210"},
		{"+91 98765 43210", "+919876543210"},
		{"+919876543210", "+919876543210"},
		{"  +919876543210  ", "+919876543210"},
		{"not-a-number", "not-a-number"},
		{"12345", "12345"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.input, "IN"); got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
