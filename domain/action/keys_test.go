package action

import "testing"

func TestParseKey(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"F1", 0x70},
		{"f3", 0x72},
		{"F12", 0x7B},
		{"F24", 0x87},
		{" r ", 'R'},
		{"7", '7'},
		{"PageDown", KeyPageDown},
		{"enter", KeyReturn},
	}
	for _, tc := range cases {
		got, err := ParseKey(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseKey(%q) = %#x, %v; want %#x", tc.in, got, err, tc.want)
		}
	}
	for _, bad := range []string{"", "F0", "F25", "F01", "FX", "ctrl", "??"} {
		if _, err := ParseKey(bad); err == nil {
			t.Errorf("ParseKey(%q) accepted", bad)
		}
	}
}
