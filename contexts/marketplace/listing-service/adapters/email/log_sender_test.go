package email

import "testing"

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"seller@example.com": "s***@example.com",
		"x@y.z":              "x***@y.z",
		"broken":             "***",
	}
	for input, want := range cases {
		if got := maskEmail(input); got != want {
			t.Fatalf("maskEmail(%q): expected %q, got %q", input, want, got)
		}
	}
}
