package conversation

import "testing"

func TestExtractName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"my name is John", "John"},
		{"My name is John", "John"},
		{"Well, my name is O'Brien actually", "O'Brien"},
		{"my name is Anne-Marie", "Anne-Marie"},
		{"John", ""},
		{"call me John", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractName(tc.in); got != tc.want {
			t.Errorf("ExtractName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
