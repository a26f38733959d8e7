package domain

import "testing"

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "-"},
		{"-", "-"},
		{"2024-03-05", "05/03/2024"},
		{"2024-03-05T03:00:00.000Z", "05/03/2024"},
		{"05/03/2024", "05/03/2024"},
		{"semana que vem", "semana que vem"},
	}
	for _, tc := range cases {
		if got := FormatDate(tc.in); got != tc.want {
			t.Errorf("FormatDate(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestInputDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"-", ""},
		{"2024-03-05T03:00:00.000Z", "2024-03-05"},
		{"05/03/2024", "2024-03-05"},
		{"amanhã", ""},
	}
	for _, tc := range cases {
		if got := InputDate(tc.in); got != tc.want {
			t.Errorf("InputDate(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
