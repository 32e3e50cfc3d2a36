package evidence

import "testing"

func TestParseCookieString(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]string
	}{
		{"a=1; b=2", map[string]string{"a": "1", "b": "2"}},
		{"PHPSESSID=abc123", map[string]string{"PHPSESSID": "abc123"}},
		{"flag=", map[string]string{"flag": ""}},
		{"novalue", map[string]string{"novalue": ""}},
		{"", map[string]string{}},
		{" ; ; ", map[string]string{}},
	}
	for _, tt := range tests {
		got := parseCookieString(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseCookieString(%q): got %v, want %v", tt.in, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("parseCookieString(%q)[%s]: got %q, want %q", tt.in, k, got[k], v)
			}
		}
	}
}
