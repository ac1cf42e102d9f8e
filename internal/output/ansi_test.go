package output

import "testing"

func TestVisibleLen(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"plain", "hello", 5},
		{"multibyte", "héllo…", 6},
		{"sgr", "\x1b[31mred\x1b[0m", 3},
		{"cursor moves", "\x1b[2A\x1b[2Kx", 1},
		{"lone escape", "a\x1bb", 3},
		{"unterminated", "ab\x1b[12", 2},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VisibleLen(tt.in); got != tt.want {
				t.Errorf("VisibleLen(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter", "abc", 5, "abc"},
		{"plain cut", "abcdef", 3, "abc"},
		{"keeps reset", "\x1b[31mabcdef\x1b[0m", 2, "\x1b[31mab\x1b[0m"},
		{"escape inside cut", "ab\x1b[1mcd\x1b[0mef", 3, "ab\x1b[1mc\x1b[0m"},
		{"code points", "ééééé", 2, "éé"},
		{"zero", "\x1b[32mabc\x1b[0m", 0, "\x1b[32m\x1b[0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateANSI(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("TruncateANSI(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if n := VisibleLen(got); n > tt.max {
				t.Errorf("visible length %d exceeds %d", n, tt.max)
			}
		})
	}
}
