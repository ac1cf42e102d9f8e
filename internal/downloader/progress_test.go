package downloader

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"short", "ubuntu.iso", "ubuntu.iso"},
		{"exactly thirty", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"thirty one", strings.Repeat("b", 31), strings.Repeat("b", 29) + "…"},
		{"multibyte", strings.Repeat("é", 40), strings.Repeat("é", 29) + "…"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTitle(tt.title)
			if got != tt.want {
				t.Errorf("truncateTitle() = %q, want %q", got, tt.want)
			}
			if n := utf8.RuneCountInString(got); n > titleWidth {
				t.Errorf("truncated title has %d code points", n)
			}
		})
	}
}

func TestProgressMessage(t *testing.T) {
	tests := []struct {
		name       string
		downloaded int64
		total      int64
		speed      string
		want       string
	}{
		{"half", 512 * 1024, 1024 * 1024, "", "Downloading f: 0.50 MB / 1.00 MB (50.00%)"},
		{"with speed", 1024 * 1024, 1024 * 1024, " | 3.25 MB/s", "Downloading f: 1.00 MB / 1.00 MB (100.00%) | 3.25 MB/s"},
		{"unknown total", 3 * 1024 * 1024, -1, "", "Downloaded f: 3.00 MB"},
		{"empty resource", 0, 0, "", "Downloading f: 0.00 MB / 0.00 MB (0.00%)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progressMessage("f", tt.downloaded, tt.total, tt.speed); got != tt.want {
				t.Errorf("progressMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpeedSampler(t *testing.T) {
	clock := newFakeClock()
	s := newSpeedSampler(clock)

	if got := s.add(1024 * 1024); got != "" {
		t.Errorf("speed before first window = %q, want empty", got)
	}
	clock.Advance(500 * time.Millisecond)
	if got := s.add(1024 * 1024); got != "" {
		t.Errorf("speed inside window = %q, want empty", got)
	}
	clock.Advance(500 * time.Millisecond)
	if got := s.add(2 * 1024 * 1024); got != " | 4.00 MB/s" {
		t.Errorf("speed after window = %q", got)
	}
	clock.Advance(100 * time.Millisecond)
	if got := s.add(1); got != " | 4.00 MB/s" {
		t.Errorf("cached speed = %q", got)
	}
	clock.Advance(2 * time.Second)
	if got := s.add(2 * 1024 * 1024); got != " | 0.95 MB/s" {
		t.Errorf("second window speed = %q", got)
	}
}
