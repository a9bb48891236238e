package compactor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hejijunhao/camscan/internal/model"
)

func TestTruncateASCII(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello world", 5, "hello"},
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"anything", 0, "anything"},
		{"anything", -1, "anything"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateRuneSafety(t *testing.T) {
	// CJK characters are 3 bytes each in UTF-8.
	input := strings.Repeat("日本語", 100)
	result := Truncate(input, 10)

	if !utf8.ValidString(result) {
		t.Fatal("truncated string is not valid UTF-8")
	}
	if len(result) != 9 {
		t.Fatalf("expected 9 bytes (3 whole runes), got %d", len(result))
	}
}

func TestTruncateEmoji(t *testing.T) {
	input := strings.Repeat("🔥", 50)
	result := Truncate(input, 6)

	if !utf8.ValidString(result) {
		t.Fatal("truncated string is not valid UTF-8")
	}
	if utf8.RuneCountInString(result) != 1 {
		t.Fatalf("expected 1 rune, got %d", utf8.RuneCountInString(result))
	}
}

func TestCompactLeavesOtherFields(t *testing.T) {
	c := New(4)
	d := model.Device{IP: "10.0.0.1", Port: 554, Org: "Acme", Banner: "RTSP/1.0 200 OK"}
	got := c.Compact(d)

	if got.Banner != "RTSP" {
		t.Fatalf("expected banner 'RTSP', got %q", got.Banner)
	}
	if got.IP != d.IP || got.Port != d.Port || got.Org != d.Org {
		t.Fatalf("non-banner fields changed: %+v", got)
	}
	if d.Banner != "RTSP/1.0 200 OK" {
		t.Fatal("Compact must not modify its argument")
	}
}

func TestCompactAll(t *testing.T) {
	devices := []model.Device{
		{Banner: strings.Repeat("a", WebBannerBytes+10)},
		{Banner: "tiny"},
	}
	New(WebBannerBytes).CompactAll(devices)
	if len(devices[0].Banner) != WebBannerBytes {
		t.Fatalf("expected %d bytes, got %d", WebBannerBytes, len(devices[0].Banner))
	}
	if devices[1].Banner != "tiny" {
		t.Fatalf("short banner changed: %q", devices[1].Banner)
	}
}
