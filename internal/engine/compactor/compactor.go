package compactor

import (
	"unicode/utf8"

	"github.com/hejijunhao/camscan/internal/model"
)

// Banner byte limits used by the two ingestion paths.
const (
	WebBannerBytes  = 500 // live search and demo mode keep more text for the classifier
	ScanBannerBytes = 200 // offline scan output
)

// Compactor bounds the size of device banners.
type Compactor struct {
	MaxBytes int // 0 disables truncation
}

// New creates a Compactor that keeps at most maxBytes of each banner.
func New(maxBytes int) *Compactor {
	return &Compactor{MaxBytes: maxBytes}
}

// Compact returns a copy of d with its banner truncated.
func (c *Compactor) Compact(d model.Device) model.Device {
	d.Banner = Truncate(d.Banner, c.MaxBytes)
	return d
}

// CompactAll truncates every banner in place and returns the slice.
func (c *Compactor) CompactAll(devices []model.Device) []model.Device {
	for i := range devices {
		devices[i] = c.Compact(devices[i])
	}
	return devices
}

// Truncate cuts s to at most maxBytes bytes without splitting a UTF-8
// sequence. maxBytes <= 0 returns s unchanged.
func Truncate(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
