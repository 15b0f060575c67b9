package sysprobe

import (
	"fmt"
	"time"
)

// TimezoneInfo describes the host's timezone at collection time.
type TimezoneInfo struct {
	Name string

	// UTCOffset is the current offset formatted as "+2 hours" or
	// "-5.5 hours".
	UTCOffset string

	DSTActive bool
}

// Timezone reports the local timezone, its UTC offset, and whether
// daylight saving is in effect. DST detection compares the current
// offset against the year's standard offset (the smaller of the
// January and July offsets, which covers both hemispheres).
func (h *Host) Timezone() *TimezoneInfo {
	now := h.now()
	name, offset := now.Zone()
	loc := now.Location()

	_, janOffset := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc).Zone()
	_, julOffset := time.Date(now.Year(), time.July, 1, 0, 0, 0, 0, loc).Zone()
	standard := janOffset
	if julOffset < standard {
		standard = julOffset
	}

	hours := round2(float64(offset) / 3600)

	return &TimezoneInfo{
		Name:      name,
		UTCOffset: fmt.Sprintf("%+g hours", hours),
		DSTActive: offset > standard,
	}
}
