package sysprobe

import "fmt"

// TimeInfo reports the host's clock at collection time.
type TimeInfo struct {
	Weekday string
	Date    string
	Clock   string
	Zone    string

	// Full is the assembled local form: "Monday, 02 January 2006 15:04:05 (TZ)".
	Full string

	// UTC is the same instant as "2006-01-02 15:04:05 UTC".
	UTC string

	// Epoch is the raw Unix timestamp.
	Epoch int64
}

// Time reports the current local and UTC time. The zone name comes
// from the runtime's timezone table, independent of the system probe.
func (h *Host) Time() *TimeInfo {
	now := h.now()
	zone, _ := now.Zone()

	weekday := now.Format("Monday")
	date := now.Format("02 January 2006")
	clock := now.Format("15:04:05")

	return &TimeInfo{
		Weekday: weekday,
		Date:    date,
		Clock:   clock,
		Zone:    zone,
		Full:    fmt.Sprintf("%s, %s %s (%s)", weekday, date, clock, zone),
		UTC:     now.UTC().Format("2006-01-02 15:04:05") + " UTC",
		Epoch:   now.Unix(),
	}
}
