package sysprobe

// DiskUsage describes space on one mounted filesystem, in bytes.
// Avail is the space available to unprivileged users, which is what
// the used-percentage is measured against.
type DiskUsage struct {
	Total uint64
	Used  uint64
	Avail uint64
}

// UsedPercent returns used space as a percentage of the space visible
// to users (used + available), one decimal.
func (d DiskUsage) UsedPercent() float64 {
	denom := d.Used + d.Avail
	if denom == 0 {
		return 0
	}
	return round1(float64(d.Used) / float64(denom) * 100)
}
