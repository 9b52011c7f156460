package utils

import (
	"time"

	m "pfeifer.dev/latmpc/math"
)

// UpdateTracker follows how often a topic delivers new data.
type UpdateTracker struct {
	LastTime time.Time
	Time     time.Time
	DiffMA   m.MovingAverage
	Count    uint64
}

func (u *UpdateTracker) Init(maLength int) {
	u.LastTime = time.Now()
	u.Time = u.LastTime
	u.Count = 0
	u.DiffMA.Init(maLength)
}

func (u *UpdateTracker) Update() {
	u.UpdateAt(time.Now())
}

func (u *UpdateTracker) UpdateAt(now time.Time) {
	u.LastTime = u.Time
	u.Time = now
	u.Count++
	u.DiffMA.Update(u.Time.Sub(u.LastTime).Seconds())
}

// Stale reports whether nothing arrived within timeout of now. A tracker that never received an
// update is always stale.
func (u *UpdateTracker) Stale(now time.Time, timeout time.Duration) bool {
	return u.Count == 0 || now.Sub(u.Time) > timeout
}
