package panel

import "time"

// Resync picks one control per time slot for a forced re-transmission, so a
// host that missed frames sees the full panel within slot*n.
type Resync struct {
	epoch time.Time
	slot  time.Duration
	n     int
	prev  int
}

// NewResync creates a scheduler over n controls starting at epoch.
func NewResync(epoch time.Time, slot time.Duration, n int) *Resync {
	if slot <= 0 {
		slot = DefaultResyncSlot
	}
	return &Resync{epoch: epoch, slot: slot, n: n, prev: -1}
}

// Cursor returns the index of the control owning the slot at now.
func (r *Resync) Cursor(now time.Time) int {
	if r.n == 0 {
		return -1
	}
	elapsed := now.Sub(r.epoch)
	if elapsed < 0 {
		elapsed = 0
	}
	return int(int64(elapsed/r.slot) % int64(r.n))
}

// Advance returns the index of the control that just entered its slot, or -1
// if the cursor has not moved since the previous call.
func (r *Resync) Advance(now time.Time) int {
	cur := r.Cursor(now)
	if cur == r.prev {
		return -1
	}
	r.prev = cur
	return cur
}

// Cycle is the time needed to resync every control once.
func (r *Resync) Cycle() time.Duration {
	return r.slot * time.Duration(r.n)
}
