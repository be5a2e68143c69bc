package app

// Countdown is the per-question timer state. It does not schedule anything
// itself; the Runner feeds it one Tick per elapsed wall-clock second, which
// keeps scoring fair regardless of how often a presentation layer redraws.
type Countdown struct {
	total     int
	remaining int
	active    bool
}

// Start arms the countdown with total seconds.
func (c *Countdown) Start(total int) {
	c.total = total
	c.remaining = total
	c.active = true
}

// Tick consumes one elapsed second and returns the remaining time. The
// boolean reports expiry, which fires exactly once: once remaining hits zero
// the countdown deactivates itself and further ticks are no-ops.
func (c *Countdown) Tick() (int, bool) {
	if !c.active || c.remaining <= 0 {
		return c.remaining, false
	}
	c.remaining--
	if c.remaining == 0 {
		c.active = false
		return 0, true
	}
	return c.remaining, false
}

// Stop deactivates the countdown without signalling expiry. Used when an
// answer arrives before time runs out.
func (c *Countdown) Stop() {
	c.active = false
}

// Reset re-arms the countdown for the next question.
func (c *Countdown) Reset(total int) {
	c.Start(total)
}

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int { return c.remaining }

// Active reports whether the countdown is still running.
func (c *Countdown) Active() bool { return c.active }

// Total returns the per-question allotment the countdown was armed with.
func (c *Countdown) Total() int { return c.total }
