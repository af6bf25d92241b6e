package driver

// Clock is a monotonically advancing virtual time_point with a
// user-settable zero, per spec §4.H. Resolution matches the underlying
// float64 representation.
type Clock struct {
	t float64
}

// NewClock returns a clock at t=0.
func NewClock() *Clock { return &Clock{} }

// Now returns the current virtual time.
func (c *Clock) Now() float64 { return c.t }

// Reset sets the clock back to zero.
func (c *Clock) Reset() { c.t = 0 }

// Set moves the clock to an arbitrary time point.
func (c *Clock) Set(t float64) { c.t = t }

// Advance moves the clock forward by dt (dt may be negative, though the
// driver never does this; callers needing a monotonic guarantee should
// check dt >= 0 themselves).
func (c *Clock) Advance(dt float64) { c.t += dt }
