package buffer

// CircularFloat is a fixed-size ring of the most recent float64 values added.
// Iteration always runs from oldest to newest.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Next write position in buffer
	sum       float64   // Sum of the values currently stored
	BufSize   int       // BufSize is the fixed number of values maintained in memory
	Count     int       // Count is the number of values in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer holding size values. A size
// below 1 is treated as 1.
func NewCircularFloat(size int) *CircularFloat {
	if size < 1 {
		size = 1
	}

	return &CircularFloat{
		buffer:  make([]float64, size),
		BufSize: size,
	}
}

// Add appends the given value, overwriting the oldest entry once full
func (c *CircularFloat) Add(v float64) {
	c.TotalSeen++

	if c.Count == c.BufSize {
		c.sum -= c.buffer[c.pos]
	} else {
		c.Count++
	}

	c.buffer[c.pos] = v
	c.sum += v
	c.pos = (c.pos + 1) % c.BufSize
}

// Mean of the values currently held, 0 when empty. The running sum is
// recomputed every time the ring wraps so rounding error can not accumulate.
func (c *CircularFloat) Mean() float64 {
	if c.Count < 1 {
		return 0
	}
	if c.pos == 0 {
		c.sum = 0
		for _, v := range c.buffer[:c.Count] {
			c.sum += v
		}
	}
	return c.sum / float64(c.Count)
}

// Values returns an iterator over the stored values, oldest first
func (c *CircularFloat) Values() *CircularFloatIterator {
	start := 0
	if c.Count == c.BufSize {
		start = c.pos // Oldest is the one we're about to write
	}

	return &CircularFloatIterator{
		buf:    c,
		curr:   start,
		remain: c.Count,
	}
}

// CircularFloatIterator provides an iterator over a CircularFloat buffer
type CircularFloatIterator struct {
	buf    *CircularFloat
	curr   int
	remain int
}

// Next returns True when there are more values to read via Value
func (i *CircularFloatIterator) Next() bool {
	return i.remain > 0
}

// Value return the next value to be read. Should only be called if Next() is
// True
func (i *CircularFloatIterator) Value() float64 {
	v := i.buf.buffer[i.curr]
	i.curr = (i.curr + 1) % i.buf.BufSize
	i.remain--
	return v
}
