package output

// TokenCounter estimates how many model tokens a serialized payload occupies.
// Implementations must be monotonic in content length.
type TokenCounter interface {
	Count(text []byte) int
}

// CharDivCounter estimates one token per Divisor bytes, rounded up.
type CharDivCounter struct {
	Divisor int
}

// DefaultTokenCounter is the counter used when none is configured.
var DefaultTokenCounter TokenCounter = CharDivCounter{Divisor: 4}

// Count implements TokenCounter.
func (c CharDivCounter) Count(text []byte) int {
	d := c.Divisor
	if d <= 0 {
		d = 4
	}
	return (len(text) + d - 1) / d
}

// TokenCounterFunc adapts a plain function to TokenCounter.
type TokenCounterFunc func(text []byte) int

// Count implements TokenCounter.
func (f TokenCounterFunc) Count(text []byte) int {
	return f(text)
}
