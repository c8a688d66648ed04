package storage

import "time"

// idGen hands out strictly increasing ids based on wall-clock milliseconds.
// Two calls within the same millisecond get consecutive values.
type idGen struct {
	now  func() time.Time
	last int64
}

func (g *idGen) seed(max int64) {
	if max > g.last {
		g.last = max
	}
}

func (g *idGen) next() int64 {
	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return n
}
