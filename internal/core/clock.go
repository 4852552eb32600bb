package core

import "time"

// NowNanos returns the current time in nanoseconds. Precision is whatever the
// platform clock gives (sub-microsecond on linux/amd64). Successive reads on
// one thread are monotonic in practice but not guaranteed everywhere, so
// consumers of deltas (the latency tracker) clamp negatives.
func NowNanos() Timestamp {
	return time.Now().UnixNano()
}
