package backoff

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"golang.org/x/time/rate"
)

// Jitter wraps inner, stretching each retry delay by up to fraction of its
// value. A fraction of 0.25 turns a 100ms delay into a random delay in
// [100ms, 125ms). Halt decisions and zero delays pass through unchanged, as
// does any fraction <= 0.
func Jitter(inner Strategy, fraction float64) Strategy {
	return &jittered{inner: inner, fraction: fraction}
}

type jittered struct {
	inner    Strategy
	fraction float64
}

func (j *jittered) Next(err error) Decision {
	d := j.inner.Next(err)
	if d.Halted() || d.Delay() <= 0 || j.fraction <= 0 {
		return d
	}

	extra := float64(d.Delay()) * j.fraction * secureRandomFloat()

	return RetryAfter(d.Delay() + time.Duration(extra))
}

// secureRandomFloat returns a cryptographically secure random float64 between 0 and 1.
func secureRandomFloat() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0.5 // fallback to middle value
	}
	return float64(binary.LittleEndian.Uint64(b[:])) / float64(^uint64(0))
}

// FromLimiter returns a strategy that paces retries with a token bucket.
// Each consultation reserves one token; the reservation's delay becomes the
// retry delay. The strategy halts if the limiter cannot satisfy the
// reservation at all (burst of zero or a cancelled limit).
func FromLimiter(l *rate.Limiter) Strategy {
	return &limiterStrategy{limiter: l}
}

type limiterStrategy struct {
	limiter *rate.Limiter
}

func (s *limiterStrategy) Next(error) Decision {
	r := s.limiter.Reserve()
	if !r.OK() {
		return Halt()
	}
	return RetryAfter(r.Delay())
}
