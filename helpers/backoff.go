package helpers

import "time"

// Limited exponential backoff for retry delays.
// Not safe for concurrent use, owned by one worker.
// Update(false) increases next delay by K, Update(true) resets it to Min.
type Backoff struct {
	next time.Duration

	Min time.Duration
	Max time.Duration
	K   float32
	Res time.Duration // delay resolution for nice logs, default=1ms
}

// Use scenario:
// for {
//   ok := op()
//   time.Sleep(backoff.DelayAfter(ok))
// }
// Success returns zero delay.
func (b *Backoff) DelayAfter(success bool) time.Duration {
	b.Update(success)
	if success {
		return 0
	}
	return b.next
}

func (b *Backoff) Update(success bool) {
	if success || b.next == 0 {
		b.next = b.limit(b.Min)
		return
	}
	b.next = b.limit(time.Duration(float32(b.next) * b.K))
}

func (b *Backoff) limit(d time.Duration) time.Duration {
	if d < b.Min {
		d = b.Min
	}
	if b.Max != 0 && d > b.Max {
		d = b.Max
	}
	res := b.Res
	if res == 0 {
		res = 1 * time.Millisecond
	}
	return d / res * res
}
