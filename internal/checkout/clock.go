package checkout

import "time"

// Clock abstracts wall time so transitions can be driven deterministically in
// tests. The countdown always compares against absolute timestamps, never a
// tick count, so a suspended driver catches up on the next tick.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func RealClock() Clock { return realClock{} }
