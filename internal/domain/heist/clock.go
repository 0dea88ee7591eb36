package heist

import "time"

// Clock abstracts wall-clock time so expiry logic is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}
