package session

import "time"

// Clock abstracts wall-clock time so the engine's timing arithmetic can be
// tested against a controlled clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the production clock.
var SystemClock Clock = systemClock{}
