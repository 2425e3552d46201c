package service

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a cancellable scheduled callback
type Timer interface {
	Stop() bool
}

// Scheduler arms one-shot timers for question deadlines
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct {
	clock clockwork.Clock
}

func (s clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.clock.AfterFunc(d, f)
}
