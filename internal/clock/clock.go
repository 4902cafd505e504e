// Package clock abstracts the current time so scheduling code can be tested deterministically.
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Real uses the system clock.
type Real struct{}

var _ Clock = Real{}

func (Real) Now() time.Time { return time.Now() }
