package data

import "time"

// Clock supplies the timestamps repositories stamp onto rows. Injecting it
// lets tests pin created_at and updated_at to a known instant.
type Clock interface {
	Now() time.Time
}

// systemClock reads the wall clock.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
