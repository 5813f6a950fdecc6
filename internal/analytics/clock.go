package analytics

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock supplies the calendar date treated as "today" by the aggregator.
type Clock interface {
	Today() civil.Date
}

// SystemClock reads the wall clock in Location. A nil Location means UTC.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() civil.Date {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return civil.DateOf(time.Now().In(loc))
}

// FixedClock always reports the same date.
type FixedClock civil.Date

func (c FixedClock) Today() civil.Date {
	return civil.Date(c)
}
