package refresher

import (
	"time"

	"github.com/rotisserie/eris"
)

// NextRun returns the first time after now whose wall clock in now's
// location is clock ("15:04").
func NextRun(now time.Time, clock string) (time.Time, error) {
	at, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "parse daily run time %q", clock)
	}
	y, m, d := now.Date()
	next := time.Date(y, m, d, at.Hour(), at.Minute(), 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
