package pricing

import "github.com/rotisserie/eris"

var (
	// ErrInsufficientData means no source produced a usable price.
	ErrInsufficientData = eris.New("insufficient data for a price suggestion")
	// ErrPricingUnavailable means the last-resort AI estimate failed.
	ErrPricingUnavailable = eris.New("pricing unavailable")
)
