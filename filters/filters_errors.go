package filters

import "errors"

var (
	ErrUnknownPriceBand = errors.New("unknown price band")
	ErrUnknownAudience  = errors.New("unknown audience")
)
