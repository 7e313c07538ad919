package oracle

import "errors"

// ErrPriceUnavailable wraps every upstream failure. Settlement and join flows
// defer and retry later; they never proceed on a guessed price.
var ErrPriceUnavailable = errors.New("price_unavailable")
