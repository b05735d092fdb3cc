package route

import "errors"

// ErrPointNotInForce is returned when an equalisation point is inactive or
// outside its validity window at the loading time.
var ErrPointNotInForce = errors.New("route: equalisation point not in force")
