package send

import "errors"

// ErrNilParam indicates a required parameter is nil.
var ErrNilParam = errors.New("send: required parameter is nil")
