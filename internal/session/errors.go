package session

import "errors"

// ErrInvalidArgument is returned by NewStoreHandler when the supplied
// configuration cannot back a session handler.
var ErrInvalidArgument = errors.New("session: invalid argument")
