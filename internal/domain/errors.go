package domain

import "errors"

// Error taxonomy shared by the chat core and both transports. All of these are
// local, recoverable conditions reported back to the originating connection or
// request; none are fatal to the process.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownUser     = errors.New("unknown user")
	ErrNotJoined       = errors.New("not joined")
	ErrSessionClosed   = errors.New("session closed")
	ErrConflict        = errors.New("conflict")
	ErrNotFound        = errors.New("not found")
)
