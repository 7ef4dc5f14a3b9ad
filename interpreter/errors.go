package interpreter

import "errors"

var (
	// ErrElementNotFound is returned when the locator chain exhausts its retries.
	ErrElementNotFound = errors.New("could not locate element")

	// ErrNoElement is returned by element commands before anything was located.
	ErrNoElement = errors.New("no element has been located yet")

	// ErrUnsupportedKey is returned by press for keys other than Enter.
	ErrUnsupportedKey = errors.New("unsupported key")

	// ErrInvalidWait is returned by chill when its argument is not a whole number of seconds.
	ErrInvalidWait = errors.New("could not parse time to wait as integer")

	// ErrAlreadyTriedAgain is returned by try-again inside a block that is already being retried.
	ErrAlreadyTriedAgain = errors.New("try-again already used for this block")

	// ErrUnsupportedStatement is returned for statement types the interpreter does not know.
	ErrUnsupportedStatement = errors.New("unsupported statement")
)
