package leave

import goerrors "github.com/goliatone/go-errors"

var (
	ErrNotFound = goerrors.New("leave request not found", goerrors.CategoryNotFound).
			WithTextCode("LEAVE_REQUEST_NOT_FOUND")

	// ErrStateConflict is returned when an operation does not match the
	// current workflow state, including updates that lost a race.
	ErrStateConflict = goerrors.New("leave request is not in a state that allows this operation", goerrors.CategoryConflict).
				WithTextCode("INVALID_LEAVE_TRANSITION")

	ErrTerminalState = goerrors.New("leave request is already closed", goerrors.CategoryConflict).
				WithTextCode("TERMINAL_LEAVE_STATE")

	ErrNotOwner = goerrors.New("only the owner can change this leave request", goerrors.CategoryAuthz).
			WithTextCode("FORBIDDEN")
)
