package types

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the core wraps exactly one of
// these, so callers can classify with errors.Is and decide how to surface
// it. All four recoverable classes allow retry or correction by the user;
// ErrStorage signals a persistence fault the caller should not retry.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrState      = errors.New("invalid lifecycle state")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage failure")
)

// Fine-grained sentinels. Each wraps its class, so
// errors.Is(err, ErrCodeTaken) and errors.Is(err, ErrConflict) both hold.
var (
	ErrInvalidID       = fmt.Errorf("%w: id must not be empty", ErrValidation)
	ErrTitleEmpty      = fmt.Errorf("%w: title must not be empty", ErrValidation)
	ErrNameEmpty       = fmt.Errorf("%w: name must not be empty", ErrValidation)
	ErrDeclaredUnits   = fmt.Errorf("%w: declared unit count must be at least 1", ErrValidation)
	ErrInvalidLoanMode = fmt.Errorf("%w: unknown loan mode", ErrValidation)
	ErrInvalidLoanKind = fmt.Errorf("%w: unknown loan kind", ErrValidation)
	ErrInvalidCode     = fmt.Errorf("%w: unit code must be 1-6 characters from A-Z0-9", ErrValidation)
	ErrLoanModeForbids = fmt.Errorf("%w: item loan mode forbids the requested loan kind", ErrValidation)
	ErrInvalidRole     = fmt.Errorf("%w: unknown role", ErrValidation)
	ErrForbidden       = fmt.Errorf("%w: role not permitted to perform this operation", ErrValidation)

	ErrNoUnitsAvailable = fmt.Errorf("%w: no units available", ErrConflict)
	ErrCodeTaken        = fmt.Errorf("%w: unit code already in use", ErrConflict)
	ErrNameTaken        = fmt.Errorf("%w: name already in use", ErrConflict)
	ErrActiveLoans      = fmt.Errorf("%w: item has units with active loans", ErrConflict)
	ErrShrinkBlocked    = fmt.Errorf("%w: not enough removable units to reach the declared count", ErrConflict)

	ErrInvalidTransition = fmt.Errorf("%w: unit status transition not allowed", ErrState)
	ErrAlreadyAttached   = fmt.Errorf("%w: store is already attached", ErrState)
	ErrDetached          = fmt.Errorf("%w: store is detached", ErrStorage)
	ErrCodeLocked        = fmt.Errorf("%w: unit code is immutable once the unit has loan history", ErrState)
	ErrLoanReturned      = fmt.Errorf("%w: loan already returned", ErrState)
	ErrRequestDecided    = fmt.Errorf("%w: request already decided", ErrState)
	ErrNotReserved       = fmt.Errorf("%w: request has no reserved unit", ErrState)
)
