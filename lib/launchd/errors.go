// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launchd

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/launchctl/lib/target"
	"github.com/bureau-foundation/launchctl/lib/value"
)

// Code is an application error code carried in a reply's "error" field.
// The numbering is the service manager's own (BSD errno values plus a
// manager-specific range), not the host's errno numbering.
//
// Code implements error so callers can match with errors.Is:
//
//	if errors.Is(err, launchd.EALREADY) { ... }
type Code int64

const (
	EPERM     Code = 1
	ENOENT    Code = 2
	ESRCH     Code = 3
	EIO       Code = 5
	E2BIG     Code = 7
	ENOMEM    Code = 12
	EACCES    Code = 13
	EBUSY     Code = 16
	EEXIST    Code = 17
	EINVAL    Code = 22
	EALREADY  Code = 37
	ENOTSUP   Code = 45
	ETIMEDOUT Code = 60
	ECANCELED Code = 89

	ENODOMAIN       Code = 112
	ENOSERVICE      Code = 113
	E2BIMPL         Code = 116
	EUSAGE          Code = 117
	EBADRESP        Code = 118
	EMANY           Code = 133
	EBADNAME        Code = 140
	ENOTDEVELOPMENT Code = 142
)

var managerMessages = map[Code]string{
	ENODOMAIN:       "Could not find specified domain",
	ENOSERVICE:      "Could not find specified service",
	E2BIMPL:         "Function not yet implemented",
	EUSAGE:          "Usage error",
	EBADRESP:        "Bad response from server",
	EMANY:           "Operation failed for one or more items",
	EBADNAME:        "Unrecognized target specifier",
	ENOTDEVELOPMENT: "Operation only supported on development builds",
}

var posixMessages = map[Code]string{
	EPERM:     "Operation not permitted",
	ENOENT:    "No such file or directory",
	ESRCH:     "No such process",
	EIO:       "Input/output error",
	E2BIG:     "Argument list too long",
	ENOMEM:    "Cannot allocate memory",
	EACCES:    "Permission denied",
	EBUSY:     "Resource busy",
	EEXIST:    "File exists",
	EINVAL:    "Invalid argument",
	EALREADY:  "Operation already in progress",
	ENOTSUP:   "Operation not supported",
	ETIMEDOUT: "Operation timed out",
	ECANCELED: "Operation canceled",
}

// String returns the human-readable description of the code.
func (c Code) String() string {
	if message, ok := managerMessages[c]; ok {
		return message
	}
	if message, ok := posixMessages[c]; ok {
		return message
	}
	return fmt.Sprintf("Unknown error: %d", int64(c))
}

func (c Code) Error() string { return c.String() }

// Kind is the coarse error category the command layer reports on.
type Kind int

const (
	// KindNone is the kind of a nil error.
	KindNone Kind = iota

	// KindUsage: malformed specifier, illegal handle, or wrong
	// argument count. Detected before any call.
	KindUsage

	// KindNotFound: the addressed domain or service does not exist.
	KindNotFound

	// KindTransport: the channel is unavailable, or a reply is
	// missing or malformed.
	KindTransport

	// KindApplication: any other non-zero application code,
	// including per-item batch failures.
	KindApplication

	// KindUnsupported: the capability is absent on this platform or
	// service manager.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUsage:
		return "usage"
	case KindNotFound:
		return "not found"
	case KindTransport:
		return "transport failure"
	case KindApplication:
		return "application error"
	case KindUnsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a non-zero application result for a routine. Target is set
// for not-found codes and identifies what the request addressed.
type Error struct {
	Routine Routine
	Code    Code
	Target  *target.Target
}

func (e *Error) Error() string {
	if e.Routine == 0 {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s (%d)", e.Routine, e.Code, int64(e.Code))
}

// Is matches a bare [Code].
func (e *Error) Is(target error) bool {
	code, ok := target.(Code)
	return ok && code == e.Code
}

// Usagef returns a usage error for a problem detected before any call.
func Usagef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", EUSAGE, fmt.Sprintf(format, args...))
}

// ItemError is one entry of a batch reply's per-item error map.
type ItemError struct {
	Item string
	Code Code
}

// BatchError reports that a multi-item request succeeded at the
// transport and application layers but one or more items failed.
// Items are in reply order.
type BatchError struct {
	Routine Routine
	Items   []ItemError
}

func (e *BatchError) Error() string {
	first := e.Items[0]
	if len(e.Items) == 1 {
		return fmt.Sprintf("%s: %s: %s", e.Routine, first.Item, first.Code)
	}
	return fmt.Sprintf("%s: %d items failed, first %s: %s", e.Routine, len(e.Items), first.Item, first.Code)
}

// Is matches [EMANY].
func (e *BatchError) Is(target error) bool {
	code, ok := target.(Code)
	return ok && code == EMANY
}

// KeyItemErrors is the reply field holding per-item error codes.
const KeyItemErrors = "errors"

// ItemErrors walks the optional per-item error map of a batch reply.
// It returns nil when the map is absent or empty, and a [*BatchError]
// otherwise. Entries whose value is not an integer are reported as
// [EBADRESP].
func ItemErrors(routine Routine, reply *value.Map) error {
	items, ok := reply.GetMap(KeyItemErrors)
	if !ok || items.Len() == 0 {
		return nil
	}
	batch := &BatchError{Routine: routine}
	for item, entry := range items.All() {
		code := EBADRESP
		if n, ok := entry.(value.Int); ok {
			code = Code(n)
		}
		if code == 0 {
			continue
		}
		batch.Items = append(batch.Items, ItemError{Item: item, Code: code})
	}
	if len(batch.Items) == 0 {
		return nil
	}
	return batch
}

// KindOf classifies err. Errors from lib/target classify as usage,
// errors.ErrUnsupported as unsupported, and any error that is neither a
// [Code] nor one of those as a transport failure.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, errors.ErrUnsupported) {
		return KindUnsupported
	}
	if errors.Is(err, target.ErrBadName) || errors.Is(err, target.ErrUsage) {
		return KindUsage
	}
	var batch *BatchError
	if errors.As(err, &batch) {
		return KindApplication
	}
	code, ok := codeOf(err)
	if !ok {
		return KindTransport
	}
	switch code {
	case EUSAGE, EBADNAME:
		return KindUsage
	case ENODOMAIN, ENOSERVICE:
		return KindNotFound
	case EBADRESP:
		return KindTransport
	case ENOTSUP, E2BIMPL:
		return KindUnsupported
	default:
		return KindApplication
	}
}

// CodeOf returns the application code that best describes err, or zero
// when err carries none (a raw channel failure, for instance).
func CodeOf(err error) Code {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, target.ErrBadName):
		return EBADNAME
	case errors.Is(err, target.ErrUsage):
		return EUSAGE
	}
	var batch *BatchError
	if errors.As(err, &batch) {
		return EMANY
	}
	if code, ok := codeOf(err); ok {
		return code
	}
	if errors.Is(err, errors.ErrUnsupported) {
		return ENOTSUP
	}
	return 0
}

func codeOf(err error) (Code, bool) {
	var applicationError *Error
	if errors.As(err, &applicationError) {
		return applicationError.Code, true
	}
	var code Code
	if errors.As(err, &code) {
		return code, true
	}
	return 0, false
}
