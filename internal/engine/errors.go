package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsuitable is returned (possibly wrapped) by Parse when an engine
	// cannot handle the given input. The pipeline treats it as "try the
	// next engine"; any other Parse error aborts ingestion.
	ErrUnsuitable = errors.New("engine cannot handle this input")

	// ErrCannotTranscode is returned by Transcode when an engine declines
	// to produce derived files for a media file.
	ErrCannotTranscode = errors.New("engine cannot transcode this file")

	// ErrCycle indicates the tryBefore/tryAfter constraints of the
	// enabled engine classes form a cycle and no valid order exists.
	ErrCycle = errors.New("engine ordering constraints form a cycle")

	// ErrDuplicateType indicates a Descriptor was registered twice for
	// the same engine type.
	ErrDuplicateType = errors.New("engine type already registered")

	// ErrUnknownType indicates a StorageBackend row names an engine type
	// with no registered Descriptor.
	ErrUnknownType = errors.New("unknown engine type")

	// ErrSingleton indicates more than one enabled backend row exists
	// for an engine type whose Descriptor declares it a singleton.
	ErrSingleton = errors.New("multiple backends configured for singleton engine type")
)

// StorageError is a fatal backend failure during ingestion. Its message is
// for operators and logs, not end users.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("storage: %s", e.Op)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps a backend failure with the operation that failed.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// UserError is an ingestion failure whose Message is safe to surface to the
// end user verbatim, e.g. an unsupported file extension. Every UserError is
// also a StorageError: callers classifying ingestion-fatal failures with
// errors.As on *StorageError match user-facing ones too.
type UserError struct {
	// Message is end-user presentable.
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return &StorageError{Op: e.Message, Err: e.Err}
}

// UserMessage extracts an end-user-safe message from err. It returns
// ("", false) when err carries no UserError and the caller should show a
// generic failure message instead.
func UserMessage(err error) (string, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Message, true
	}
	return "", false
}
