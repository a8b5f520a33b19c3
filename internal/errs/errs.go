// Package errs defines the closed error taxonomy shared across the runtime.
package errs

import "fmt"

// Kind is one member of the closed set of failure categories the runtime
// surfaces at API boundaries.
type Kind string

const (
	AgentNotFound           Kind = "agent_not_found"
	AgentAlreadyExists      Kind = "agent_already_exists"
	AgentDefinitionNotFound Kind = "agent_definition_not_found"
	StreamNotFound          Kind = "stream_not_found"
	ChannelNotFound         Kind = "channel_not_found"
	ChannelAlreadyExists    Kind = "channel_already_exists"
	DuplicateID             Kind = "duplicate_id"
	SourceAgentNotFound     Kind = "source_agent_not_found"
	UnknownDefName          Kind = "unknown_def_name"
	UnknownDefKind          Kind = "unknown_def_kind"
	NotImplemented          Kind = "not_implemented"

	InvalidStreamName Kind = "invalid_stream_name"
	InvalidValue      Kind = "invalid_value"
	InvalidConfig     Kind = "invalid_config"
	NoConfig          Kind = "no_config"
	UnknownConfig     Kind = "unknown_config"
	EmptySourceHandle Kind = "empty_source_handle"
	EmptyTargetHandle Kind = "empty_target_handle"
	PinNotFound       Kind = "pin_not_found"

	SendMessageFailed Kind = "send_message_failed"
	TxNotInitialized  Kind = "tx_not_initialized"
	AgentTxNotFound   Kind = "agent_tx_not_found"

	SerializationError Kind = "serialization_error"
	JSONParseError     Kind = "json_parse_error"

	Other Kind = "other"
)

// Error is the concrete error type returned at API boundaries. It carries
// a Kind so callers can branch with errors.Is/As without parsing strings.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is allows errors.Is(err, errs.New(kind, "")) to match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" {
		return t.Kind == e.Kind && t.Message == e.Message
	}
	return t.Kind == e.Kind
}

// New constructs an *Error with the given kind and a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error with the given kind wrapping an underlying error.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// Sentinel is a bare Kind with no message, useful as an errors.Is target:
// errors.Is(err, errs.Sentinel(errs.AgentNotFound))
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf extracts the Kind from err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return "", false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
