package protocol

// ClassifiedError pairs a plain Go error with the taxonomy spec §7
// requires at every boundary that can surface to a client. It is the
// ambient error type other packages construct and return; only
// internal/mediaserver (the "sole redaction point") converts one into a
// wire ErrorEvent, applying the production-redaction rule from spec §3.
type ClassifiedError struct {
	Type    ErrorType
	Message string
	Data    string
	err     error
}

// NewClassifiedError builds a ClassifiedError wrapping cause (which may be
// nil for errors that originate here, such as validation failures).
func NewClassifiedError(t ErrorType, message string, cause error) *ClassifiedError {
	return &ClassifiedError{Type: t, Message: message, err: cause}
}

func (e *ClassifiedError) Error() string {
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.err
}

// WithData attaches machine-debug data (dropped from production envelopes).
func (e *ClassifiedError) WithData(data string) *ClassifiedError {
	e.Data = data
	return e
}

// ToErrorEvent builds the unredacted ErrorEvent for e. Callers in
// internal/mediaserver must pass the result through Redact before sending
// it to a client outside debug mode.
func (e *ClassifiedError) ToErrorEvent(originatingCommand string) ErrorEvent {
	return ErrorEvent{
		Type:               e.Type,
		Message:            e.Message,
		Data:               e.Data,
		Env:                EnvDebug,
		OriginatingCommand: originatingCommand,
	}
}

// Redact applies the spec §3 production-redaction rule: outside debug
// mode, error_data is dropped, error_env is forced to PRODUCTION, and an
// INTERNAL_ERROR's message is replaced with a generic string.
func Redact(ev ErrorEvent, debug bool) ErrorEvent {
	if debug {
		ev.Env = EnvDebug
		return ev
	}
	ev.Env = EnvProduction
	ev.Data = ""
	if ev.Type == ErrorTypeInternal {
		ev.Message = "unexpected error"
	}
	return ev
}
