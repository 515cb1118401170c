package common

import "fmt"

// ErrType classifies the failures a node can run into while serving a
// request.
type ErrType uint32

const (
	// Miss means the requested key is not owned locally.
	Miss ErrType = iota
	// Unreachable means an outbound call to a peer failed or timed out.
	Unreachable
	// Replay means a peer request carried an id that was already processed.
	Replay
	// Malformed means a line, envelope or argument could not be parsed.
	Malformed
	// UnknownOperation means the operation name is not recognised.
	UnknownOperation
)

// String returns the human-readable name of the error type.
func (t ErrType) String() string {
	switch t {
	case Miss:
		return "Miss"
	case Unreachable:
		return "Unreachable"
	case Replay:
		return "Replay"
	case Malformed:
		return "Malformed"
	case UnknownOperation:
		return "Unknown Operation"
	default:
		return "Unknown"
	}
}

// NodeErr is an error raised by one of the node's components. The component
// names where it happened, and key carries the offending value (a request id,
// an address, an operation name...).
type NodeErr struct {
	component string
	errType   ErrType
	key       string
	cause     error
}

// NewNodeErr creates a NodeErr.
func NewNodeErr(component string, errType ErrType, key string) NodeErr {
	return NodeErr{
		component: component,
		errType:   errType,
		key:       key,
	}
}

// WrapNodeErr creates a NodeErr that keeps the underlying cause.
func WrapNodeErr(component string, errType ErrType, key string, cause error) NodeErr {
	e := NewNodeErr(component, errType, key)
	e.cause = cause
	return e
}

// Type returns the error classification.
func (e NodeErr) Type() ErrType {
	return e.errType
}

// Key returns the value the error is about.
func (e NodeErr) Key() string {
	return e.key
}

// Unwrap returns the underlying cause, if any.
func (e NodeErr) Unwrap() error {
	return e.cause
}

// Error implements the error interface.
func (e NodeErr) Error() string {
	m := fmt.Sprintf("%s, %s, %s", e.component, e.key, e.errType)
	if e.cause != nil {
		m += ": " + e.cause.Error()
	}
	return m
}

// Is checks that an error is a NodeErr and that its type matches the provided
// one.
func Is(err error, t ErrType) bool {
	nodeErr, ok := err.(NodeErr)
	return ok && nodeErr.errType == t
}
